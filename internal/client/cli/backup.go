package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/geokeeper/internal/client/backup"
)

var errBackupDisabled = errors.New("backup is not configured, set an S3 bucket")

// Backup exports every reminder to object storage.
func (a *App) Backup(ctx context.Context) error {
	if a.backup == nil {
		return errBackupDisabled
	}
	key, err := a.backup.Export(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Backup stored as %s\n", key)
	return nil
}

// Backups lists stored snapshots, newest first.
func (a *App) Backups(ctx context.Context) error {
	if a.backup == nil {
		return errBackupDisabled
	}
	keys, err := a.backup.List(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Fprintln(a.out, "No backups")
		return nil
	}
	for _, k := range keys {
		fmt.Fprintln(a.out, k)
	}
	return nil
}

// Restore upserts the reminders of one snapshot and arms their regions.
// Records that fail validation or arming are listed and left out.
func (a *App) Restore(ctx context.Context, args []string) error {
	if a.backup == nil {
		return errBackupDisabled
	}
	key, err := a.argOrPrompt(args, "Enter backup key")
	if err != nil {
		return err
	}
	n, err := a.backup.Import(ctx, key)
	var skipped *backup.SkippedError
	if err != nil && !errors.As(err, &skipped) {
		return err
	}

	fmt.Fprintf(a.out, "Restored %d reminders\n", n)
	if skipped != nil {
		for _, r := range skipped.Skipped {
			fmt.Fprintf(a.out, "Skipped %s: %v\n", r.ID, r.Err)
		}
	}
	return nil
}
