// Package backup exports the reminder table to an S3 bucket as a JSON
// snapshot and imports such snapshots back, upserting by id. Imported
// records go through the same validate, arm, save path as a new reminder.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/geokeeper/internal/client/models"
	"github.com/dmitrijs2005/geokeeper/internal/client/result"
	"github.com/dmitrijs2005/geokeeper/internal/client/services"
	"github.com/dmitrijs2005/geokeeper/internal/cryptox"
	"github.com/dmitrijs2005/geokeeper/internal/logging"
	"github.com/google/uuid"
)

const snapshotVersion = 1

var (
	ErrPassphraseRequired = errors.New("snapshot is encrypted, passphrase required")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

// ObjectStore is the subset of the S3 API used here. *s3.Client satisfies it.
type ObjectStore interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Geofencer arms the region of a restored reminder before it is saved.
type Geofencer interface {
	Arm(ctx context.Context, r models.Reminder) error
}

// SkippedRecord is a snapshot record that was not restored.
type SkippedRecord struct {
	ID  string
	Err error
}

// SkippedError reports the records an otherwise successful Import left out.
type SkippedError struct {
	Skipped []SkippedRecord
}

func (e *SkippedError) Error() string {
	parts := make([]string, 0, len(e.Skipped))
	for _, r := range e.Skipped {
		parts = append(parts, fmt.Sprintf("%s: %v", r.ID, r.Err))
	}
	return fmt.Sprintf("%d records skipped (%s)", len(e.Skipped), strings.Join(parts, "; "))
}

type Snapshot struct {
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"created_at"`
	Reminders []models.Reminder `json:"reminders"`
}

// envelope is the stored object: either a plain snapshot or a sealed one
// with the salt its key was derived from.
type envelope struct {
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Salt     []byte    `json:"salt,omitempty"`
	Sealed   []byte    `json:"sealed,omitempty"`
}

type Service struct {
	store      ObjectStore
	bucket     string
	prefix     string
	passphrase []byte
	repo       services.ReminderRepository
	geo        Geofencer
	log        logging.Logger
	now        func() time.Time
}

type Option func(*Service)

// WithPassphrase encrypts exported snapshots and decrypts sealed ones.
func WithPassphrase(p string) Option {
	return func(s *Service) {
		if p != "" {
			s.passphrase = []byte(p)
		}
	}
}

func NewService(store ObjectStore, bucket, prefix string, repo services.ReminderRepository, geo Geofencer,
	log logging.Logger, opts ...Option) *Service {
	if log == nil {
		log = logging.Nop()
	}
	s := &Service{
		store:  store,
		bucket: bucket,
		prefix: strings.TrimSuffix(prefix, "/"),
		repo:   repo,
		geo:    geo,
		log:    log.With("component", "backup"),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) newKey() string {
	d := s.now().UTC()
	name := fmt.Sprintf("%s-%s.json", d.Format("20060102T150405Z"), uuid.NewString())
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// Export uploads a snapshot of every reminder and returns its object key.
func (s *Service) Export(ctx context.Context) (string, error) {
	var items []models.Reminder
	switch res := s.repo.ListReminders(ctx).(type) {
	case result.Success[[]models.Reminder]:
		items = res.Data
	case result.Error[[]models.Reminder]:
		return "", fmt.Errorf("list reminders: %s", res.Message)
	}

	snap := &Snapshot{Version: snapshotVersion, CreatedAt: s.now().UTC(), Reminders: items}
	env, err := s.wrap(snap)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := s.newKey()
	_, err = s.store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	s.log.Info(ctx, "snapshot exported", "key", key, "count", len(items))
	return key, nil
}

func (s *Service) wrap(snap *Snapshot) (*envelope, error) {
	if s.passphrase == nil {
		return &envelope{Snapshot: snap}, nil
	}
	salt, err := cryptox.NewSalt()
	if err != nil {
		return nil, err
	}
	sealed, err := cryptox.Seal(snap, cryptox.DeriveKey(s.passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("seal snapshot: %w", err)
	}
	return &envelope{Salt: salt, Sealed: sealed}, nil
}

func (s *Service) unwrap(env *envelope) (*Snapshot, error) {
	if env.Sealed == nil {
		if env.Snapshot == nil {
			return nil, errors.New("empty snapshot")
		}
		return env.Snapshot, nil
	}
	if s.passphrase == nil {
		return nil, ErrPassphraseRequired
	}
	var snap Snapshot
	if err := cryptox.Open(env.Sealed, cryptox.DeriveKey(s.passphrase, env.Salt), &snap); err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	return &snap, nil
}

// Import downloads the snapshot at key and restores every reminder in it.
// Each record gets an id if it has none, is validated and has its region
// armed before it is upserted. Records failing validation or arming are
// skipped and reported in a *SkippedError next to the restored count; a
// store fault stops the import.
func (s *Service) Import(ctx context.Context, key string) (int, error) {
	out, err := s.store.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("download snapshot: %w", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return 0, fmt.Errorf("read snapshot: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return 0, fmt.Errorf("decode snapshot: %w", err)
	}
	snap, err := s.unwrap(&env)
	if err != nil {
		return 0, err
	}
	if snap.Version != snapshotVersion {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, snap.Version)
	}

	restored := 0
	var skipped []SkippedRecord
	for _, r := range snap.Reminders {
		r = r.EnsureID()

		if err := models.Validate(r); err != nil {
			skipped = append(skipped, SkippedRecord{ID: r.ID, Err: err})
			continue
		}
		if err := s.geo.Arm(ctx, r); err != nil {
			s.log.Warn(ctx, "geofence not armed, record skipped", "id", r.ID, "error", err)
			skipped = append(skipped, SkippedRecord{ID: r.ID, Err: err})
			continue
		}
		if err := s.repo.SaveReminder(ctx, r); err != nil {
			return restored, fmt.Errorf("restore %s: %w", r.ID, err)
		}
		restored++
	}

	s.log.Info(ctx, "snapshot imported", "key", key, "count", restored, "skipped", len(skipped))
	if len(skipped) > 0 {
		return restored, &SkippedError{Skipped: skipped}
	}
	return restored, nil
}

// List returns the snapshot keys under the prefix, newest first.
func (s *Service) List(ctx context.Context) ([]string, error) {
	in := &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)}
	if s.prefix != "" {
		in.Prefix = aws.String(s.prefix + "/")
	}

	var keys []string
	for {
		out, err := s.store.ListObjectsV2(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		in.ContinuationToken = out.NextContinuationToken
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}
