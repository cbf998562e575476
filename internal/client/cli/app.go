package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/geokeeper/internal/client/backup"
	"github.com/dmitrijs2005/geokeeper/internal/client/config"
	"github.com/dmitrijs2005/geokeeper/internal/client/geofence"
	"github.com/dmitrijs2005/geokeeper/internal/client/livedata"
	"github.com/dmitrijs2005/geokeeper/internal/client/models"
	"github.com/dmitrijs2005/geokeeper/internal/client/reminderslist"
	"github.com/dmitrijs2005/geokeeper/internal/client/repositories/reminders"
	"github.com/dmitrijs2005/geokeeper/internal/client/savereminder"
	"github.com/dmitrijs2005/geokeeper/internal/client/services"
	"github.com/dmitrijs2005/geokeeper/internal/client/storage"
	"github.com/dmitrijs2005/geokeeper/internal/logging"
)

type App struct {
	config   *config.Config
	log      logging.Logger
	db       *sql.DB
	repo     services.ReminderRepository
	auth     services.AuthService
	geo      geoBackend
	coord    *geofence.Coordinator
	disp     *livedata.GoDispatcher
	list     *reminderslist.ViewModel
	save     *savereminder.ViewModel
	backup   *backup.Service
	reader   *bufio.Reader
	out      io.Writer
	userName string
}

// NewApp opens the database, connects to the geofence daemon (or starts an
// in-process simulator when no address is configured) and wires both
// view-models.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := storage.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	store, err := reminders.NewStore(c.DatabaseDriver, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	var geo geoBackend
	if c.GeofenceAddr != "" {
		client, err := geofence.Dial(c.GeofenceAddr, c.GeofenceToken)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("error connecting to geofence daemon: %w", err)
		}
		geo = client
	} else {
		geo = newLocalGeo()
	}

	repo := services.NewReminderRepository(store, log)

	a := &App{
		config: c,
		log:    log,
		db:     db,
		repo:   repo,
		auth:   services.NewAuthService(db, c.DatabaseDriver, []byte(c.SessionSecret), c.SessionTTL),
		geo:    geo,
		reader: bufio.NewReader(os.Stdin),
		out:    &lockedWriter{w: os.Stdout},
	}

	a.wire()

	if c.S3.Bucket != "" {
		client, err := backup.NewS3Client(ctx, backup.S3Config{
			Region:       c.S3.Region,
			BaseEndpoint: c.S3.Endpoint,
			AccessKey:    c.S3.AccessKey,
			SecretKey:    c.S3.SecretKey,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("error configuring backup storage: %w", err)
		}
		a.backup = backup.NewService(client, c.S3.Bucket, c.S3.Prefix, repo, a.coord, log,
			backup.WithPassphrase(c.BackupPassphrase))
	}

	return a, nil
}

// wire builds the coordinator and the view-models over repo, auth and geo,
// and routes one-shot messages to the output.
func (a *App) wire() {
	a.disp = livedata.NewGoDispatcher()

	notifier := geofence.Notifiers{
		geofence.NewLogNotifier(a.log),
		geofence.NewWriterNotifier(a.out),
	}
	a.coord = geofence.NewCoordinator(a.geo, a.geo, a.repo, notifier, geofence.Options{
		Radius:     a.config.GeofenceRadius,
		Expiration: a.config.GeofenceExpiration,
	}, a.log)

	a.list = reminderslist.NewViewModel(a.repo, a.auth, a.disp, a.log)
	a.save = savereminder.NewViewModel(a.repo, a.coord, a.disp, a.log)

	a.list.Error.Observe(func(msg string) { fmt.Fprintln(a.out, "Error:", msg) })
	a.save.Toast.Observe(func(m models.Message) { fmt.Fprintln(a.out, m.Text()) })
	a.save.Error.Observe(func(m models.Message) { fmt.Fprintln(a.out, m.Text()) })
}

// Run forwards geofence enter events to the coordinator and blocks in the
// REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := a.geo.Watch(ctx)
	if err != nil {
		return fmt.Errorf("error watching geofence events: %w", err)
	}
	go a.coord.Listen(ctx, events)

	fmt.Fprintln(a.out, "Welcome to geokeeper (type 'help' for commands)")
	a.restoreSession(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

// Close releases the view-models and connections. Safe to call twice.
func (a *App) Close() {
	if a.list != nil {
		a.list.Close()
	}
	if a.save != nil {
		a.save.Close()
	}
	if a.disp != nil {
		a.disp.Wait()
	}
	if a.geo != nil {
		if err := a.geo.Close(); err != nil {
			a.log.Warn(context.Background(), "closing geofence backend", "error", err)
		}
		a.geo = nil
	}
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.userName)
}

// restoreSession picks up a session persisted by an earlier run.
func (a *App) restoreSession(ctx context.Context) {
	if !a.list.Authorize(ctx) {
		fmt.Fprintln(a.out, "Please login or register to see your reminders")
		return
	}
	if name, err := a.auth.CurrentUser(ctx); err == nil {
		a.userName = name
	}
}

// lockedWriter serializes writes from the REPL and from geofence
// notifications arriving on other goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
