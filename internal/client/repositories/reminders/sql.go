package reminders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/geokeeper/internal/client/models"
	"github.com/dmitrijs2005/geokeeper/internal/common"
	"github.com/dmitrijs2005/geokeeper/internal/dbx"
)

const (
	upsertQuery = `INSERT INTO reminders (id, title, description, location, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET title = excluded.title,
			description = excluded.description,
			location = excluded.location,
			latitude = excluded.latitude,
			longitude = excluded.longitude`
	getByIDQuery  = `SELECT id, title, description, location, latitude, longitude FROM reminders WHERE id = ?`
	deleteAllStmt = `DELETE FROM reminders`
)

// SQLStore implements Store over a DBTX (either *sql.DB or *sql.Tx).
type SQLStore struct {
	db      dbx.DBTX
	dialect dbx.Dialect
	order   string
}

// NewSQLiteStore returns a Store bound to a SQLite database. Insertion order
// is the implicit rowid, which ON CONFLICT DO UPDATE preserves.
func NewSQLiteStore(db dbx.DBTX) *SQLStore {
	return &SQLStore{db: db, dialect: dbx.DialectSQLite, order: "rowid"}
}

// NewPostgresStore returns a Store bound to a PostgreSQL database. Insertion
// order is the identity column seq.
func NewPostgresStore(db dbx.DBTX) *SQLStore {
	return &SQLStore{db: db, dialect: dbx.DialectPostgres, order: "seq"}
}

// NewStore picks the implementation matching dialect.
func NewStore(dialect dbx.Dialect, db dbx.DBTX) (*SQLStore, error) {
	switch dialect {
	case dbx.DialectSQLite:
		return NewSQLiteStore(db), nil
	case dbx.DialectPostgres:
		return NewPostgresStore(db), nil
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownDriver, dialect)
	}
}

func (s *SQLStore) q(query string) string {
	return dbx.Rebind(s.dialect, query)
}

// GetAll lists every reminder in insertion order.
func (s *SQLStore) GetAll(ctx context.Context) ([]models.Reminder, error) {
	query := `SELECT id, title, description, location, latitude, longitude FROM reminders ORDER BY ` + s.order
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select reminders: %w", err)
	}
	defer rows.Close()

	result := make([]models.Reminder, 0)
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		result = append(result, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminders: %w", err)
	}
	return result, nil
}

// GetByID returns a single reminder, or common.ErrorNotFound.
func (s *SQLStore) GetByID(ctx context.Context, id string) (*models.Reminder, error) {
	row := s.db.QueryRowContext(ctx, s.q(getByIDQuery), id)

	r, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reminder %s: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return r, nil
}

// Upsert inserts r or replaces every field of the record with the same id.
func (s *SQLStore) Upsert(ctx context.Context, r *models.Reminder) error {
	_, err := s.db.ExecContext(ctx, s.q(upsertQuery),
		r.ID, nullable(r.Title), nullable(r.Description), nullable(r.Location),
		nullable(r.Latitude), nullable(r.Longitude))
	if err != nil {
		return fmt.Errorf("failed to upsert reminder: %w", err)
	}
	return nil
}

// DeleteAll removes every reminder.
func (s *SQLStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, deleteAllStmt); err != nil {
		return fmt.Errorf("failed to delete reminders: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReminder(row scanner) (*models.Reminder, error) {
	var (
		r                            models.Reminder
		title, description, location sql.NullString
		lat, lon                     sql.NullFloat64
	)
	if err := row.Scan(&r.ID, &title, &description, &location, &lat, &lon); err != nil {
		return nil, err
	}
	r.Title = fromNullString(title)
	r.Description = fromNullString(description)
	r.Location = fromNullString(location)
	r.Latitude = fromNullFloat(lat)
	r.Longitude = fromNullFloat(lon)
	return &r, nil
}

// nullable converts an optional field into a driver argument.
func nullable[T string | float64](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func fromNullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func fromNullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
