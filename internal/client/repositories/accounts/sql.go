package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/geokeeper/internal/common"
	"github.com/dmitrijs2005/geokeeper/internal/dbx"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

// Create stores a new account; an existing username yields common.ErrAccountExists.
func (r *SQLRepository) Create(ctx context.Context, a Account) error {
	res, err := r.db.ExecContext(ctx, dbx.Rebind(r.dialect, `
		INSERT INTO accounts (username, salt, verifier) VALUES (?, ?, ?)
		ON CONFLICT (username) DO NOTHING
	`), a.Username, a.Salt, a.Verifier)
	if err != nil {
		return fmt.Errorf("failed to create account[%s]: %w", a.Username, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to create account[%s]: %w", a.Username, err)
	}
	if n == 0 {
		return fmt.Errorf("account[%s]: %w", a.Username, common.ErrAccountExists)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, username string) (*Account, error) {
	a := Account{Username: username}
	err := r.db.QueryRowContext(ctx,
		dbx.Rebind(r.dialect, `SELECT salt, verifier FROM accounts WHERE username = ?`), username).
		Scan(&a.Salt, &a.Verifier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account[%s]: %w", username, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account[%s]: %w", username, err)
	}
	return &a, nil
}

// SaveSession replaces the stored session.
func (r *SQLRepository) SaveSession(ctx context.Context, s Session) error {
	_, err := r.db.ExecContext(ctx, dbx.Rebind(r.dialect, `
		INSERT INTO sessions (id, username, token) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET username = excluded.username, token = excluded.token
	`), s.Username, s.Token)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession returns (nil, nil) when nobody is signed in.
func (r *SQLRepository) GetSession(ctx context.Context) (*Session, error) {
	var s Session
	err := r.db.QueryRowContext(ctx, `SELECT username, token FROM sessions WHERE id = 1`).
		Scan(&s.Username, &s.Token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (r *SQLRepository) ClearSession(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
