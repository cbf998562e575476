package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/geokeeper/internal/client/models"
	"github.com/dmitrijs2005/geokeeper/internal/client/repositories/accounts"
	"github.com/dmitrijs2005/geokeeper/internal/common"
	"github.com/dmitrijs2005/geokeeper/internal/cryptox"
	"github.com/dmitrijs2005/geokeeper/internal/dbx"
)

// AuthService defines local authentication operations.
//
// Contract:
//   - Register: create an account and sign it in.
//   - SignIn: verify the password and persist a signed session token.
//   - SignOut: drop the session.
//   - State: Authenticated only with a stored, valid, unexpired token;
//     Unknown when the session could not be read at all.
type AuthService interface {
	Register(ctx context.Context, username string, password []byte) error
	SignIn(ctx context.Context, username string, password []byte) error
	SignOut(ctx context.Context) error
	State(ctx context.Context) models.AuthenticationState
	CurrentUser(ctx context.Context) (string, error)
}

type authService struct {
	db      *sql.DB
	dialect dbx.Dialect
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
}

// NewAuthService constructs an AuthService persisting into db.
func NewAuthService(db *sql.DB, dialect dbx.Dialect, secret []byte, ttl time.Duration) AuthService {
	return &authService{db: db, dialect: dialect, secret: secret, ttl: ttl, now: time.Now}
}

func (a *authService) repo(db dbx.DBTX) accounts.Repository {
	return accounts.NewSQLRepository(db, a.dialect)
}

// Register stores salt and verifier for a new user and opens a session, in
// a single transaction.
func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	salt, err := cryptox.NewSalt()
	if err != nil {
		return fmt.Errorf("salt error: %w", err)
	}
	verifier := cryptox.MakeVerifier(cryptox.DeriveKey(password, salt))

	token, err := generateToken(username, a.secret, a.now(), a.ttl)
	if err != nil {
		return fmt.Errorf("token error: %w", err)
	}

	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := a.repo(tx)
		if err := repo.Create(ctx, accounts.Account{Username: username, Salt: salt, Verifier: verifier}); err != nil {
			return err
		}
		return repo.SaveSession(ctx, accounts.Session{Username: username, Token: token})
	})
}

func (a *authService) SignIn(ctx context.Context, username string, password []byte) error {
	repo := a.repo(a.db)

	acc, err := repo.Get(ctx, username)
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorUnauthorized
	}
	if err != nil {
		return err
	}

	if !cryptox.VerifyPassword(password, acc.Salt, acc.Verifier) {
		return common.ErrorUnauthorized
	}

	token, err := generateToken(username, a.secret, a.now(), a.ttl)
	if err != nil {
		return fmt.Errorf("token error: %w", err)
	}
	return repo.SaveSession(ctx, accounts.Session{Username: username, Token: token})
}

func (a *authService) SignOut(ctx context.Context) error {
	return a.repo(a.db).ClearSession(ctx)
}

func (a *authService) State(ctx context.Context) models.AuthenticationState {
	_, err := a.CurrentUser(ctx)
	switch {
	case err == nil:
		return models.Authenticated
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return models.Unauthenticated
	default:
		return models.Unknown
	}
}

// CurrentUser returns the signed-in username, or common.ErrorUnauthorized
// when there is no session.
func (a *authService) CurrentUser(ctx context.Context) (string, error) {
	s, err := a.repo(a.db).GetSession(ctx)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", common.ErrorUnauthorized
	}

	username, err := usernameFromToken(s.Token, a.secret)
	if err != nil {
		return "", err
	}
	if username != s.Username {
		return "", common.ErrInvalidToken
	}
	return username, nil
}
