package accounts

import (
	"context"
)

// Account is a locally registered user. Only the salt and the password
// verifier are stored.
type Account struct {
	Username string
	Salt     []byte
	Verifier []byte
}

// Session is the single signed-in session of this device.
type Session struct {
	Username string
	Token    string
}

type Repository interface {
	Create(ctx context.Context, a Account) error
	Get(ctx context.Context, username string) (*Account, error)
	SaveSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context) (*Session, error)
	ClearSession(ctx context.Context) error
}
