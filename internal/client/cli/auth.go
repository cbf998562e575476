package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/geokeeper/internal/common"
)

// getSimpleText and getPassword are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) readCredentials() (string, []byte, error) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", nil, err
	}
	if userName == "" {
		return "", nil, errors.New("username must not be empty")
	}

	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return userName, password, nil
}

// Register creates a local account and signs it in.
func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Register(ctx, userName, password); err != nil {
		if errors.Is(err, common.ErrAccountExists) {
			fmt.Fprintln(a.out, "Account already exists, use login")
			return nil
		}
		return err
	}

	a.userName = userName
	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login signs in with an existing account.
func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.SignIn(ctx, userName, password); err != nil {
		a.log.Warn(ctx, "login unsuccessful", "username", userName, "error", err)
		fmt.Fprintln(a.out, "Invalid username or password")
		return nil
	}

	a.userName = userName
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// Logout removes the persisted session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.SignOut(ctx); err != nil {
		return err
	}
	a.userName = ""
	a.save.OnClear()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
