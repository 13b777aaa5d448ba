package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/giftkeeper/internal/client/client"
	"github.com/dmitrijs2005/giftkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for an email and password and attempts to create
// a new account via the AuthService.
//
// On success it prints "Success!" and returns nil. The password byte slice
// is securely wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, userName, password); err != nil {
		fmt.Fprintf(a.out, "Registration failed: %s\n", err)
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login prompts the user for credentials and tries to authenticate.
//
// The method first attempts an online login. If the server is unavailable
// (errors.Is(err, client.ErrUnavailable)), it falls back to offline login
// against the credentials cached by the last online login. Records created
// before signing in are claimed by the user either way.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	err = a.authService.OnlineLogin(ctx, userName, password)
	switch {
	case err == nil:
		fmt.Fprintln(a.out, "Login successful")
		return nil
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, trying offline login...")
		if err := a.authService.OfflineLogin(ctx, userName, password); err != nil {
			fmt.Fprintf(a.out, "Offline login unsuccessful: %s\n", err)
			return err
		}
		fmt.Fprintln(a.out, "Offline login successful, changes will sync once the server is reachable")
		return nil
	default:
		fmt.Fprintf(a.out, "Login unsuccessful: %s\n", err)
		return err
	}
}

// Logout ends the session. Cached credentials stay so the next login can
// happen offline; local data stays too and is kept in the sync queue.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
