package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tictac/internal/client/client"
	"github.com/dmitrijs2005/tictac/internal/client/credstore"
	"github.com/dmitrijs2005/tictac/internal/client/nav"
)

const (
	msgLoginFailed    = "Login failed. Please try again."
	msgRegisterFailed = "Registration failed. Please try again."
)

// getSimpleText and getPassword point to the interactive input helpers and
// can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

func (a *App) readCredentials() (string, string, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", "", err
	}
	pw, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	defer clear(pw)
	return email, string(pw), nil
}

// Register creates an account. The user has to log in afterwards.
func (a *App) Register(ctx context.Context) error {
	a.navigate(nav.ViewRegister)
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}

	if _, err := a.auth.Register(ctx, email, password); err != nil {
		printlnFn(client.UserMessage(err, msgRegisterFailed))
		return err
	}
	printlnFn("Registration successful. Please log in.")
	a.navigate(nav.ViewLogin)
	return nil
}

// Login authenticates; the guard then moves to the game view.
func (a *App) Login(ctx context.Context) error {
	a.navigate(nav.ViewLogin)
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}

	user, err := a.auth.Login(ctx, email, password)
	if err != nil {
		printlnFn(client.UserMessage(err, msgLoginFailed))
		return err
	}
	printlnFn(fmt.Sprintf("Welcome, %s!", user.Email))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(ctx)
	printlnFn("Logged out")
	return nil
}

// Status prints the session, the view and the credential state.
func (a *App) Status(ctx context.Context) error {
	st := a.session.Current()
	who := "-"
	if st.User != nil {
		who = st.User.Email
	}
	durability := credstore.DurabilityNone
	if a.store != nil {
		durability = a.store.Durability()
	}
	a.metrics.SetDurable(durability == credstore.DurabilityPersistent)
	tokens := "none"
	if _, ok := a.auth.Current(ctx); ok {
		tokens = "stored"
	}

	printlnFn(fmt.Sprintf("session: %s, user: %s, view: %s, credentials: %s, tokens: %s",
		st.Status, who, a.Current(), durability, tokens))
	return nil
}
