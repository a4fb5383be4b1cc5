package cli

import (
	"context"
	"errors"
	"time"
)

var errUsage = errors.New("wrong arguments, see 'help'")

// WhoAmI prints the active account and its profile.
func (a *App) WhoAmI(ctx context.Context, _ []string) error {
	a.printf("Account: %s\n", a.sess.AccountID)
	a.print(formatProfile(a.profile))
	return nil
}

// ListAccounts prints every local account, newest first; "*" marks the active one.
func (a *App) ListAccounts(ctx context.Context, _ []string) error {
	accounts, err := a.accounts.List(ctx)
	if err != nil {
		return err
	}
	for _, acc := range accounts {
		mark := " "
		if acc.ID == a.sess.AccountID {
			mark = "*"
		}
		a.printf("%s %s  %-20s %s\n", mark, acc.ID, acc.Name, acc.CreatedAt.Format(time.DateOnly))
	}
	return nil
}

// NewAccount creates an account, makes it active and starts onboarding.
func (a *App) NewAccount(ctx context.Context, _ []string) error {
	sess, acc, err := a.accounts.CreateAccount(ctx)
	if err != nil {
		return err
	}
	if err := a.enterSession(ctx, sess); err != nil {
		return err
	}
	a.printf("Created account %s\n", acc.ID)
	return a.Onboard(ctx, nil)
}

// Switch makes another known account active.
func (a *App) Switch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	sess, err := a.accounts.SwitchActiveAccount(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.enterSession(ctx, sess); err != nil {
		return err
	}
	a.printf("Switched to %s (%s)\n", a.profile.Name, sess.AccountID)
	if !sess.Onboarded() {
		return a.Onboard(ctx, nil)
	}
	return nil
}
