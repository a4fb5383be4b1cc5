package cli

import (
	"context"
	"errors"
)

var errBackupDisabled = errors.New("backup is not configured (set S3_BUCKET)")

// Backup uploads a snapshot of the whole store.
func (a *App) Backup(ctx context.Context, _ []string) error {
	if a.backup == nil {
		return errBackupDisabled
	}
	key, err := a.backup.Export(ctx)
	if err != nil {
		return err
	}
	a.println("Snapshot saved as", key)
	return nil
}

// Restore writes a snapshot back and reloads everything from storage.
func (a *App) Restore(ctx context.Context, args []string) error {
	if a.backup == nil {
		return errBackupDisabled
	}
	if len(args) != 1 {
		return errUsage
	}
	n, err := a.backup.Restore(ctx, args[0])
	if err != nil {
		return err
	}

	sess, err := a.accounts.Initialize(ctx)
	if err != nil {
		return err
	}
	if err := a.enterSession(ctx, sess); err != nil {
		return err
	}
	if err := a.board.ReloadFromStorage(ctx); err != nil {
		return err
	}
	a.printf("Restored %d keys\n", n)
	return nil
}
