package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/unicampus/internal/client/models"
	"github.com/dmitrijs2005/unicampus/internal/client/session"
	"github.com/dmitrijs2005/unicampus/internal/common"
	"github.com/dmitrijs2005/unicampus/internal/kv"
	"github.com/dmitrijs2005/unicampus/internal/logging"
)

// errUnchanged aborts an update that would write identical data.
var errUnchanged = errors.New("unchanged")

// AccountService maintains the account list and the active-account pointer.
//
// Invariant after Initialize: at least one account exists and exactly one
// is active.
type AccountService interface {
	// Initialize loads the registry, creating a default account on an empty
	// store and repairing a missing or dangling active pointer. It returns a
	// session for the active account.
	Initialize(ctx context.Context) (*session.Session, error)

	// CreateAccount prepends a new "New User" account, makes it active and
	// returns a fresh, not onboarded session for it.
	CreateAccount(ctx context.Context) (*session.Session, models.Account, error)

	// SwitchActiveAccount persists id as active and returns a new session.
	// Unknown ids fail with common.ErrAccountNotFound.
	SwitchActiveAccount(ctx context.Context, id string) (*session.Session, error)

	// SyncNameFromProfile copies a profile name onto its account, writing
	// only when the name differs.
	SyncNameFromProfile(ctx context.Context, accountID, name string) error

	List(ctx context.Context) ([]models.Account, error)
	Active(ctx context.Context) (models.Account, error)
}

type accountService struct {
	store  kv.Store
	logger logging.Logger
	now    func() time.Time
}

func NewAccountService(store kv.Store, logger logging.Logger) AccountService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &accountService{
		store:  store,
		logger: logger.With("module", "accounts"),
		now:    time.Now,
	}
}

func (s *accountService) newAccount() models.Account {
	now := s.now()
	return models.Account{
		ID:   newID("acc", now),
		Name: common.DefaultAccountName,
		// Stored as epoch milliseconds; truncate so the returned value
		// equals the persisted one.
		CreatedAt: time.UnixMilli(now.UnixMilli()),
	}
}

func (s *accountService) Initialize(ctx context.Context) (*session.Session, error) {
	var created *models.Account
	accounts, err := kv.Update(ctx, s.store, common.AccountsKey, []models.Account(nil), maxUpdateAttempts,
		func(cur []models.Account) ([]models.Account, error) {
			if len(cur) > 0 {
				return nil, errUnchanged
			}
			acc := s.newAccount()
			created = &acc
			return []models.Account{acc}, nil
		})

	switch {
	case errors.Is(err, errUnchanged):
		accounts, err = kv.Load(ctx, s.store, common.AccountsKey, []models.Account(nil))
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	if created != nil {
		if err := kv.Save(ctx, s.store, common.ActiveAccountKey, created.ID); err != nil {
			return nil, err
		}
		s.logger.Info(ctx, "created default account", "account", created.ID)
		return session.New(created.ID), nil
	}

	active, err := kv.Load(ctx, s.store, common.ActiveAccountKey, "")
	if err != nil {
		return nil, err
	}
	if _, ok := findAccount(accounts, active); !ok {
		healed := accounts[0].ID
		s.logger.Warn(ctx, "active account missing, falling back to first", "stored", active, "active", healed)
		if err := kv.Save(ctx, s.store, common.ActiveAccountKey, healed); err != nil {
			return nil, err
		}
		active = healed
	}

	return session.New(active), nil
}

func (s *accountService) CreateAccount(ctx context.Context) (*session.Session, models.Account, error) {
	acc := s.newAccount()
	_, err := kv.Update(ctx, s.store, common.AccountsKey, []models.Account(nil), maxUpdateAttempts,
		func(cur []models.Account) ([]models.Account, error) {
			return append([]models.Account{acc}, cur...), nil
		})
	if err != nil {
		return nil, models.Account{}, err
	}
	if err := kv.Save(ctx, s.store, common.ActiveAccountKey, acc.ID); err != nil {
		return nil, models.Account{}, err
	}

	s.logger.Info(ctx, "account created", "account", acc.ID)
	return session.New(acc.ID), acc, nil
}

func (s *accountService) SwitchActiveAccount(ctx context.Context, id string) (*session.Session, error) {
	accounts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := findAccount(accounts, id); !ok {
		return nil, fmt.Errorf("switch to %s: %w", id, common.ErrAccountNotFound)
	}
	if err := kv.Save(ctx, s.store, common.ActiveAccountKey, id); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "active account switched", "account", id)
	return session.New(id), nil
}

func (s *accountService) SyncNameFromProfile(ctx context.Context, accountID, name string) error {
	_, err := kv.Update(ctx, s.store, common.AccountsKey, []models.Account(nil), maxUpdateAttempts,
		func(cur []models.Account) ([]models.Account, error) {
			i, ok := findAccount(cur, accountID)
			if !ok || cur[i].Name == name {
				return nil, errUnchanged
			}
			next := append([]models.Account(nil), cur...)
			next[i].Name = name
			return next, nil
		})
	if errors.Is(err, errUnchanged) {
		return nil
	}
	return err
}

func (s *accountService) List(ctx context.Context) ([]models.Account, error) {
	accounts, err := kv.Load(ctx, s.store, common.AccountsKey, []models.Account(nil))
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	return accounts, nil
}

func (s *accountService) Active(ctx context.Context) (models.Account, error) {
	accounts, err := s.List(ctx)
	if err != nil {
		return models.Account{}, err
	}
	id, err := kv.Load(ctx, s.store, common.ActiveAccountKey, "")
	if err != nil {
		return models.Account{}, err
	}
	i, ok := findAccount(accounts, id)
	if !ok {
		return models.Account{}, common.ErrAccountNotFound
	}
	return accounts[i], nil
}

func findAccount(accounts []models.Account, id string) (int, bool) {
	if id == "" {
		return -1, false
	}
	for i, a := range accounts {
		if a.ID == id {
			return i, true
		}
	}
	return -1, false
}
