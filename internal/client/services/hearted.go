package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/unicampus/internal/client/models"
	"github.com/dmitrijs2005/unicampus/internal/client/session"
	"github.com/dmitrijs2005/unicampus/internal/common"
	"github.com/dmitrijs2005/unicampus/internal/kv"
	"github.com/dmitrijs2005/unicampus/internal/logging"
)

// HeartedService keeps the saved items of each account.
type HeartedService interface {
	List(ctx context.Context, sess *session.Session) (models.Items, error)

	// Heart appends item unless an item with the same id is saved.
	Heart(ctx context.Context, sess *session.Session, item models.Item) (models.Items, error)

	// Unheart removes the item with id, if saved.
	Unheart(ctx context.Context, sess *session.Session, id string) (models.Items, error)
}

type heartedService struct {
	store  kv.Store
	logger logging.Logger
}

func NewHeartedService(store kv.Store, logger logging.Logger) HeartedService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &heartedService{store: store, logger: logger.With("module", "hearted")}
}

func (s *heartedService) List(ctx context.Context, sess *session.Session) (models.Items, error) {
	if sess == nil {
		return nil, common.ErrNoSession
	}
	items, err := kv.Load(ctx, s.store, common.HeartedKey(sess.AccountID), models.Items(nil))
	if err != nil {
		return nil, err
	}
	return nonNil(items), nil
}

func (s *heartedService) Heart(ctx context.Context, sess *session.Session, item models.Item) (models.Items, error) {
	if sess == nil {
		return nil, common.ErrNoSession
	}
	return s.modify(ctx, sess.AccountID, func(cur models.Items) (models.Items, error) {
		if cur.Contains(item.Common().ID) {
			return nil, errUnchanged
		}
		return append(cur, item), nil
	})
}

func (s *heartedService) Unheart(ctx context.Context, sess *session.Session, id string) (models.Items, error) {
	if sess == nil {
		return nil, common.ErrNoSession
	}
	return s.modify(ctx, sess.AccountID, func(cur models.Items) (models.Items, error) {
		next := make(models.Items, 0, len(cur))
		for _, it := range cur {
			if it.Common().ID != id {
				next = append(next, it)
			}
		}
		if len(next) == len(cur) {
			return nil, errUnchanged
		}
		return next, nil
	})
}

func (s *heartedService) modify(ctx context.Context, accountID string, fn func(models.Items) (models.Items, error)) (models.Items, error) {
	key := common.HeartedKey(accountID)
	items, err := kv.Update(ctx, s.store, key, models.Items(nil), maxUpdateAttempts, fn)
	if errors.Is(err, errUnchanged) {
		items, err = kv.Load(ctx, s.store, key, models.Items(nil))
	}
	if err != nil {
		return nil, err
	}
	return nonNil(items), nil
}

func nonNil(items models.Items) models.Items {
	if items == nil {
		return models.Items{}
	}
	return items
}
