package feed

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/unicampus/internal/client/models"
	"github.com/dmitrijs2005/unicampus/internal/client/session"
)

// Hearter saves items for an account.
type Hearter interface {
	Heart(ctx context.Context, sess *session.Session, item models.Item) (models.Items, error)
}

// InterestToggler flips an account's interest in a board request.
type InterestToggler interface {
	ToggleInterest(ctx context.Context, requestID, accountID string) (models.CollabRequest, bool, error)
}

// Swiper applies the effects of a right swipe.
type Swiper struct {
	hearts Hearter
	board  InterestToggler
}

func NewSwiper(hearts Hearter, board InterestToggler) *Swiper {
	return &Swiper{hearts: hearts, board: board}
}

// SwipeResult reports which effects ran.
type SwipeResult struct {
	Hearted bool
	// Toggled is set when item was a board request; Joined is then the
	// account's new membership.
	Toggled bool
	Joined  bool
}

// SwipeRight hearts item when save is set and toggles interest when item
// is a board request. The two effects are independent: a failure in one
// does not skip the other, and both errors are returned joined.
func (s *Swiper) SwipeRight(ctx context.Context, sess *session.Session, item models.Item, save bool) (SwipeResult, error) {
	var (
		res  SwipeResult
		errs []error
	)

	if save {
		if _, err := s.hearts.Heart(ctx, sess, item); err != nil {
			errs = append(errs, err)
		} else {
			res.Hearted = true
		}
	}

	if req, ok := item.(models.CollabRequest); ok && sess != nil {
		if _, joined, err := s.board.ToggleInterest(ctx, req.ID, sess.AccountID); err != nil {
			errs = append(errs, err)
		} else {
			res.Toggled = true
			res.Joined = joined
		}
	}

	return res, errors.Join(errs...)
}
