package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/unicampus/internal/client/models"
	"github.com/dmitrijs2005/unicampus/internal/common"
	"github.com/dmitrijs2005/unicampus/internal/kv"
	"github.com/dmitrijs2005/unicampus/internal/logging"
)

const (
	DefaultCollabGoal      = "Looking for a lab partner?"
	DefaultTargetGroupSize = 2
)

// CollabGoals are the suggested titles for a collaboration request.
var CollabGoals = []string{
	DefaultCollabGoal,
	"Searching for a capstone team?",
	"Need a study group?",
	"Just browsing campus events?",
}

var defaultImages = map[models.ItemType]string{
	models.ItemTypeCollabRequest: "https://images.unsplash.com/photo-1523240795612-9a054b0db644?auto=format&fit=crop&q=80&w=800",
	models.ItemTypePartner:       "https://images.unsplash.com/photo-1523240795612-9a054b0db644?auto=format&fit=crop&q=80&w=800",
	models.ItemTypeEvent:         "https://images.unsplash.com/photo-1517245386807-bb43f82c33c4?auto=format&fit=crop&q=80&w=800",
	models.ItemTypeClub:          "https://images.unsplash.com/photo-1522202176988-66273c2fd55f?auto=format&fit=crop&q=80&w=800",
	models.ItemTypeNetworking:    "https://images.unsplash.com/photo-1521791136064-7986c2920216?auto=format&fit=crop&q=80&w=800",
}

// DefaultImageFor returns the stock picture used for a new request of type t.
func DefaultImageFor(t models.ItemType) string {
	if img, ok := defaultImages[t]; ok {
		return img
	}
	return defaultImages[models.ItemTypeCollabRequest]
}

// RequestInput is what a user fills in to post on the board.
type RequestInput struct {
	Type            models.ItemType `json:"type" validate:"required,oneof=COLLAB_REQUEST EVENT CLUB NETWORKING"`
	Title           string          `json:"title" validate:"max=140"`
	Goal            string          `json:"goal" validate:"max=140"`
	Description     string          `json:"description" validate:"max=2000"`
	TargetGroupSize int             `json:"targetGroupSize" validate:"omitempty,min=1,max=50"`
	EventDate       string          `json:"eventDate" validate:"omitempty,datetime=2006-01-02"`
	EventTime       string          `json:"eventTime" validate:"omitempty,datetime=15:04"`
}

// BuildRequest applies the per-type templates to in. It does not validate.
func BuildRequest(id string, creator models.Profile, in RequestInput) models.CollabRequest {
	isEvent := in.Type == models.ItemTypeEvent
	isCollab := in.Type == models.ItemTypeCollabRequest

	size := in.TargetGroupSize
	if size == 0 {
		size = DefaultTargetGroupSize
	}

	title := in.Title
	if title == "" {
		switch {
		case isCollab:
			title = in.Goal
			if title == "" {
				title = DefaultCollabGoal
			}
		case isEvent:
			title = "New Event"
		default:
			title = "New Broadcast"
		}
	}

	var description string
	switch {
	case isEvent:
		description = strings.TrimSpace(in.Description)
		if description == "" {
			description = fmt.Sprintf("Event posted by %s.", creator.Name)
		}
	case isCollab:
		description = fmt.Sprintf("Project request by %s. Target team size: %d.", creator.Name, size)
	default:
		description = fmt.Sprintf("Posted by %s.", creator.Name)
	}

	req := models.CollabRequest{
		Card: models.Card{
			ID:          id,
			Type:        in.Type,
			Title:       title,
			Description: description,
			Image:       DefaultImageFor(in.Type),
			Tags:        []string{creator.Major, "Collaboration"},
		},
		CreatorID:     creator.ID,
		CreatorName:   creator.Name,
		CreatorAvatar: creator.Avatar,
		Participants:  []string{},
	}
	if isCollab {
		req.TargetGroupSize = &size
	}
	if isEvent {
		req.EventDate = in.EventDate
		req.EventTime = in.EventTime
	}
	return req
}

// Board is the global collaboration board shared by every account and
// every session. It keeps an in-memory copy of the list for readers and
// reloads it whenever another session writes the shared key.
//
// Mutations are optimistic read-modify-CAS cycles over the whole list, so
// concurrent writers from different sessions merge rather than overwrite.
type Board struct {
	store  kv.Store
	logger logging.Logger
	now    func() time.Time

	mu       sync.RWMutex
	requests []models.CollabRequest

	lmu       sync.Mutex
	nextID    int
	listeners map[int]func([]models.CollabRequest)

	unsubscribe func()
}

func NewBoard(store kv.Store, logger logging.Logger) *Board {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Board{
		store:     store,
		logger:    logger.With("module", "board"),
		now:       time.Now,
		listeners: make(map[int]func([]models.CollabRequest)),
	}
}

// Start loads the board and subscribes to external changes of the shared
// key. Each notification triggers an independent full reload.
func (b *Board) Start(ctx context.Context) error {
	if err := b.ReloadFromStorage(ctx); err != nil {
		return err
	}

	unsub := b.store.OnExternalChange(common.GlobalCollabsKey, func(c kv.Change) {
		b.logger.Debug(context.Background(), "external board change", "origin", c.Origin, "deleted", c.Deleted)
		if err := b.ReloadFromStorage(context.Background()); err != nil {
			b.logger.Warn(context.Background(), "board reload failed", "error", err)
		}
	})

	b.mu.Lock()
	b.unsubscribe = unsub
	b.mu.Unlock()
	return nil
}

// Close stops listening for external changes.
func (b *Board) Close() {
	b.mu.Lock()
	unsub := b.unsubscribe
	b.unsubscribe = nil
	b.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// OnChange registers fn to receive the list after every reload or local
// mutation. It returns a func that removes fn.
func (b *Board) OnChange(fn func([]models.CollabRequest)) func() {
	b.lmu.Lock()
	defer b.lmu.Unlock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	return func() {
		b.lmu.Lock()
		defer b.lmu.Unlock()
		delete(b.listeners, id)
	}
}

// Requests returns a copy of the in-memory list, newest first.
func (b *Board) Requests() []models.CollabRequest {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneRequests(b.requests)
}

// Get returns the in-memory request with id.
func (b *Board) Get(id string) (models.CollabRequest, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i := indexOfRequest(b.requests, id); i >= 0 {
		return cloneRequests(b.requests[i : i+1])[0], true
	}
	return models.CollabRequest{}, false
}

// Snapshot reads the list straight from storage along with the digest of
// the stored value ("" when absent).
func (b *Board) Snapshot(ctx context.Context) ([]models.CollabRequest, string, error) {
	raw, ok, err := b.store.Get(ctx, common.GlobalCollabsKey)
	if err != nil {
		return nil, "", fmt.Errorf("read board: %w", err)
	}
	reqs := kv.DecodeOr(raw, ok, []models.CollabRequest(nil))
	if reqs == nil {
		reqs = []models.CollabRequest{}
	}
	return reqs, kv.DigestOf(raw, ok), nil
}

// ReloadFromStorage replaces the in-memory list with the stored one.
func (b *Board) ReloadFromStorage(ctx context.Context) error {
	reqs, _, err := b.Snapshot(ctx)
	if err != nil {
		return err
	}
	b.replace(reqs)
	return nil
}

// CreateRequest validates in, builds a request owned by creator and
// prepends it to the board.
func (b *Board) CreateRequest(ctx context.Context, creator models.Profile, in RequestInput) (models.CollabRequest, error) {
	if err := validateStruct(in); err != nil {
		return models.CollabRequest{}, err
	}
	if in.Type != models.ItemTypeCollabRequest && in.TargetGroupSize != 0 {
		in.TargetGroupSize = 0
	}

	req := BuildRequest(newID("req", b.now()), creator, in)
	_, err := b.mutate(ctx, func(cur []models.CollabRequest) ([]models.CollabRequest, error) {
		return append([]models.CollabRequest{req}, cur...), nil
	})
	if err != nil {
		return models.CollabRequest{}, err
	}

	b.logger.Info(ctx, "request created", "request", req.ID, "type", req.Type, "creator", req.CreatorID)
	return req, nil
}

// ToggleInterest adds accountID to the request's participants, or removes
// it when present. It reports whether the account is now a participant.
// The target group size is not a cap.
func (b *Board) ToggleInterest(ctx context.Context, requestID, accountID string) (models.CollabRequest, bool, error) {
	var (
		updated models.CollabRequest
		joined  bool
	)
	_, err := b.mutate(ctx, func(cur []models.CollabRequest) ([]models.CollabRequest, error) {
		i := indexOfRequest(cur, requestID)
		if i < 0 {
			return nil, fmt.Errorf("request %s: %w", requestID, common.ErrRequestNotFound)
		}
		next := cloneRequests(cur)
		joined = next[i].ToggleParticipant(accountID)
		updated = next[i]
		return next, nil
	})
	if err != nil {
		return models.CollabRequest{}, false, err
	}

	b.logger.Debug(ctx, "interest toggled", "request", requestID, "account", accountID, "joined", joined)
	return updated, joined, nil
}

// DeleteRequest removes a request. Only its creator may delete it.
func (b *Board) DeleteRequest(ctx context.Context, requestID, requesterID string) error {
	return b.deleteRequest(ctx, requestID, func(r models.CollabRequest) error {
		if r.CreatorID != requesterID {
			return fmt.Errorf("request %s: %w", requestID, common.ErrNotCreator)
		}
		return nil
	})
}

// ForceDeleteRequest removes a request without the creator check.
func (b *Board) ForceDeleteRequest(ctx context.Context, requestID string) error {
	return b.deleteRequest(ctx, requestID, func(models.CollabRequest) error { return nil })
}

func (b *Board) deleteRequest(ctx context.Context, requestID string, allow func(models.CollabRequest) error) error {
	_, err := b.mutate(ctx, func(cur []models.CollabRequest) ([]models.CollabRequest, error) {
		i := indexOfRequest(cur, requestID)
		if i < 0 {
			return nil, fmt.Errorf("request %s: %w", requestID, common.ErrRequestNotFound)
		}
		if err := allow(cur[i]); err != nil {
			return nil, err
		}
		next := make([]models.CollabRequest, 0, len(cur)-1)
		next = append(next, cur[:i]...)
		return append(next, cur[i+1:]...), nil
	})
	if err != nil {
		return err
	}

	b.logger.Info(ctx, "request deleted", "request", requestID)
	return nil
}

func (b *Board) mutate(ctx context.Context, fn func([]models.CollabRequest) ([]models.CollabRequest, error)) ([]models.CollabRequest, error) {
	next, err := kv.Update(ctx, b.store, common.GlobalCollabsKey, []models.CollabRequest(nil), maxUpdateAttempts, fn)
	if err != nil {
		return nil, err
	}
	b.replace(next)
	return next, nil
}

func (b *Board) replace(reqs []models.CollabRequest) {
	if reqs == nil {
		reqs = []models.CollabRequest{}
	}
	b.mu.Lock()
	b.requests = reqs
	b.mu.Unlock()

	b.lmu.Lock()
	listeners := make([]func([]models.CollabRequest), 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	b.lmu.Unlock()

	for _, fn := range listeners {
		fn(cloneRequests(reqs))
	}
}

func indexOfRequest(reqs []models.CollabRequest, id string) int {
	for i, r := range reqs {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func cloneRequests(reqs []models.CollabRequest) []models.CollabRequest {
	out := make([]models.CollabRequest, len(reqs))
	for i, r := range reqs {
		r.Participants = slices.Clone(r.Participants)
		r.Tags = slices.Clone(r.Tags)
		out[i] = r
	}
	return out
}
