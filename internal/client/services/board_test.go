package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/unicampus/internal/client/models"
	"github.com/dmitrijs2005/unicampus/internal/common"
	"github.com/dmitrijs2005/unicampus/internal/kv"
	"github.com/dmitrijs2005/unicampus/internal/kv/memory"
)

var ada = models.Profile{ID: "acc_ada", Name: "Ada", Major: "Computer Science", Avatar: "data:image/png;base64,AA=="}

func newStartedBoard(t *testing.T, s kv.Store) *Board {
	t.Helper()
	b := NewBoard(s, nil)
	require.NoError(t, b.Start(context.Background()))
	t.Cleanup(b.Close)
	return b
}

func TestBuildRequest_Templates(t *testing.T) {
	tests := []struct {
		name      string
		in        RequestInput
		wantTitle string
		wantDesc  string
		wantSize  *int
		wantDate  string
	}{
		{
			name:      "collab defaults",
			in:        RequestInput{Type: models.ItemTypeCollabRequest},
			wantTitle: "Looking for a lab partner?",
			wantDesc:  "Project request by Ada. Target team size: 2.",
			wantSize:  intPtr(2),
		},
		{
			name:      "collab goal and size",
			in:        RequestInput{Type: models.ItemTypeCollabRequest, Goal: "Need a study group?", TargetGroupSize: 4},
			wantTitle: "Need a study group?",
			wantDesc:  "Project request by Ada. Target team size: 4.",
			wantSize:  intPtr(4),
		},
		{
			name:      "explicit title wins",
			in:        RequestInput{Type: models.ItemTypeCollabRequest, Title: "COMP 251 team", Goal: "ignored"},
			wantTitle: "COMP 251 team",
			wantDesc:  "Project request by Ada. Target team size: 2.",
			wantSize:  intPtr(2),
		},
		{
			name:      "event default description",
			in:        RequestInput{Type: models.ItemTypeEvent, Description: "   ", EventDate: "2026-02-10", EventTime: "18:30"},
			wantTitle: "New Event",
			wantDesc:  "Event posted by Ada.",
			wantDate:  "2026-02-10",
		},
		{
			name:      "event trimmed description",
			in:        RequestInput{Type: models.ItemTypeEvent, Description: "  Pizza night  "},
			wantTitle: "New Event",
			wantDesc:  "Pizza night",
		},
		{
			name:      "club broadcast",
			in:        RequestInput{Type: models.ItemTypeClub, Description: "ignored"},
			wantTitle: "New Broadcast",
			wantDesc:  "Posted by Ada.",
		},
		{
			name:      "networking broadcast",
			in:        RequestInput{Type: models.ItemTypeNetworking, EventDate: "2026-02-10"},
			wantTitle: "New Broadcast",
			wantDesc:  "Posted by Ada.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := BuildRequest("req_1", ada, tt.in)
			assert.Equal(t, "req_1", r.ID)
			assert.Equal(t, tt.in.Type, r.Type)
			assert.Equal(t, tt.wantTitle, r.Title)
			assert.Equal(t, tt.wantDesc, r.Description)
			assert.Equal(t, tt.wantSize, r.TargetGroupSize)
			assert.Equal(t, tt.wantDate, r.EventDate)
			assert.Equal(t, []string{"Computer Science", "Collaboration"}, r.Tags)
			assert.Equal(t, DefaultImageFor(tt.in.Type), r.Image)
			assert.Equal(t, "acc_ada", r.CreatorID)
			assert.Equal(t, "Ada", r.CreatorName)
			assert.Equal(t, ada.Avatar, r.CreatorAvatar)
			assert.NotNil(t, r.Participants)
			assert.Empty(t, r.Participants)
		})
	}
}

func intPtr(n int) *int { return &n }

func TestCreateRequest_PrependsAndPersists(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	b := newStartedBoard(t, store)

	first, err := b.CreateRequest(ctx, ada, RequestInput{Type: models.ItemTypeCollabRequest})
	require.NoError(t, err)
	second, err := b.CreateRequest(ctx, ada, RequestInput{Type: models.ItemTypeEvent, EventDate: "2026-02-10", EventTime: "09:00"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first.ID, "req_"))
	assert.NotEqual(t, first.ID, second.ID)

	got := b.Requests()
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID, "newest first")

	stored, err := kv.Load(ctx, store, common.GlobalCollabsKey, []models.CollabRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestCreateRequest_Validation(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	b := newStartedBoard(t, store)

	bad := []RequestInput{
		{},
		{Type: models.ItemTypePartner},
		{Type: models.ItemTypeCollabRequest, TargetGroupSize: 51},
		{Type: models.ItemTypeEvent, EventDate: "10/02/2026"},
		{Type: models.ItemTypeEvent, EventTime: "6pm"},
	}
	for _, in := range bad {
		_, err := b.CreateRequest(ctx, ada, in)
		assert.ErrorIs(t, err, common.ErrValidation, "%+v", in)
	}

	_, ok, err := store.Get(ctx, common.GlobalCollabsKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestToggleInterest_Symmetric(t *testing.T) {
	ctx := context.Background()
	b := newStartedBoard(t, memory.New())

	req, err := b.CreateRequest(ctx, ada, RequestInput{Type: models.ItemTypeCollabRequest})
	require.NoError(t, err)

	r, joined, err := b.ToggleInterest(ctx, req.ID, "acc_bo")
	require.NoError(t, err)
	assert.True(t, joined)
	assert.Equal(t, []string{"acc_bo"}, r.Participants)

	r, joined, err = b.ToggleInterest(ctx, req.ID, "acc_bo")
	require.NoError(t, err)
	assert.False(t, joined)
	assert.Empty(t, r.Participants)

	got, ok := b.Get(req.ID)
	require.True(t, ok)
	assert.Empty(t, got.Participants)
}

func TestToggleInterest_NoCapAtTargetSize(t *testing.T) {
	ctx := context.Background()
	b := newStartedBoard(t, memory.New())

	req, err := b.CreateRequest(ctx, ada, RequestInput{Type: models.ItemTypeCollabRequest, TargetGroupSize: 1})
	require.NoError(t, err)

	for _, acc := range []string{"acc_1", "acc_2", "acc_3"} {
		_, joined, err := b.ToggleInterest(ctx, req.ID, acc)
		require.NoError(t, err)
		assert.True(t, joined)
	}
	got, _ := b.Get(req.ID)
	assert.Equal(t, []string{"acc_1", "acc_2", "acc_3"}, got.Participants)
	assert.Equal(t, 1, *got.TargetGroupSize)
}

func TestToggleInterest_UnknownRequest(t *testing.T) {
	_, _, err := newStartedBoard(t, memory.New()).ToggleInterest(context.Background(), "req_missing", "acc_1")
	assert.ErrorIs(t, err, common.ErrRequestNotFound)
}

func TestDeleteRequest_CreatorOnly(t *testing.T) {
	ctx := context.Background()
	b := newStartedBoard(t, memory.New())

	req, err := b.CreateRequest(ctx, ada, RequestInput{Type: models.ItemTypeClub})
	require.NoError(t, err)

	err = b.DeleteRequest(ctx, req.ID, "acc_mallory")
	assert.ErrorIs(t, err, common.ErrNotCreator)
	assert.Len(t, b.Requests(), 1)

	require.NoError(t, b.DeleteRequest(ctx, req.ID, ada.ID))
	assert.Empty(t, b.Requests())

	assert.ErrorIs(t, b.DeleteRequest(ctx, req.ID, ada.ID), common.ErrRequestNotFound)
}

func TestForceDeleteRequest(t *testing.T) {
	ctx := context.Background()
	b := newStartedBoard(t, memory.New())

	req, err := b.CreateRequest(ctx, ada, RequestInput{Type: models.ItemTypeClub})
	require.NoError(t, err)
	require.NoError(t, b.ForceDeleteRequest(ctx, req.ID))
	assert.Empty(t, b.Requests())
}

func TestBoard_ExternalChangeReloads(t *testing.T) {
	ctx := context.Background()
	hub := memory.NewHub()
	tabA := newStartedBoard(t, hub.Open())
	tabB := newStartedBoard(t, hub.Open())

	var (
		mu      sync.Mutex
		notices int
	)
	tabA.OnChange(func([]models.CollabRequest) {
		mu.Lock()
		notices++
		mu.Unlock()
	})

	req, err := tabB.CreateRequest(ctx, ada, RequestInput{Type: models.ItemTypeCollabRequest})
	require.NoError(t, err)

	got := tabA.Requests()
	require.Len(t, got, 1)
	assert.Equal(t, req.ID, got[0].ID)
	mu.Lock()
	assert.Equal(t, 1, notices)
	mu.Unlock()

	// A's own write reloads A once, locally, not through a notification.
	_, _, err = tabA.ToggleInterest(ctx, req.ID, "acc_bo")
	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, 2, notices)
	mu.Unlock()

	got = tabB.Requests()
	assert.Equal(t, []string{"acc_bo"}, got[0].Participants)
}

func TestBoard_CloseStopsReloads(t *testing.T) {
	ctx := context.Background()
	hub := memory.NewHub()
	tabA := NewBoard(hub.Open(), nil)
	require.NoError(t, tabA.Start(ctx))
	tabB := newStartedBoard(t, hub.Open())

	tabA.Close()
	tabA.Close()
	_, err := tabB.CreateRequest(ctx, ada, RequestInput{Type: models.ItemTypeClub})
	require.NoError(t, err)
	assert.Empty(t, tabA.Requests())
}

func TestBoard_ConcurrentTogglesMerge(t *testing.T) {
	ctx := context.Background()
	hub := memory.NewHub()
	tabA := newStartedBoard(t, hub.Open())
	tabB := newStartedBoard(t, hub.Open())

	req, err := tabA.CreateRequest(ctx, ada, RequestInput{Type: models.ItemTypeCollabRequest})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i, b := range []*Board{tabA, tabB} {
		wg.Add(1)
		go func(b *Board, acc string) {
			defer wg.Done()
			_, _, err := b.ToggleInterest(ctx, req.ID, acc)
			assert.NoError(t, err)
		}(b, []string{"acc_a", "acc_b"}[i])
	}
	wg.Wait()

	stored, err := kv.Load(ctx, hub.Open(), common.GlobalCollabsKey, []models.CollabRequest(nil))
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.ElementsMatch(t, []string{"acc_a", "acc_b"}, stored[0].Participants)
}

// conflictStore loses every compare-and-swap, as if another writer always
// got there first.
type conflictStore struct{ kv.Store }

func (conflictStore) CompareAndSwap(context.Context, string, string, string) (bool, error) {
	return false, nil
}

func TestBoard_VersionConflictAfterRetries(t *testing.T) {
	b := NewBoard(conflictStore{memory.New()}, nil)
	_, err := b.CreateRequest(context.Background(), ada, RequestInput{Type: models.ItemTypeClub})
	assert.ErrorIs(t, err, common.ErrVersionConflict)
}

func TestBoard_SnapshotDigest(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	b := newStartedBoard(t, store)

	reqs, digest, err := b.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, reqs)
	assert.Equal(t, "", digest)

	_, err = b.CreateRequest(ctx, ada, RequestInput{Type: models.ItemTypeClub})
	require.NoError(t, err)
	raw, _, _ := store.Get(ctx, common.GlobalCollabsKey)

	_, digest, err = b.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, kv.Digest(raw), digest)
}

func TestBoard_CorruptStorageLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Set(ctx, common.GlobalCollabsKey, "[[["))

	b := newStartedBoard(t, store)
	assert.Empty(t, b.Requests())

	_, err := b.CreateRequest(ctx, ada, RequestInput{Type: models.ItemTypeClub})
	require.NoError(t, err)
	assert.Len(t, b.Requests(), 1)
}
