package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestAccount_JSONUsesEpochMillis(t *testing.T) {
	a := Account{ID: "acc_1", Name: "Ada", CreatedAt: time.UnixMilli(1767225600123)}

	b, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"acc_1","name":"Ada","createdAt":1767225600123}`, string(b))

	var got Account
	require.NoError(t, json.Unmarshal(b, &got))
	assert.True(t, a.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, a.Name, got.Name)
}

func TestProfile_DefaultAndClone(t *testing.T) {
	p := DefaultProfile("acc_1")
	assert.Equal(t, "acc_1", p.ID)
	assert.Equal(t, "New User", p.Name)
	assert.Equal(t, "3.8", p.GPA)
	assert.Equal(t, []string{"Python", "Teamwork", "Research"}, p.Skills)
	assert.Empty(t, p.Interests)

	c := p.Clone()
	c.Skills[0] = "Go"
	assert.Equal(t, "Python", p.Skills[0])
}

func TestProfile_JSONRoundTrip(t *testing.T) {
	in := Profile{
		ID:         "acc_1",
		Name:       "Ada",
		Major:      "Software Engineering",
		Interests:  []string{"Robotics", "Debate"},
		Bio:        "Builds things.",
		Avatar:     "data:image/png;base64,iVBORw0KGgo=",
		GPA:        "3.9",
		Skills:     []string{"Go"},
		Experience: []string{},
	}

	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out Profile
	require.NoError(t, json.Unmarshal(b, &out))
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("profile round trip (-want +got):\n%s", diff)
	}
}

func TestItems_RoundTripPreservesVariants(t *testing.T) {
	in := Items{
		EventItem{
			Card: Card{ID: "1", Type: ItemTypeEvent, Title: "Hack", Tags: []string{"Tech"},
				Metadata: map[string]any{"startDate": "2026-02-10T18:00:00"}},
			Date:    "2026-02-10",
			Creator: "McWICS",
		},
		PartnerItem{Card: Card{ID: "2", Type: ItemTypePartner, Title: "Sarah", Tags: []string{}}},
		ClubItem{Card: Card{ID: "3", Type: ItemTypeClub, Title: "Daily", Tags: []string{"Arts"}}},
		CourseItem{Card: Card{ID: "4", Type: ItemTypeCourse, Title: "COMP 202", Tags: []string{"CS"}}},
		NetworkingItem{Card: Card{ID: "n1", Type: ItemTypeNetworking, Title: "Google", Tags: []string{"Tech"}}, Company: "Google"},
		CollabRequest{
			Card:            Card{ID: "req_1", Type: ItemTypeCollabRequest, Title: "Lab partner", Tags: []string{"CS", "Collaboration"}},
			CreatorID:       "acc_1",
			CreatorName:     "Ada",
			TargetGroupSize: intPtr(3),
			Participants:    []string{"acc_2"},
		},
		CollabRequest{
			Card:         Card{ID: "req_2", Type: ItemTypeEvent, Title: "Mixer", Tags: []string{"CS", "Collaboration"}},
			CreatorID:    "acc_2",
			CreatorName:  "Bo",
			Participants: []string{},
			EventDate:    "2026-03-01",
			EventTime:    "18:30",
		},
	}

	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out Items
	require.NoError(t, json.Unmarshal(b, &out))

	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeItem_CreatorIDWinsOverType(t *testing.T) {
	it, err := DecodeItem([]byte(`{"id":"req_9","type":"NETWORKING","title":"x","tags":[],"creatorId":"acc_1","participants":[]}`))
	require.NoError(t, err)
	req, ok := it.(CollabRequest)
	require.True(t, ok)
	assert.Equal(t, ItemTypeNetworking, req.Type)
	assert.Equal(t, "acc_1", req.CreatorID)
}

func TestDecodeItem_UnknownTypeIsPlainCard(t *testing.T) {
	it, err := DecodeItem([]byte(`{"id":"z","type":"PODCAST","title":"x","tags":["a"]}`))
	require.NoError(t, err)
	card, ok := it.(Card)
	require.True(t, ok)
	assert.Equal(t, ItemType("PODCAST"), card.Type)
	assert.False(t, card.Type.Valid())
}

func TestItems_UnmarshalRejectsNonList(t *testing.T) {
	var out Items
	assert.Error(t, json.Unmarshal([]byte(`{"id":"1"}`), &out))
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &out))
}

func TestItems_Helpers(t *testing.T) {
	items := FromRequests([]CollabRequest{
		{Card: Card{ID: "a"}}, {Card: Card{ID: "b"}},
	})
	assert.Equal(t, []string{"a", "b"}, items.IDs())
	assert.True(t, items.Contains("b"))
	assert.False(t, items.Contains("c"))
}

func TestCollabRequest_ToggleParticipant(t *testing.T) {
	shared := []string{"acc_1", "acc_2"}
	r := CollabRequest{Participants: shared}

	assert.False(t, r.ToggleParticipant("acc_1"))
	assert.Equal(t, []string{"acc_2"}, r.Participants)
	assert.Equal(t, []string{"acc_1", "acc_2"}, shared, "original slice untouched")

	assert.True(t, r.ToggleParticipant("acc_3"))
	assert.Equal(t, []string{"acc_2", "acc_3"}, r.Participants)
	assert.True(t, r.HasParticipant("acc_3"))

	r.ToggleParticipant("acc_3")
	r.ToggleParticipant("acc_3")
	assert.Equal(t, []string{"acc_2", "acc_3"}, r.Participants)
}

func TestItemType_Valid(t *testing.T) {
	for _, typ := range []ItemType{ItemTypeEvent, ItemTypePartner, ItemTypeClub, ItemTypeCourse, ItemTypeNetworking, ItemTypeCollabRequest} {
		assert.True(t, typ.Valid(), typ)
	}
	assert.False(t, ItemType("").Valid())
}
