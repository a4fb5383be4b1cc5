package models

import (
	"encoding/json"
	"fmt"
)

// Items is a heterogeneous list of discovery items that round-trips through
// JSON.
type Items []Item

func (is *Items) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return err
	}
	if raws == nil {
		*is = nil
		return nil
	}

	out := make(Items, 0, len(raws))
	for i, raw := range raws {
		it, err := DecodeItem(raw)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, it)
	}
	*is = out
	return nil
}

// DecodeItem decodes one JSON object into its variant. An object with a
// creatorId is a CollabRequest whatever its type; unknown types decode as a
// plain Card.
func DecodeItem(raw []byte) (Item, error) {
	var probe struct {
		Type      ItemType        `json:"type"`
		CreatorID json.RawMessage `json:"creatorId"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}

	if probe.CreatorID != nil {
		return decodeAs[CollabRequest](raw)
	}

	switch probe.Type {
	case ItemTypeEvent:
		return decodeAs[EventItem](raw)
	case ItemTypePartner:
		return decodeAs[PartnerItem](raw)
	case ItemTypeClub:
		return decodeAs[ClubItem](raw)
	case ItemTypeCourse:
		return decodeAs[CourseItem](raw)
	case ItemTypeNetworking:
		return decodeAs[NetworkingItem](raw)
	default:
		return decodeAs[Card](raw)
	}
}

func decodeAs[T Item](raw []byte) (Item, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// IDs returns the ids of is in order.
func (is Items) IDs() []string {
	ids := make([]string, 0, len(is))
	for _, it := range is {
		ids = append(ids, it.Common().ID)
	}
	return ids
}

// Contains reports whether an item with id is present.
func (is Items) Contains(id string) bool {
	for _, it := range is {
		if it.Common().ID == id {
			return true
		}
	}
	return false
}

// FromRequests lifts board requests into feed items.
func FromRequests(reqs []CollabRequest) Items {
	out := make(Items, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r)
	}
	return out
}
