package models

// ItemType discriminates discovery item variants.
type ItemType string

const (
	ItemTypeEvent         ItemType = "EVENT"
	ItemTypePartner       ItemType = "PARTNER"
	ItemTypeClub          ItemType = "CLUB"
	ItemTypeCourse        ItemType = "COURSE"
	ItemTypeNetworking    ItemType = "NETWORKING"
	ItemTypeCollabRequest ItemType = "COLLAB_REQUEST"
)

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeEvent, ItemTypePartner, ItemTypeClub, ItemTypeCourse,
		ItemTypeNetworking, ItemTypeCollabRequest:
		return true
	}
	return false
}

// Item is any card shown in the discovery feed.
type Item interface {
	Common() Card
}

// Card holds the fields every discovery item has.
type Card struct {
	ID          string         `json:"id"`
	Type        ItemType       `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Image       string         `json:"image,omitempty"`
	Tags        []string       `json:"tags"`
	MatchReason string         `json:"matchReason,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func (c Card) Common() Card { return c }

type EventItem struct {
	Card
	Date    string `json:"date,omitempty"`
	Creator string `json:"creator,omitempty"`
}

type PartnerItem struct {
	Card
}

type ClubItem struct {
	Card
}

type CourseItem struct {
	Card
}

type NetworkingItem struct {
	Card
	Company string `json:"company,omitempty"`
}

// CollabRequest is a user-created board entry. Its Type may be
// COLLAB_REQUEST, EVENT, CLUB or NETWORKING.
type CollabRequest struct {
	Card
	CreatorID       string   `json:"creatorId"`
	CreatorName     string   `json:"creatorName"`
	CreatorAvatar   string   `json:"creatorAvatar"`
	TargetGroupSize *int     `json:"targetGroupSize,omitempty"`
	Participants    []string `json:"participants"`
	EventDate       string   `json:"eventDate,omitempty"`
	EventTime       string   `json:"eventTime,omitempty"`
}

// HasParticipant reports whether accountID has expressed interest.
func (r CollabRequest) HasParticipant(accountID string) bool {
	for _, p := range r.Participants {
		if p == accountID {
			return true
		}
	}
	return false
}

// ToggleParticipant adds accountID if absent and removes it otherwise,
// returning true when the account joined. Participants is rebuilt rather
// than edited in place.
func (r *CollabRequest) ToggleParticipant(accountID string) bool {
	next := make([]string, 0, len(r.Participants)+1)
	joined := true
	for _, p := range r.Participants {
		if p == accountID {
			joined = false
			continue
		}
		next = append(next, p)
	}
	if joined {
		next = append(next, accountID)
	}
	r.Participants = next
	return joined
}

// Recommendation is one AI-suggested campus activity.
type Recommendation struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
}
