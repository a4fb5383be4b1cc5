package models

// Course community records. Timestamps are epoch milliseconds.

// ChatMessage is a post in a course discussion, newest first.
type ChatMessage struct {
	ID        string `json:"id"`
	AuthorID  string `json:"authorId"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

// GroupPost advertises a study group within a course.
type GroupPost struct {
	ID              string `json:"id"`
	AuthorID        string `json:"authorId"`
	Author          string `json:"author"`
	Title           string `json:"title"`
	Details         string `json:"details"`
	CreatedAt       int64  `json:"createdAt"`
	InterestedCount int    `json:"interestedCount"`
}

// Classmate is a card in a course's swipe deck: either an account that
// joined the course or a generated demo student.
type Classmate struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Program string `json:"program"`
	GPA     string `json:"gpa,omitempty"`
	Image   string `json:"image"`
	Tagline string `json:"tagline"`
	Demo    bool   `json:"demo,omitempty"`
}

type SwipeDecision string

const (
	SwipeLike SwipeDecision = "like"
	SwipePass SwipeDecision = "pass"
)

type SwipeAction struct {
	ClassmateID string        `json:"profileId"`
	Action      SwipeDecision `json:"action"`
	CreatedAt   int64         `json:"createdAt"`
}

// DirectMessage belongs to the thread of one pair within one course.
type DirectMessage struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}
