// Package feed composes the swipeable discovery feed from the built-in
// catalog and the live collaboration board, and groups items by date for
// the calendar view.
package feed

import (
	"strings"

	"github.com/dmitrijs2005/unicampus/internal/client/models"
)

// Top-level categories.
const (
	CategoryAll        = "all"
	CategoryCourses    = "courses"
	CategoryClubs      = "clubs"
	CategoryEvents     = "events"
	CategoryNetworking = "networking"
)

var categoryTypes = map[string][]models.ItemType{
	CategoryCourses:    {models.ItemTypePartner, models.ItemTypeCourse, models.ItemTypeCollabRequest},
	CategoryClubs:      {models.ItemTypeClub},
	CategoryEvents:     {models.ItemTypeEvent},
	CategoryNetworking: {models.ItemTypeNetworking},
}

// Categories lists the selectable categories in display order.
func Categories() []string {
	return []string{CategoryAll, CategoryCourses, CategoryClubs, CategoryEvents, CategoryNetworking}
}

// BoardSource supplies the current board requests.
type BoardSource interface {
	Requests() []models.CollabRequest
}

// Composer builds feeds over a fixed catalog and a live board.
type Composer struct {
	catalog models.Items
	board   BoardSource
}

// NewComposer uses the built-in Catalog. board may be nil.
func NewComposer(board BoardSource) *Composer {
	return &Composer{catalog: Catalog(), board: board}
}

// Compose returns catalog ++ board filtered by category and subcategory.
func (c *Composer) Compose(category, sub string) Feed {
	all := make(models.Items, 0, len(c.catalog)+8)
	all = append(all, c.catalog...)
	if c.board != nil {
		all = append(all, models.FromRequests(c.board.Requests())...)
	}
	return Filter(all, category, sub)
}

// Filter keeps items matching sub (case-insensitive exact tag) when sub is
// set, else items whose type belongs to category. "all" and unknown
// categories keep everything.
func Filter(items models.Items, category, sub string) Feed {
	out := make(models.Items, 0, len(items))
	for _, it := range items {
		if matches(it.Common(), category, sub) {
			out = append(out, it)
		}
	}
	return Feed{items: out}
}

func matches(c models.Card, category, sub string) bool {
	if sub != "" {
		for _, tag := range c.Tags {
			if strings.EqualFold(tag, sub) {
				return true
			}
		}
		return false
	}

	types, ok := categoryTypes[strings.ToLower(category)]
	if !ok {
		return true
	}
	for _, t := range types {
		if c.Type == t {
			return true
		}
	}
	return false
}

// Feed is a finite list read as an endless ring.
type Feed struct {
	items models.Items
}

func (f Feed) Len() int { return len(f.items) }

// Items returns the underlying list in order.
func (f Feed) Items() models.Items { return f.items }

// At returns the item at i modulo Len. An empty feed has no items.
func (f Feed) At(i int) (models.Item, bool) {
	n := len(f.items)
	if n == 0 {
		return nil, false
	}
	i %= n
	if i < 0 {
		i += n
	}
	return f.items[i], true
}

// Cursor returns a cursor positioned at the first item.
func (f Feed) Cursor() *Cursor { return &Cursor{feed: f} }

// Cursor walks a Feed forever, wrapping past the end.
type Cursor struct {
	feed Feed
	pos  int
}

// Current returns the item under the cursor.
func (c *Cursor) Current() (models.Item, bool) { return c.feed.At(c.pos) }

// Next advances and returns the new current item.
func (c *Cursor) Next() (models.Item, bool) {
	if c.feed.Len() == 0 {
		return nil, false
	}
	c.pos = (c.pos + 1) % c.feed.Len()
	return c.Current()
}

// Position is the index of the current item.
func (c *Cursor) Position() int { return c.pos }

// Reset moves back to the first item.
func (c *Cursor) Reset() { c.pos = 0 }
