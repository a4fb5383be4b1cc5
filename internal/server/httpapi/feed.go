package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/unicampus/internal/client/feed"
	"github.com/dmitrijs2005/unicampus/internal/client/models"
)

type swipeRequest struct {
	ID   string `json:"id"`
	Save bool   `json:"save"`
}

type swipeResponse struct {
	Hearted bool `json:"hearted"`
	Toggled bool `json:"toggled"`
	Joined  bool `json:"joined"`
}

type calendarDay struct {
	Date  string            `json:"date"`
	Types []models.ItemType `json:"types"`
	Items models.Items      `json:"items"`
}

func (s *Server) getFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	if category == "" {
		category = feed.CategoryAll
	}
	writeJSON(w, http.StatusOK, s.composer.Compose(category, q.Get("sub")).Items())
}

// swipe applies a right swipe to the feed item with the given id.
func (s *Server) swipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	var req swipeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}

	item, ok := s.findFeedItem(req.ID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "item not found"})
		return
	}

	res, err := s.swiper.SwipeRight(ctx, sess, item, req.Save)
	if res.Toggled {
		s.metrics.observeBoard("interest", nil)
	}
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, swipeResponse{Hearted: res.Hearted, Toggled: res.Toggled, Joined: res.Joined})
}

func (s *Server) findFeedItem(id string) (models.Item, bool) {
	for _, it := range s.composer.Compose(feed.CategoryAll, "").Items() {
		if it.Common().ID == id {
			return it, true
		}
	}
	return nil, false
}

// getCalendar groups the account's hearted items and the board by date.
func (s *Server) getCalendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	hearted, err := s.hearted.List(ctx, sess)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}

	items := append(models.Items{}, hearted...)
	items = append(items, models.FromRequests(s.board.Requests())...)

	days := []calendarDay{}
	for _, d := range feed.EventDates(items) {
		days = append(days, calendarDay{Date: d, Types: feed.TypesOn(items, d), Items: feed.ItemsOn(items, d)})
	}
	writeJSON(w, http.StatusOK, days)
}
