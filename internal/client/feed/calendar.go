package feed

import (
	"sort"
	"strings"

	"github.com/dmitrijs2005/unicampus/internal/client/models"
)

// DateKey returns the YYYY-MM-DD an item is scheduled on, or "" if it has
// none. Sources in order: the item date, metadata "date", metadata
// "startDate", then a board event's eventDate. Only the part before "T" is
// kept.
func DateKey(item models.Item) string {
	var candidates []string

	if ev, ok := item.(models.EventItem); ok {
		candidates = append(candidates, ev.Date)
	}

	md := item.Common().Metadata
	candidates = append(candidates, metaString(md, "date"), metaString(md, "startDate"))

	if req, ok := item.(models.CollabRequest); ok {
		candidates = append(candidates, req.EventDate)
	}

	for _, c := range candidates {
		if c != "" {
			day, _, _ := strings.Cut(c, "T")
			return day
		}
	}
	return ""
}

func metaString(md map[string]any, key string) string {
	s, _ := md[key].(string)
	return s
}

// EventDates returns the distinct dates of items, sorted.
func EventDates(items models.Items) []string {
	seen := make(map[string]struct{})
	for _, it := range items {
		if d := DateKey(it); d != "" {
			seen[d] = struct{}{}
		}
	}
	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// ItemsOn returns the items scheduled on date (YYYY-MM-DD).
func ItemsOn(items models.Items, date string) models.Items {
	out := models.Items{}
	for _, it := range items {
		if DateKey(it) == date {
			out = append(out, it)
		}
	}
	return out
}

// TypesOn returns the distinct item types scheduled on date, in first-seen
// order.
func TypesOn(items models.Items, date string) []models.ItemType {
	var types []models.ItemType
	seen := make(map[models.ItemType]bool)
	for _, it := range ItemsOn(items, date) {
		t := it.Common().Type
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	return types
}
