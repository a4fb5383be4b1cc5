package cli

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/unicampus/internal/client/feed"
	"github.com/dmitrijs2005/unicampus/internal/client/models"
)

func formatProfile(p models.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", p.Name)
	if p.Major != "" {
		fmt.Fprintf(&b, "  Major:      %s\n", p.Major)
	}
	fmt.Fprintf(&b, "  GPA:        %s\n", p.GPA)
	fmt.Fprintf(&b, "  Bio:        %s\n", p.Bio)
	fmt.Fprintf(&b, "  Interests:  %s\n", strings.Join(p.Interests, ", "))
	writeNumbered(&b, "Skills", p.Skills)
	writeNumbered(&b, "Experience", p.Experience)
	if p.Avatar != "" {
		b.WriteString("  Avatar:     set\n")
	}
	return b.String()
}

func writeNumbered(b *strings.Builder, title string, list []string) {
	fmt.Fprintf(b, "  %s:\n", title)
	for i, s := range list {
		fmt.Fprintf(b, "    %d. %s\n", i+1, s)
	}
}

// formatItem renders a full feed card.
func formatItem(item models.Item, accountID string) string {
	c := item.Common()
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", c.Type, c.Title)

	switch v := item.(type) {
	case models.CollabRequest:
		fmt.Fprintf(&b, "  by %s, %s\n", v.CreatorName, groupSize(v))
		if v.EventDate != "" {
			fmt.Fprintf(&b, "  when: %s %s\n", v.EventDate, v.EventTime)
		}
		if v.HasParticipant(accountID) {
			b.WriteString("  you are interested\n")
		}
	case models.EventItem:
		if v.Date != "" {
			fmt.Fprintf(&b, "  when: %s\n", v.Date)
		}
		if v.Creator != "" {
			fmt.Fprintf(&b, "  by %s\n", v.Creator)
		}
	case models.NetworkingItem:
		if v.Company != "" {
			fmt.Fprintf(&b, "  company: %s\n", v.Company)
		}
	}

	if c.Description != "" {
		fmt.Fprintf(&b, "  %s\n", c.Description)
	}
	if len(c.Tags) > 0 {
		fmt.Fprintf(&b, " %s\n", shortTags(c.Tags))
	}
	return b.String()
}

// formatSummary renders one line per item.
func formatSummary(item models.Item) string {
	c := item.Common()
	date := feed.DateKey(item)
	if date != "" {
		date = "  " + date
	}
	return fmt.Sprintf("%-28s [%s] %s%s\n", c.ID, c.Type, c.Title, date)
}

func formatRequestLine(r models.CollabRequest, accountID string) string {
	mark := " "
	switch {
	case r.CreatorID == accountID:
		mark = "@"
	case r.HasParticipant(accountID):
		mark = "+"
	}
	return fmt.Sprintf("%s %-28s [%s] %s by %s, %s\n", mark, r.ID, r.Type, r.Title, r.CreatorName, groupSize(r))
}
