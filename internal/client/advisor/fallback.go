package advisor

import (
	"strings"

	"github.com/dmitrijs2005/unicampus/internal/client/models"
)

// FallbackMatchReason is returned by MatchReason when the service is over quota.
const FallbackMatchReason = "Aligns with your selected campus interests and academic goals."

// FallbackRecommendations returns the fixed suggestions used while the
// service is over quota.
func FallbackRecommendations() []models.Recommendation {
	return []models.Recommendation{
		{Title: "McGill Student Society (SSMU)", Reason: "The hub for all campus life and clubs."},
		{Title: "Faculty Networking Mixers", Reason: "Great way to meet peers in your specific major."},
		{Title: "Campus Study Marathons", Reason: "Find study partners for high-impact courses."},
	}
}

type scenarioLines struct {
	keywords []string
	lines    []string
}

// Checked in order; the first rule with a matching keyword wins.
var icebreakerRules = []scenarioLines{
	{
		keywords: []string{"hackathon"},
		lines: []string{
			"Hey, are you competing or just checking out the projects?",
			"What are you building this weekend? I'm trying to get inspired.",
			"Have you found a team yet, or are you still looking for people?",
		},
	},
	{
		keywords: []string{"interview"},
		lines: []string{
			"Thanks for taking the time today, could you share what you're hoping to learn from this interview?",
			"Before we start, is there a specific part of my background you want me to focus on?",
			"Would you like my answers to be high-level first, then I can go deeper if needed?",
		},
	},
	{
		keywords: []string{"mixer", "network", "coffee chat"},
		lines: []string{
			"Hey, what brought you to this event today?",
			"Who are you hoping to meet here, more students or recruiters?",
			"Have you been to one of these before, or is this your first time?",
		},
	},
	{
		keywords: []string{"study", "lab", "project"},
		lines: []string{
			"Quick question, are you also working on the same assignment right now?",
			"What part are you finding hardest so far? Maybe we can compare notes.",
			"Do you want to split tasks and check each other's work after?",
		},
	},
}

var defaultIcebreakers = []string{
	"Hey, what brought you here today?",
	"What's the vibe been like so far?",
	"What are you most excited about in this situation?",
}

// FallbackIcebreakers picks canned opening lines by scenario keyword.
func FallbackIcebreakers(scenario string) []string {
	s := strings.ToLower(scenario)
	for _, rule := range icebreakerRules {
		for _, kw := range rule.keywords {
			if strings.Contains(s, kw) {
				return append([]string(nil), rule.lines...)
			}
		}
	}
	return append([]string(nil), defaultIcebreakers...)
}
