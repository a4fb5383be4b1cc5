package cli

import (
	"context"
)

// Recommend prints AI suggestions for the profile's interests.
func (a *App) Recommend(ctx context.Context, _ []string) error {
	recs := a.advisor.Recommend(ctx, a.profile.Interests)
	if len(recs) == 0 {
		a.println("No suggestions right now.")
		return nil
	}
	for _, r := range recs {
		a.printf("- %s: %s\n", r.Title, r.Reason)
	}
	return nil
}

// Icebreakers prints opening lines for a scenario.
func (a *App) Icebreakers(ctx context.Context, args []string) error {
	scenario := joinArgs(args)
	if scenario == "" {
		return errUsage
	}
	lines := a.advisor.Icebreakers(ctx, scenario)
	if len(lines) == 0 {
		a.println("No ideas right now.")
		return nil
	}
	for _, l := range lines {
		a.printf("- %s\n", l)
	}
	return nil
}

// Why explains how the current feed card matches the profile.
func (a *App) Why(ctx context.Context, _ []string) error {
	if a.cursor == nil {
		return errUsage
	}
	item, ok := a.cursor.Current()
	if !ok {
		return errUsage
	}
	reason := a.advisor.MatchReason(ctx, item.Common().Title, a.profile.Interests)
	if reason == "" {
		reason = "Great match for your profile."
	}
	a.println(reason)
	return nil
}
