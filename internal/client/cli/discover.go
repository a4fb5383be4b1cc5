package cli

import (
	"context"
	"slices"
	"strings"

	"github.com/dmitrijs2005/unicampus/internal/client/feed"
	"github.com/dmitrijs2005/unicampus/internal/client/models"
)

// Feed builds the discovery feed for a category and optional sub-category
// and shows its first card.
func (a *App) Feed(ctx context.Context, args []string) error {
	a.category, a.sub = feed.CategoryAll, ""
	if len(args) > 0 {
		a.category = strings.ToLower(args[0])
		if !slices.Contains(feed.Categories(), a.category) {
			a.println("Unknown category, showing everything. Categories:", strings.Join(feed.Categories(), ", "))
		}
	}
	if len(args) > 1 {
		a.sub = joinArgs(args[1:])
	}

	f := a.composer.Compose(a.category, a.sub)
	a.cursor = f.Cursor()
	a.printf("%d cards\n", f.Len())
	return a.showCurrent()
}

// Next skips the current card.
func (a *App) Next(ctx context.Context, _ []string) error {
	if a.cursor == nil {
		return a.Feed(ctx, nil)
	}
	a.cursor.Next()
	return a.showCurrent()
}

// Like swipes right on the current card: it is saved, and a board request
// also has the account's interest toggled. Then the next card is shown.
func (a *App) Like(ctx context.Context, _ []string) error {
	if a.cursor == nil {
		return a.Feed(ctx, nil)
	}
	item, ok := a.cursor.Current()
	if !ok {
		a.println("Nothing to like.")
		return nil
	}

	res, err := a.swiper.SwipeRight(ctx, a.sess, item, true)
	if res.Hearted {
		a.printf("Saved %q\n", item.Common().Title)
	}
	if res.Toggled {
		if res.Joined {
			a.println("You're interested! The creator can see you on the board.")
		} else {
			a.println("You're no longer listed as interested.")
		}
	}
	if err != nil {
		return err
	}

	a.cursor.Next()
	return a.showCurrent()
}

func (a *App) showCurrent() error {
	item, ok := a.cursor.Current()
	if !ok {
		a.println("Nothing here yet.")
		return nil
	}
	a.print(formatItem(item, a.sess.AccountID))
	return nil
}

// Hearted lists the saved items.
func (a *App) Hearted(ctx context.Context, _ []string) error {
	items, err := a.hearted.List(ctx, a.sess)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		a.println("No saved items yet.")
		return nil
	}
	for _, it := range items {
		a.print(formatSummary(it))
	}
	return nil
}

// Unheart removes an item from the saved list.
func (a *App) Unheart(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	items, err := a.hearted.Unheart(ctx, a.sess, args[0])
	if err != nil {
		return err
	}
	a.printf("%d saved items left\n", len(items))
	return nil
}

// Calendar lists dates with saved or board items, or the items on one date.
func (a *App) Calendar(ctx context.Context, args []string) error {
	saved, err := a.hearted.List(ctx, a.sess)
	if err != nil {
		return err
	}
	items := slices.Concat(saved, models.FromRequests(a.board.Requests()))

	if len(args) == 0 {
		dates := feed.EventDates(items)
		if len(dates) == 0 {
			a.println("No dated items.")
			return nil
		}
		for _, d := range dates {
			types := feed.TypesOn(items, d)
			names := make([]string, len(types))
			for i, t := range types {
				names[i] = string(t)
			}
			a.printf("%s  %s\n", d, strings.Join(names, ", "))
		}
		return nil
	}

	on := feed.ItemsOn(items, args[0])
	if len(on) == 0 {
		a.println("Nothing on", args[0])
		return nil
	}
	for _, it := range on {
		a.print(formatSummary(it))
	}
	return nil
}
