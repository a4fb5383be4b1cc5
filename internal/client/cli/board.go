package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/unicampus/internal/client/models"
	"github.com/dmitrijs2005/unicampus/internal/client/services"
)

var postTypes = []string{
	string(models.ItemTypeCollabRequest),
	string(models.ItemTypeEvent),
	string(models.ItemTypeClub),
	string(models.ItemTypeNetworking),
}

// Board lists the shared collaboration requests.
func (a *App) Board(ctx context.Context, _ []string) error {
	reqs := a.board.Requests()
	if len(reqs) == 0 {
		a.println("The board is empty. Use 'post' to add a request.")
		return nil
	}
	for _, r := range reqs {
		a.print(formatRequestLine(r, a.sess.AccountID))
	}
	return nil
}

// Post asks for the details of a new request and puts it on the board.
func (a *App) Post(ctx context.Context, _ []string) error {
	typ, err := GetChoices(a.reader, "What kind of post?", postTypes, a.out)
	if err != nil {
		return err
	}
	if len(typ) != 1 {
		return errUsage
	}
	in := services.RequestInput{Type: models.ItemType(typ[0])}

	if in.Type == models.ItemTypeCollabRequest {
		goal, err := GetChoices(a.reader, "Goal (Enter for the first one)", services.CollabGoals, a.out)
		if err != nil {
			return err
		}
		if len(goal) > 0 {
			in.Goal = goal[0]
		}
		size, err := GetSimpleText(a.reader, "Group size (Enter for 2)", a.out)
		if err != nil {
			return err
		}
		if size != "" {
			if in.TargetGroupSize, err = strconv.Atoi(size); err != nil {
				return errUsage
			}
		}
	} else {
		if in.Title, err = GetSimpleText(a.reader, "Title", a.out); err != nil {
			return err
		}
	}

	if in.Description, err = GetMultiline(a.reader, "Description", a.out); err != nil {
		return err
	}
	if in.Type == models.ItemTypeEvent {
		if in.EventDate, err = GetSimpleText(a.reader, "Date (YYYY-MM-DD)", a.out); err != nil {
			return err
		}
		if in.EventTime, err = GetSimpleText(a.reader, "Time (HH:MM)", a.out); err != nil {
			return err
		}
	}

	req, err := a.board.CreateRequest(ctx, a.profile, in)
	if err != nil {
		return err
	}
	a.printf("Posted %s\n", req.ID)
	return nil
}

// Join toggles the account's interest in a request.
func (a *App) Join(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	req, joined, err := a.board.ToggleInterest(ctx, args[0], a.sess.AccountID)
	if err != nil {
		return err
	}
	verb := "Left"
	if joined {
		verb = "Joined"
	}
	a.printf("%s %q (%s)\n", verb, req.Title, groupSize(req))
	return nil
}

// Delete removes one of the account's own requests.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := a.board.DeleteRequest(ctx, args[0], a.sess.AccountID); err != nil {
		return err
	}
	a.println("Deleted.")
	return nil
}

func groupSize(r models.CollabRequest) string {
	s := strconv.Itoa(len(r.Participants))
	if r.TargetGroupSize != nil {
		s += "/" + strconv.Itoa(*r.TargetGroupSize)
	}
	return s + " interested"
}

func shortTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return " #" + strings.Join(tags, " #")
}
