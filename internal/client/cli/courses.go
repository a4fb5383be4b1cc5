package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/unicampus/internal/client/models"
	"github.com/dmitrijs2005/unicampus/internal/client/services"
	"github.com/dmitrijs2005/unicampus/internal/common"
)

var errNoCourse = errors.New("no course open, use 'enroll' or 'open' first")

// Courses lists the subjects, or the courses of one subject with "+" on
// joined ones and "*" on the open one.
func (a *App) Courses(ctx context.Context, args []string) error {
	joined, err := a.courses.Joined(ctx, a.sess.AccountID)
	if err != nil {
		return err
	}
	codes := make([]string, len(joined))
	for i, c := range joined {
		codes[i] = c.Code
	}

	if len(args) == 0 {
		for _, s := range services.Subjects() {
			a.printf("  %-5s %-28s %d courses\n", s.Code, s.Label, len(s.Courses))
		}
		if len(codes) > 0 {
			a.println("Joined:", strings.Join(codes, ", "))
		}
		return nil
	}

	code := strings.ToUpper(args[0])
	i := slices.IndexFunc(services.Subjects(), func(s services.Subject) bool { return s.Code == code })
	if i < 0 {
		return fmt.Errorf("subject %q: %w", args[0], common.ErrCourseNotFound)
	}
	sub := services.Subjects()[i]
	if len(sub.Courses) == 0 {
		a.println("No course communities in", sub.Label, "yet.")
		return nil
	}
	for _, c := range sub.Courses {
		mark := " "
		switch {
		case c == a.course:
			mark = "*"
		case slices.Contains(codes, c):
			mark = "+"
		}
		a.printf("%s %s\n", mark, c)
	}
	return nil
}

// Enroll joins a course and opens it.
func (a *App) Enroll(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	c, err := a.courses.Join(ctx, a.profile, joinArgs(args))
	if err != nil {
		return err
	}
	a.course = c.Code
	a.printf("Joined %s. Try 'chat', 'groups' or 'classmates'.\n", c.Code)
	return nil
}

// Open selects a joined course for the course commands.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	c, ok := services.LookupCourse(joinArgs(args))
	if !ok {
		return fmt.Errorf("course %q: %w", joinArgs(args), common.ErrCourseNotFound)
	}
	joined, err := a.courses.Joined(ctx, a.sess.AccountID)
	if err != nil {
		return err
	}
	if !slices.Contains(joined, c) {
		return fmt.Errorf("course %s: %w", c.Code, common.ErrNotJoined)
	}
	a.course = c.Code
	a.printf("Opened %s\n", c.Code)
	return nil
}

// Drop leaves a course, the open one by default.
func (a *App) Drop(ctx context.Context, args []string) error {
	course := joinArgs(args)
	if course == "" {
		course = a.course
	}
	if course == "" {
		return errNoCourse
	}
	if err := a.courses.Leave(ctx, a.sess.AccountID, course); err != nil {
		return err
	}
	if c, ok := services.LookupCourse(course); ok && c.Code == a.course {
		a.course = ""
	}
	a.println("Left", course)
	return nil
}

func (a *App) openCourse() (string, error) {
	if a.course == "" {
		return "", errNoCourse
	}
	return a.course, nil
}

// Chat prints the open course's discussion, newest first.
func (a *App) Chat(ctx context.Context, _ []string) error {
	course, err := a.openCourse()
	if err != nil {
		return err
	}
	msgs, err := a.courses.Chat(ctx, a.sess.AccountID, course)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		a.println("No messages yet. Use 'say' to start the discussion.")
		return nil
	}
	for _, m := range msgs {
		a.printf("[%s] %s: %s\n", formatMillis(m.CreatedAt), m.Author, m.Text)
	}
	return nil
}

// Say posts to the open course's discussion.
func (a *App) Say(ctx context.Context, args []string) error {
	course, err := a.openCourse()
	if err != nil {
		return err
	}
	if _, err := a.courses.PostMessage(ctx, a.profile, course, services.MessageInput{Text: joinArgs(args)}); err != nil {
		return err
	}
	a.println("Sent.")
	return nil
}

// Groups lists the open course's study groups.
func (a *App) Groups(ctx context.Context, _ []string) error {
	course, err := a.openCourse()
	if err != nil {
		return err
	}
	groups, err := a.courses.Groups(ctx, a.sess.AccountID, course)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		a.println("No study groups yet. Use 'group' to start one.")
		return nil
	}
	for _, g := range groups {
		a.printf("  %-28s %s by %s, %d interested\n", g.ID, g.Title, g.Author, g.InterestedCount)
		if g.Details != "" {
			a.printf("  %28s %s\n", "", g.Details)
		}
	}
	return nil
}

// Group asks for a title and details and posts a study group.
func (a *App) Group(ctx context.Context, _ []string) error {
	course, err := a.openCourse()
	if err != nil {
		return err
	}
	var in services.GroupInput
	if in.Title, err = GetSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if in.Details, err = GetMultiline(a.reader, "Details", a.out); err != nil {
		return err
	}
	g, err := a.courses.PostGroup(ctx, a.profile, course, in)
	if err != nil {
		return err
	}
	a.printf("Posted %s\n", g.ID)
	return nil
}

// Bump marks interest in a study group.
func (a *App) Bump(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	course, err := a.openCourse()
	if err != nil {
		return err
	}
	g, err := a.courses.BumpInterest(ctx, a.sess.AccountID, course, args[0])
	if err != nil {
		return err
	}
	a.printf("%q now has %d interested\n", g.Title, g.InterestedCount)
	return nil
}

// Classmates shows the next card of the open course's deck.
func (a *App) Classmates(ctx context.Context, _ []string) error {
	course, err := a.openCourse()
	if err != nil {
		return err
	}
	deck, err := a.courses.Deck(ctx, a.sess.AccountID, course)
	if err != nil {
		return err
	}
	if len(deck) == 0 {
		a.println("You're done swiping. Check 'matches', or 'swipe reset' to start over.")
		return nil
	}
	a.printf("%d left\n", len(deck))
	a.print(formatClassmate(deck[0]))
	return nil
}

// Swipe likes or passes the top card of the deck, or resets the deck.
func (a *App) Swipe(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	course, err := a.openCourse()
	if err != nil {
		return err
	}
	if args[0] == "reset" {
		if err := a.courses.ResetSwipes(ctx, a.sess.AccountID, course); err != nil {
			return err
		}
		return a.Classmates(ctx, nil)
	}

	deck, err := a.courses.Deck(ctx, a.sess.AccountID, course)
	if err != nil {
		return err
	}
	if len(deck) == 0 {
		return a.Classmates(ctx, nil)
	}
	res, err := a.courses.Swipe(ctx, a.sess.AccountID, course, deck[0].ID, models.SwipeDecision(args[0]))
	if err != nil {
		return err
	}
	if res.Matched {
		a.printf("Matched with %s! Say hi:\n  dm %s %s\n", res.Classmate.Name, res.Classmate.ID, res.Draft)
	}
	return a.Classmates(ctx, nil)
}

// Matches lists the classmates liked in the open course.
func (a *App) Matches(ctx context.Context, _ []string) error {
	course, err := a.openCourse()
	if err != nil {
		return err
	}
	matches, err := a.courses.Matches(ctx, a.sess.AccountID, course)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		a.println("No matches yet.")
		return nil
	}
	for _, m := range matches {
		a.printf("  %-32s %s, %s\n", m.ID, m.Name, m.Program)
	}
	return nil
}

// DM sends a direct message when text follows the classmate id, and prints
// the thread otherwise.
func (a *App) DM(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	course, err := a.openCourse()
	if err != nil {
		return err
	}
	other := args[0]
	if text := joinArgs(args[1:]); text != "" {
		if _, err := a.courses.SendDM(ctx, a.sess.AccountID, course, other, services.MessageInput{Text: text}); err != nil {
			return err
		}
	}

	thread, err := a.courses.Thread(ctx, a.sess.AccountID, course, other)
	if err != nil {
		return err
	}
	for _, m := range slices.Backward(thread) {
		who := "them"
		if m.From == a.sess.AccountID {
			who = "you"
		}
		a.printf("[%s] %s: %s\n", formatMillis(m.CreatedAt), who, m.Text)
	}
	return nil
}

func formatClassmate(m models.Classmate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, %d  (%s)\n", m.Name, m.Age, m.ID)
	b.WriteString("  " + m.Program)
	if m.GPA != "" {
		b.WriteString(", GPA " + m.GPA)
	}
	b.WriteString("\n  " + m.Tagline + "\n")
	return b.String()
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Format(time.DateTime)
}
