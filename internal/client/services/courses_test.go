package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/unicampus/internal/client/models"
	"github.com/dmitrijs2005/unicampus/internal/common"
	"github.com/dmitrijs2005/unicampus/internal/kv"
	"github.com/dmitrijs2005/unicampus/internal/kv/memory"
)

var (
	grace = models.Profile{ID: "acc_grace", Name: "Grace", Major: "Software Engineering", GPA: "3.9"}
	linus = models.Profile{ID: "acc_linus", Name: "Linus", Major: "Electrical Engineering"}
)

func TestLookupCourse(t *testing.T) {
	for _, in := range []string{"ECSE 415", "ecse 415", "ecse-415", "  ECSE   415 "} {
		c, ok := LookupCourse(in)
		require.True(t, ok, in)
		assert.Equal(t, Course{Code: "ECSE 415", Slug: "ecse-415", Subject: "ECSE"}, c)
	}

	c, ok := LookupCourse("ECSE 478 (Capstone)")
	require.True(t, ok)
	assert.Equal(t, "ecse-478-capstone", c.Slug)

	for _, in := range []string{"", "PHYS 101", "CHEE", "ecse"} {
		_, ok := LookupCourse(in)
		assert.False(t, ok, in)
	}
}

func TestSubjectsCatalogue(t *testing.T) {
	subs := Subjects()
	require.Len(t, subs, 9)
	assert.Equal(t, "ECSE", subs[0].Code)
	assert.Equal(t, []string{"COMP 202", "COMP 206", "COMP 551"}, subs[1].Courses)
	assert.NotNil(t, subs[2].Courses)
	assert.Empty(t, subs[2].Courses)

	subs[0].Courses[0] = "changed"
	assert.Equal(t, "ECSE 415", Subjects()[0].Courses[0])
}

func TestSubjectOf(t *testing.T) {
	assert.Equal(t, "ECSE", SubjectOf("ecse 415"))
	assert.Equal(t, "COMP", SubjectOf("COMP 551"))
	assert.Equal(t, "", SubjectOf("PHYS 101"))
	assert.Equal(t, "", SubjectOf(""))
}

func TestProgramForMajor(t *testing.T) {
	cases := map[string]string{
		"Software Engineering":  "Software Engineering",
		"Computer Science":      "Computer Science",
		"comp sci minor":        "Computer Science",
		"Computer Engineering":  "Computer Engineering",
		"Electrical":            "Electrical Engineering",
		"Biomedical Science":    "Biomedical Engineering",
		"Materials":             "Materials Engineering",
		"Agricultural Sciences": "Agricultural Engineering",
		"Philosophy":            "fallback",
		"":                      "fallback",
	}
	for major, want := range cases {
		assert.Equal(t, want, ProgramForMajor(major, "fallback"), major)
	}
}

func TestDemoClassmates_StablePerSeed(t *testing.T) {
	c, _ := LookupCourse("ECSE 415")

	a := demoClassmates(c, "seed_x")
	require.Len(t, a, demoClassmatesPerDeck)
	assert.Equal(t, a, demoClassmates(c, "seed_x"))
	assert.NotEqual(t, a, demoClassmates(c, "seed_y"))

	allowed := ProgramsFor("ECSE")
	for _, m := range a {
		assert.True(t, m.Demo)
		assert.Contains(t, allowed, m.Program)
		assert.True(t, strings.HasPrefix(m.ID, "demo_ecse-415_"), m.ID)
		assert.GreaterOrEqual(t, m.Age, 19)
		assert.LessOrEqual(t, m.Age, 24)
		assert.Contains(t, demoTaglines, m.Tagline)
	}
}

func TestCourses_RequireMembership(t *testing.T) {
	ctx := context.Background()
	svc := NewCourseService(memory.New(), nil)

	_, err := svc.Chat(ctx, grace.ID, "ECSE 415")
	assert.ErrorIs(t, err, common.ErrNotJoined)
	_, err = svc.Deck(ctx, grace.ID, "ECSE 415")
	assert.ErrorIs(t, err, common.ErrNotJoined)
	_, err = svc.PostMessage(ctx, grace, "ECSE 415", MessageInput{Text: "hi"})
	assert.ErrorIs(t, err, common.ErrNotJoined)

	_, err = svc.Join(ctx, grace, "PHYS 101")
	assert.ErrorIs(t, err, common.ErrCourseNotFound)
	_, err = svc.Chat(ctx, grace.ID, "PHYS 101")
	assert.ErrorIs(t, err, common.ErrCourseNotFound)
}

func TestCourses_JoinAndLeave(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewCourseService(store, nil)

	c, err := svc.Join(ctx, grace, "ecse 415")
	require.NoError(t, err)
	assert.Equal(t, "ECSE 415", c.Code)
	_, err = svc.Join(ctx, grace, "ECSE 415")
	require.NoError(t, err)
	_, err = svc.Join(ctx, grace, "COMP 202")
	require.NoError(t, err)

	joined, err := svc.Joined(ctx, grace.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ECSE 415", "COMP 202"}, courseCodes(joined))

	roster, err := kv.Load(ctx, store, common.CourseRosterKey("ecse-415"), []models.Classmate(nil))
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, models.Classmate{
		ID:      grace.ID,
		Name:    "Grace",
		Age:     20,
		Program: "Software Engineering",
		GPA:     "3.9",
		Image:   generatedAvatar("Grace"),
		Tagline: DefaultTagline,
	}, roster[0])

	// Rejoining refreshes the roster entry.
	renamed := grace
	renamed.Name = "Grace H."
	_, err = svc.Join(ctx, renamed, "ECSE 415")
	require.NoError(t, err)
	roster, err = kv.Load(ctx, store, common.CourseRosterKey("ecse-415"), []models.Classmate(nil))
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "Grace H.", roster[0].Name)

	require.NoError(t, svc.Leave(ctx, grace.ID, "ECSE 415"))
	require.NoError(t, svc.Leave(ctx, grace.ID, "ECSE 415"))
	joined, err = svc.Joined(ctx, grace.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"COMP 202"}, courseCodes(joined))

	roster, err = kv.Load(ctx, store, common.CourseRosterKey("ecse-415"), []models.Classmate(nil))
	require.NoError(t, err)
	assert.Empty(t, roster)

	_, err = svc.Chat(ctx, grace.ID, "ECSE 415")
	assert.ErrorIs(t, err, common.ErrNotJoined)
}

func TestCourses_JoinedIsPerAccount(t *testing.T) {
	ctx := context.Background()
	svc := NewCourseService(memory.New(), nil)

	_, err := svc.Join(ctx, grace, "COMP 206")
	require.NoError(t, err)

	joined, err := svc.Joined(ctx, linus.ID)
	require.NoError(t, err)
	assert.Empty(t, joined)
}

func TestCourses_ChatIsSharedNewestFirst(t *testing.T) {
	ctx := context.Background()
	hub := memory.NewHub()
	tabA := NewCourseService(hub.Open(), nil)
	tabB := NewCourseService(hub.Open(), nil)

	_, err := tabA.Join(ctx, grace, "ECSE 223")
	require.NoError(t, err)
	_, err = tabB.Join(ctx, linus, "ECSE 223")
	require.NoError(t, err)

	first, err := tabA.PostMessage(ctx, grace, "ECSE 223", MessageInput{Text: "  anyone for the lab?  "})
	require.NoError(t, err)
	assert.Equal(t, "anyone for the lab?", first.Text)
	assert.Equal(t, "Grace", first.Author)
	_, err = tabB.PostMessage(ctx, linus, "ECSE 223", MessageInput{Text: "me"})
	require.NoError(t, err)

	msgs, err := tabA.Chat(ctx, grace.ID, "ECSE 223")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "me", msgs[0].Text)
	assert.Equal(t, linus.ID, msgs[0].AuthorID)
	assert.Equal(t, first, msgs[1])

	_, err = tabA.PostMessage(ctx, grace, "ECSE 223", MessageInput{Text: "   "})
	assert.ErrorIs(t, err, common.ErrValidation)

	anon := models.Profile{ID: "acc_anon"}
	_, err = tabA.Join(ctx, anon, "ECSE 223")
	require.NoError(t, err)
	msg, err := tabA.PostMessage(ctx, anon, "ECSE 223", MessageInput{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", msg.Author)
}

func TestCourses_Groups(t *testing.T) {
	ctx := context.Background()
	svc := NewCourseService(memory.New(), nil)
	_, err := svc.Join(ctx, grace, "COMP 551")
	require.NoError(t, err)
	_, err = svc.Join(ctx, linus, "COMP 551")
	require.NoError(t, err)

	_, err = svc.PostGroup(ctx, grace, "COMP 551", GroupInput{Details: "no title"})
	assert.ErrorIs(t, err, common.ErrValidation)

	g, err := svc.PostGroup(ctx, grace, "COMP 551", GroupInput{Title: "Project team", Details: "Kaggle comp"})
	require.NoError(t, err)
	assert.Zero(t, g.InterestedCount)

	bumped, err := svc.BumpInterest(ctx, linus.ID, "COMP 551", g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, bumped.InterestedCount)
	bumped, err = svc.BumpInterest(ctx, grace.ID, "COMP 551", g.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, bumped.InterestedCount)

	groups, err := svc.Groups(ctx, linus.ID, "COMP 551")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, bumped, groups[0])

	_, err = svc.BumpInterest(ctx, linus.ID, "COMP 551", "grp_missing")
	assert.ErrorIs(t, err, common.ErrGroupNotFound)
}

func TestCourses_DeckSwipeAndMatches(t *testing.T) {
	ctx := context.Background()
	svc := NewCourseService(memory.New(), nil)
	_, err := svc.Join(ctx, grace, "ECSE 415")
	require.NoError(t, err)
	_, err = svc.Join(ctx, linus, "ECSE 415")
	require.NoError(t, err)

	deck, err := svc.Deck(ctx, linus.ID, "ECSE 415")
	require.NoError(t, err)
	require.Len(t, deck, 1+demoClassmatesPerDeck)
	assert.Equal(t, grace.ID, deck[0].ID, "real classmates come first")
	assert.Equal(t, -1, indexOfClassmate(deck, linus.ID), "no self in deck")

	again, err := svc.Deck(ctx, linus.ID, "ECSE 415")
	require.NoError(t, err)
	assert.Equal(t, deck, again, "demo deck is stable")

	res, err := svc.Swipe(ctx, linus.ID, "ECSE 415", grace.ID, models.SwipeLike)
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, "Grace", res.Classmate.Name)
	assert.Contains(t, res.Draft, "Hi Grace!")
	assert.Contains(t, res.Draft, "ECSE 415")

	res, err = svc.Swipe(ctx, linus.ID, "ECSE 415", deck[1].ID, models.SwipePass)
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Empty(t, res.Draft)

	_, err = svc.Swipe(ctx, linus.ID, "ECSE 415", grace.ID, models.SwipeLike)
	require.NoError(t, err)

	deck, err = svc.Deck(ctx, linus.ID, "ECSE 415")
	require.NoError(t, err)
	assert.Len(t, deck, demoClassmatesPerDeck-1)

	matches, err := svc.Matches(ctx, linus.ID, "ECSE 415")
	require.NoError(t, err)
	require.Len(t, matches, 1, "a repeated like matches once")
	assert.Equal(t, grace.ID, matches[0].ID)

	// Swipes and matches belong to the swiping account.
	other, err := svc.Matches(ctx, grace.ID, "ECSE 415")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, svc.ResetSwipes(ctx, linus.ID, "ECSE 415"))
	deck, err = svc.Deck(ctx, linus.ID, "ECSE 415")
	require.NoError(t, err)
	assert.Len(t, deck, 1+demoClassmatesPerDeck)
	matches, err = svc.Matches(ctx, linus.ID, "ECSE 415")
	require.NoError(t, err)
	assert.Len(t, matches, 1, "reset keeps matches")

	_, err = svc.Swipe(ctx, linus.ID, "ECSE 415", "acc_stranger", models.SwipeLike)
	assert.ErrorIs(t, err, common.ErrClassmateNotFound)
	_, err = svc.Swipe(ctx, linus.ID, "ECSE 415", grace.ID, "superlike")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCourses_DeckFiltersBySubjectPrograms(t *testing.T) {
	ctx := context.Background()
	svc := NewCourseService(memory.New(), nil)
	cs := models.Profile{ID: "acc_cs", Name: "Barbara", Major: "Computer Science"}

	// Software Engineering is not a COMP program.
	_, err := svc.Join(ctx, grace, "COMP 202")
	require.NoError(t, err)
	_, err = svc.Join(ctx, cs, "COMP 202")
	require.NoError(t, err)

	deck, err := svc.Deck(ctx, cs.ID, "COMP 202")
	require.NoError(t, err)
	assert.Equal(t, -1, indexOfClassmate(deck, grace.ID))
	for _, m := range deck {
		assert.Equal(t, "Computer Science", m.Program)
	}

	deck, err = svc.Deck(ctx, grace.ID, "COMP 202")
	require.NoError(t, err)
	assert.Equal(t, cs.ID, deck[0].ID)
}

func TestCourses_SeedIsSharedAcrossSessions(t *testing.T) {
	ctx := context.Background()
	hub := memory.NewHub()
	tabA := NewCourseService(hub.Open(), nil)
	tabB := NewCourseService(hub.Open(), nil)
	_, err := tabA.Join(ctx, grace, "ECSE 551")
	require.NoError(t, err)
	_, err = tabB.Join(ctx, linus, "ECSE 551")
	require.NoError(t, err)

	a, err := tabA.Deck(ctx, grace.ID, "ECSE 551")
	require.NoError(t, err)
	b, err := tabB.Deck(ctx, linus.ID, "ECSE 551")
	require.NoError(t, err)
	assert.Equal(t, a[1:], b[1:], "both see the same demo students")
}

func TestCourses_DirectMessages(t *testing.T) {
	ctx := context.Background()
	svc := NewCourseService(memory.New(), nil)
	_, err := svc.Join(ctx, grace, "ECSE 343")
	require.NoError(t, err)
	_, err = svc.Join(ctx, linus, "ECSE 343")
	require.NoError(t, err)

	_, err = svc.SendDM(ctx, linus.ID, "ECSE 343", grace.ID, MessageInput{Text: "Want to team up?"})
	require.NoError(t, err)
	reply, err := svc.SendDM(ctx, grace.ID, "ECSE 343", linus.ID, MessageInput{Text: "Sure"})
	require.NoError(t, err)
	assert.Equal(t, grace.ID, reply.From)
	assert.Equal(t, linus.ID, reply.To)

	thread, err := svc.Thread(ctx, grace.ID, "ECSE 343", linus.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "Sure", thread[0].Text)

	fromOtherSide, err := svc.Thread(ctx, linus.ID, "ECSE 343", grace.ID)
	require.NoError(t, err)
	assert.Equal(t, thread, fromOtherSide)

	_, err = svc.SendDM(ctx, grace.ID, "ECSE 343", "acc_nobody", MessageInput{Text: "hi"})
	assert.ErrorIs(t, err, common.ErrClassmateNotFound)
	_, err = svc.SendDM(ctx, grace.ID, "ECSE 343", linus.ID, MessageInput{})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCourses_ConcurrentPostsMerge(t *testing.T) {
	ctx := context.Background()
	hub := memory.NewHub()
	tabA := NewCourseService(hub.Open(), nil)
	tabB := NewCourseService(hub.Open(), nil)
	_, err := tabA.Join(ctx, grace, "ECSE 415")
	require.NoError(t, err)
	_, err = tabB.Join(ctx, linus, "ECSE 415")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i, svc := range []CourseService{tabA, tabB} {
		wg.Add(1)
		go func(svc CourseService, me models.Profile) {
			defer wg.Done()
			_, err := svc.PostMessage(ctx, me, "ECSE 415", MessageInput{Text: "from " + me.Name})
			assert.NoError(t, err)
		}(svc, []models.Profile{grace, linus}[i])
	}
	wg.Wait()

	msgs, err := tabA.Chat(ctx, grace.ID, "ECSE 415")
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestCourses_VersionConflictAfterRetries(t *testing.T) {
	_, err := NewCourseService(conflictStore{memory.New()}, nil).Join(context.Background(), grace, "ECSE 415")
	assert.ErrorIs(t, err, common.ErrVersionConflict)
}

func courseCodes(cs []Course) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Code
	}
	return out
}
