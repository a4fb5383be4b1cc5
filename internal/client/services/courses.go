package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/unicampus/internal/client/models"
	"github.com/dmitrijs2005/unicampus/internal/common"
	"github.com/dmitrijs2005/unicampus/internal/kv"
	"github.com/dmitrijs2005/unicampus/internal/logging"
)

// MessageInput is a chat or direct message body.
type MessageInput struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// GroupInput advertises a study group.
type GroupInput struct {
	Title   string `json:"title" validate:"required,max=140"`
	Details string `json:"details" validate:"max=2000"`
}

// SwipeResult is the outcome of one swipe. Draft is an opening line for a
// new match and is empty on a pass.
type SwipeResult struct {
	Classmate models.Classmate `json:"classmate"`
	Matched   bool             `json:"matched"`
	Draft     string           `json:"draft,omitempty"`
}

// CourseService runs the course communities: membership, discussion, study
// groups, the classmate deck and direct messages.
//
// Chat, groups and the roster are shared by every account; joined courses,
// swipes and matches belong to one account. Every course operation other
// than Join requires membership and fails with common.ErrNotJoined.
type CourseService interface {
	Joined(ctx context.Context, accountID string) ([]Course, error)

	// Join adds the course to the account and publishes me on its roster.
	// Joining again refreshes the roster entry from me.
	Join(ctx context.Context, me models.Profile, course string) (Course, error)

	// Leave removes the course and the account's roster entry.
	Leave(ctx context.Context, accountID, course string) error

	Chat(ctx context.Context, accountID, course string) ([]models.ChatMessage, error)
	PostMessage(ctx context.Context, me models.Profile, course string, in MessageInput) (models.ChatMessage, error)

	Groups(ctx context.Context, accountID, course string) ([]models.GroupPost, error)
	PostGroup(ctx context.Context, me models.Profile, course string, in GroupInput) (models.GroupPost, error)
	BumpInterest(ctx context.Context, accountID, course, groupID string) (models.GroupPost, error)

	// Deck returns the classmates not yet swiped: other roster members then
	// demo students, limited to the programs of the course's subject.
	Deck(ctx context.Context, accountID, course string) ([]models.Classmate, error)
	Swipe(ctx context.Context, accountID, course, classmateID string, d models.SwipeDecision) (SwipeResult, error)
	ResetSwipes(ctx context.Context, accountID, course string) error
	Matches(ctx context.Context, accountID, course string) ([]models.Classmate, error)

	SendDM(ctx context.Context, accountID, course, to string, in MessageInput) (models.DirectMessage, error)
	Thread(ctx context.Context, accountID, course, other string) ([]models.DirectMessage, error)
}

type courseService struct {
	store  kv.Store
	logger logging.Logger
	now    func() time.Time
}

func NewCourseService(store kv.Store, logger logging.Logger) CourseService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &courseService{
		store:  store,
		logger: logger.With("module", "courses"),
		now:    time.Now,
	}
}

func lookupCourse(course string) (Course, error) {
	c, ok := LookupCourse(course)
	if !ok {
		return Course{}, fmt.Errorf("course %q: %w", course, common.ErrCourseNotFound)
	}
	return c, nil
}

func (s *courseService) joinedSlugs(ctx context.Context, accountID string) ([]string, error) {
	return kv.Load(ctx, s.store, common.JoinedCoursesKey(accountID), []string(nil))
}

// member resolves course and checks that accountID joined it.
func (s *courseService) member(ctx context.Context, accountID, course string) (Course, error) {
	c, err := lookupCourse(course)
	if err != nil {
		return Course{}, err
	}
	slugs, err := s.joinedSlugs(ctx, accountID)
	if err != nil {
		return Course{}, err
	}
	if !slices.Contains(slugs, c.Slug) {
		return Course{}, fmt.Errorf("course %s: %w", c.Code, common.ErrNotJoined)
	}
	return c, nil
}

func (s *courseService) Joined(ctx context.Context, accountID string) ([]Course, error) {
	slugs, err := s.joinedSlugs(ctx, accountID)
	if err != nil {
		return nil, err
	}
	out := make([]Course, 0, len(slugs))
	for _, slug := range slugs {
		if c, ok := LookupCourse(slug); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *courseService) Join(ctx context.Context, me models.Profile, course string) (Course, error) {
	c, err := lookupCourse(course)
	if err != nil {
		return Course{}, err
	}

	_, err = kv.Update(ctx, s.store, common.JoinedCoursesKey(me.ID), []string(nil), maxUpdateAttempts,
		func(cur []string) ([]string, error) {
			if slices.Contains(cur, c.Slug) {
				return nil, errUnchanged
			}
			return append(slices.Clone(cur), c.Slug), nil
		})
	if err != nil && !errors.Is(err, errUnchanged) {
		return Course{}, err
	}

	entry := rosterEntry(me, c)
	_, err = s.updateRoster(ctx, c, func(cur []models.Classmate) ([]models.Classmate, error) {
		next := slices.Clone(cur)
		if i := indexOfClassmate(next, me.ID); i >= 0 {
			if next[i] == entry {
				return nil, errUnchanged
			}
			next[i] = entry
			return next, nil
		}
		return append(next, entry), nil
	})
	if err != nil {
		return Course{}, err
	}

	s.logger.Info(ctx, "course joined", "account", me.ID, "course", c.Slug)
	return c, nil
}

func (s *courseService) Leave(ctx context.Context, accountID, course string) error {
	c, err := lookupCourse(course)
	if err != nil {
		return err
	}

	_, err = kv.Update(ctx, s.store, common.JoinedCoursesKey(accountID), []string(nil), maxUpdateAttempts,
		func(cur []string) ([]string, error) {
			i := slices.Index(cur, c.Slug)
			if i < 0 {
				return nil, errUnchanged
			}
			return slices.Delete(slices.Clone(cur), i, i+1), nil
		})
	if err != nil && !errors.Is(err, errUnchanged) {
		return err
	}

	_, err = s.updateRoster(ctx, c, func(cur []models.Classmate) ([]models.Classmate, error) {
		i := indexOfClassmate(cur, accountID)
		if i < 0 {
			return nil, errUnchanged
		}
		return slices.Delete(slices.Clone(cur), i, i+1), nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "course left", "account", accountID, "course", c.Slug)
	return nil
}

// rosterEntry is how me appears in other members' decks.
func rosterEntry(me models.Profile, c Course) models.Classmate {
	name := strings.TrimSpace(me.Name)
	if name == "" {
		name = defaultClassmateName
	}
	image := strings.TrimSpace(me.Avatar)
	if image == "" {
		image = generatedAvatar(name)
	}
	return models.Classmate{
		ID:      me.ID,
		Name:    name,
		Age:     defaultClassmateAge,
		Program: ProgramForMajor(me.Major, ProgramsFor(c.Subject)[0]),
		GPA:     me.GPA,
		Image:   image,
		Tagline: DefaultTagline,
	}
}

func (s *courseService) updateRoster(ctx context.Context, c Course, fn func([]models.Classmate) ([]models.Classmate, error)) ([]models.Classmate, error) {
	roster, err := kv.Update(ctx, s.store, common.CourseRosterKey(c.Slug), []models.Classmate(nil), maxUpdateAttempts, fn)
	if errors.Is(err, errUnchanged) {
		return kv.Load(ctx, s.store, common.CourseRosterKey(c.Slug), []models.Classmate(nil))
	}
	return roster, err
}

func (s *courseService) Chat(ctx context.Context, accountID, course string) ([]models.ChatMessage, error) {
	c, err := s.member(ctx, accountID, course)
	if err != nil {
		return nil, err
	}
	msgs, err := kv.Load(ctx, s.store, common.CourseChatKey(c.Slug), []models.ChatMessage(nil))
	return nonNilSlice(msgs), err
}

func (s *courseService) PostMessage(ctx context.Context, me models.Profile, course string, in MessageInput) (models.ChatMessage, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validateStruct(in); err != nil {
		return models.ChatMessage{}, err
	}
	c, err := s.member(ctx, me.ID, course)
	if err != nil {
		return models.ChatMessage{}, err
	}

	now := s.now()
	msg := models.ChatMessage{
		ID:        newID("msg", now),
		AuthorID:  me.ID,
		Author:    authorName(me),
		Text:      in.Text,
		CreatedAt: now.UnixMilli(),
	}
	_, err = kv.Update(ctx, s.store, common.CourseChatKey(c.Slug), []models.ChatMessage(nil), maxUpdateAttempts,
		func(cur []models.ChatMessage) ([]models.ChatMessage, error) {
			return append([]models.ChatMessage{msg}, cur...), nil
		})
	if err != nil {
		return models.ChatMessage{}, err
	}

	s.logger.Debug(ctx, "course message posted", "course", c.Slug, "message", msg.ID)
	return msg, nil
}

func (s *courseService) Groups(ctx context.Context, accountID, course string) ([]models.GroupPost, error) {
	c, err := s.member(ctx, accountID, course)
	if err != nil {
		return nil, err
	}
	groups, err := kv.Load(ctx, s.store, common.CourseGroupsKey(c.Slug), []models.GroupPost(nil))
	return nonNilSlice(groups), err
}

func (s *courseService) PostGroup(ctx context.Context, me models.Profile, course string, in GroupInput) (models.GroupPost, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Details = strings.TrimSpace(in.Details)
	if err := validateStruct(in); err != nil {
		return models.GroupPost{}, err
	}
	c, err := s.member(ctx, me.ID, course)
	if err != nil {
		return models.GroupPost{}, err
	}

	now := s.now()
	post := models.GroupPost{
		ID:        newID("grp", now),
		AuthorID:  me.ID,
		Author:    authorName(me),
		Title:     in.Title,
		Details:   in.Details,
		CreatedAt: now.UnixMilli(),
	}
	_, err = kv.Update(ctx, s.store, common.CourseGroupsKey(c.Slug), []models.GroupPost(nil), maxUpdateAttempts,
		func(cur []models.GroupPost) ([]models.GroupPost, error) {
			return append([]models.GroupPost{post}, cur...), nil
		})
	if err != nil {
		return models.GroupPost{}, err
	}

	s.logger.Info(ctx, "study group posted", "course", c.Slug, "group", post.ID, "author", me.ID)
	return post, nil
}

// BumpInterest adds one to a group's interested count. Repeated bumps all
// count.
func (s *courseService) BumpInterest(ctx context.Context, accountID, course, groupID string) (models.GroupPost, error) {
	c, err := s.member(ctx, accountID, course)
	if err != nil {
		return models.GroupPost{}, err
	}

	var updated models.GroupPost
	_, err = kv.Update(ctx, s.store, common.CourseGroupsKey(c.Slug), []models.GroupPost(nil), maxUpdateAttempts,
		func(cur []models.GroupPost) ([]models.GroupPost, error) {
			i := slices.IndexFunc(cur, func(g models.GroupPost) bool { return g.ID == groupID })
			if i < 0 {
				return nil, fmt.Errorf("group %s: %w", groupID, common.ErrGroupNotFound)
			}
			next := slices.Clone(cur)
			next[i].InterestedCount++
			updated = next[i]
			return next, nil
		})
	if err != nil {
		return models.GroupPost{}, err
	}
	return updated, nil
}

// seed returns the course's demo seed, creating it on first use. Concurrent
// sessions agree on whichever seed was written first.
func (s *courseService) seed(ctx context.Context, c Course) (string, error) {
	key := common.CourseSeedKey(c.Slug)
	seed, err := kv.Update(ctx, s.store, key, "", maxUpdateAttempts, func(cur string) (string, error) {
		if cur != "" {
			return "", errUnchanged
		}
		return newID("seed_"+c.Slug, s.now()), nil
	})
	if errors.Is(err, errUnchanged) {
		return kv.Load(ctx, s.store, key, "")
	}
	return seed, err
}

// candidates is every classmate accountID may meet in c: other roster
// members then the demo deck, filtered to the subject's programs.
func (s *courseService) candidates(ctx context.Context, c Course, accountID string) ([]models.Classmate, error) {
	roster, err := kv.Load(ctx, s.store, common.CourseRosterKey(c.Slug), []models.Classmate(nil))
	if err != nil {
		return nil, err
	}
	seed, err := s.seed(ctx, c)
	if err != nil {
		return nil, err
	}

	allowed := ProgramsFor(c.Subject)
	out := make([]models.Classmate, 0, len(roster)+demoClassmatesPerDeck)
	for _, m := range append(roster, demoClassmates(c, seed)...) {
		if m.ID != accountID && slices.Contains(allowed, m.Program) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *courseService) swipes(ctx context.Context, c Course, accountID string) ([]models.SwipeAction, error) {
	return kv.Load(ctx, s.store, common.CourseSwipesKey(c.Slug, accountID), []models.SwipeAction(nil))
}

func (s *courseService) Deck(ctx context.Context, accountID, course string) ([]models.Classmate, error) {
	c, err := s.member(ctx, accountID, course)
	if err != nil {
		return nil, err
	}
	all, err := s.candidates(ctx, c, accountID)
	if err != nil {
		return nil, err
	}
	done, err := s.swipes(ctx, c, accountID)
	if err != nil {
		return nil, err
	}

	deck := make([]models.Classmate, 0, len(all))
	for _, m := range all {
		if !slices.ContainsFunc(done, func(a models.SwipeAction) bool { return a.ClassmateID == m.ID }) {
			deck = append(deck, m)
		}
	}
	return deck, nil
}

func (s *courseService) findCandidate(ctx context.Context, c Course, accountID, classmateID string) (models.Classmate, error) {
	all, err := s.candidates(ctx, c, accountID)
	if err != nil {
		return models.Classmate{}, err
	}
	i := indexOfClassmate(all, classmateID)
	if i < 0 {
		return models.Classmate{}, fmt.Errorf("classmate %s: %w", classmateID, common.ErrClassmateNotFound)
	}
	return all[i], nil
}

// Swipe records d on a classmate. A like also adds the classmate to the
// account's matches, once.
func (s *courseService) Swipe(ctx context.Context, accountID, course, classmateID string, d models.SwipeDecision) (SwipeResult, error) {
	if d != models.SwipeLike && d != models.SwipePass {
		return SwipeResult{}, fmt.Errorf("%w: action must be one of: like pass", common.ErrValidation)
	}
	c, err := s.member(ctx, accountID, course)
	if err != nil {
		return SwipeResult{}, err
	}
	mate, err := s.findCandidate(ctx, c, accountID, classmateID)
	if err != nil {
		return SwipeResult{}, err
	}

	action := models.SwipeAction{ClassmateID: mate.ID, Action: d, CreatedAt: s.now().UnixMilli()}
	_, err = kv.Update(ctx, s.store, common.CourseSwipesKey(c.Slug, accountID), []models.SwipeAction(nil), maxUpdateAttempts,
		func(cur []models.SwipeAction) ([]models.SwipeAction, error) {
			return append([]models.SwipeAction{action}, cur...), nil
		})
	if err != nil {
		return SwipeResult{}, err
	}

	res := SwipeResult{Classmate: mate}
	if d == models.SwipeLike {
		_, err = kv.Update(ctx, s.store, common.CourseMatchesKey(c.Slug, accountID), []models.Classmate(nil), maxUpdateAttempts,
			func(cur []models.Classmate) ([]models.Classmate, error) {
				if indexOfClassmate(cur, mate.ID) >= 0 {
					return nil, errUnchanged
				}
				return append([]models.Classmate{mate}, cur...), nil
			})
		if err != nil && !errors.Is(err, errUnchanged) {
			return SwipeResult{}, err
		}
		res.Matched = true
		res.Draft = fmt.Sprintf("Hi %s! 👋 I saw you're looking for group members for %s. Want to team up?", mate.Name, c.Code)
	}

	s.logger.Debug(ctx, "classmate swiped", "account", accountID, "course", c.Slug, "classmate", mate.ID, "action", d)
	return res, nil
}

// ResetSwipes forgets every swipe, putting the whole deck back. Matches are
// kept.
func (s *courseService) ResetSwipes(ctx context.Context, accountID, course string) error {
	c, err := s.member(ctx, accountID, course)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, common.CourseSwipesKey(c.Slug, accountID))
}

func (s *courseService) Matches(ctx context.Context, accountID, course string) ([]models.Classmate, error) {
	c, err := s.member(ctx, accountID, course)
	if err != nil {
		return nil, err
	}
	matches, err := kv.Load(ctx, s.store, common.CourseMatchesKey(c.Slug, accountID), []models.Classmate(nil))
	return nonNilSlice(matches), err
}

// SendDM prepends a message to the thread between accountID and to. The
// recipient must be a classmate in the course.
func (s *courseService) SendDM(ctx context.Context, accountID, course, to string, in MessageInput) (models.DirectMessage, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validateStruct(in); err != nil {
		return models.DirectMessage{}, err
	}
	c, err := s.member(ctx, accountID, course)
	if err != nil {
		return models.DirectMessage{}, err
	}
	if _, err := s.findCandidate(ctx, c, accountID, to); err != nil {
		return models.DirectMessage{}, err
	}

	now := s.now()
	msg := models.DirectMessage{
		ID:        newID("dm", now),
		From:      accountID,
		To:        to,
		Text:      in.Text,
		CreatedAt: now.UnixMilli(),
	}
	_, err = kv.Update(ctx, s.store, common.CourseDMKey(c.Slug, accountID, to), []models.DirectMessage(nil), maxUpdateAttempts,
		func(cur []models.DirectMessage) ([]models.DirectMessage, error) {
			return append([]models.DirectMessage{msg}, cur...), nil
		})
	if err != nil {
		return models.DirectMessage{}, err
	}
	return msg, nil
}

func (s *courseService) Thread(ctx context.Context, accountID, course, other string) ([]models.DirectMessage, error) {
	c, err := s.member(ctx, accountID, course)
	if err != nil {
		return nil, err
	}
	msgs, err := kv.Load(ctx, s.store, common.CourseDMKey(c.Slug, accountID, other), []models.DirectMessage(nil))
	return nonNilSlice(msgs), err
}

func authorName(me models.Profile) string {
	if name := strings.TrimSpace(me.Name); name != "" {
		return name
	}
	return "Anonymous"
}

func indexOfClassmate(ms []models.Classmate, id string) int {
	return slices.IndexFunc(ms, func(m models.Classmate) bool { return m.ID == id })
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
