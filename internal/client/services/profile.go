package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/unicampus/internal/client/avatar"
	"github.com/dmitrijs2005/unicampus/internal/client/models"
	"github.com/dmitrijs2005/unicampus/internal/client/session"
	"github.com/dmitrijs2005/unicampus/internal/common"
	"github.com/dmitrijs2005/unicampus/internal/kv"
	"github.com/dmitrijs2005/unicampus/internal/logging"
)

// InterestOptions are the interests offered during onboarding.
var InterestOptions = []string{
	"Software Engineering", "Philosophy", "Jazz Performance", "Biomedical Science",
	"Sustainability", "Entrepreneurship", "Photography", "Gaming", "Social Justice",
	"Robotics", "Francophone Culture", "Winter Sports", "Debate", "Pottery",
}

// NameSyncer receives profile name changes. The account registry implements
// it.
type NameSyncer interface {
	SyncNameFromProfile(ctx context.Context, accountID, name string) error
}

// ProfileMutation edits a profile in place. A mutation that returns an error
// cancels the whole Update.
type ProfileMutation func(p *models.Profile) error

func SetName(name string) ProfileMutation {
	return func(p *models.Profile) error { p.Name = name; return nil }
}

func SetMajor(major string) ProfileMutation {
	return func(p *models.Profile) error { p.Major = major; return nil }
}

func SetBio(bio string) ProfileMutation {
	return func(p *models.Profile) error { p.Bio = bio; return nil }
}

func SetGPA(gpa string) ProfileMutation {
	return func(p *models.Profile) error { p.GPA = gpa; return nil }
}

func SetAvatar(dataURI string) ProfileMutation {
	return func(p *models.Profile) error { p.Avatar = dataURI; return nil }
}

func SetInterests(interests []string) ProfileMutation {
	return func(p *models.Profile) error { p.Interests = slices.Clone(interests); return nil }
}

func SetSkill(i int, v string) ProfileMutation {
	return func(p *models.Profile) error { return setAt(p.Skills, i, v) }
}

func AppendSkill() ProfileMutation {
	return func(p *models.Profile) error { p.Skills = append(p.Skills, ""); return nil }
}

func RemoveSkill(i int) ProfileMutation {
	return func(p *models.Profile) (err error) { p.Skills, err = removeAt(p.Skills, i); return err }
}

func SetExperience(i int, v string) ProfileMutation {
	return func(p *models.Profile) error { return setAt(p.Experience, i, v) }
}

func AppendExperience() ProfileMutation {
	return func(p *models.Profile) error { p.Experience = append(p.Experience, ""); return nil }
}

func RemoveExperience(i int) ProfileMutation {
	return func(p *models.Profile) (err error) { p.Experience, err = removeAt(p.Experience, i); return err }
}

func setAt(s []string, i int, v string) error {
	if i < 0 || i >= len(s) {
		return fmt.Errorf("index %d of %d: %w", i, len(s), common.ErrIndexOutOfRange)
	}
	s[i] = v
	return nil
}

func removeAt(s []string, i int) ([]string, error) {
	if i < 0 || i >= len(s) {
		return s, fmt.Errorf("index %d of %d: %w", i, len(s), common.ErrIndexOutOfRange)
	}
	return slices.Delete(s, i, i+1), nil
}

// ProfileService loads and persists the profile of a session's account.
type ProfileService interface {
	// LoadOrInitialize returns the stored profile (onboarded) or a default
	// one (not onboarded). The default is not written until the first
	// update. The session's onboarded flag is set accordingly.
	LoadOrInitialize(ctx context.Context, sess *session.Session) (models.Profile, bool, error)

	// Update applies mutations to the stored (or default) profile and
	// persists the result. On any mutation error nothing is written.
	Update(ctx context.Context, sess *session.Session, mutations ...ProfileMutation) (models.Profile, error)

	// CompleteOnboarding stores interests and major and marks the session
	// onboarded. Both are required.
	CompleteOnboarding(ctx context.Context, sess *session.Session, interests []string, major string) (models.Profile, error)

	// SetAvatarFromFile validates f, reads it to a data URI and stores it as
	// the avatar of the account captured in sess.
	SetAvatarFromFile(ctx context.Context, sess *session.Session, f avatar.File) (models.Profile, error)
}

type profileService struct {
	store  kv.Store
	names  NameSyncer
	logger logging.Logger
}

// NewProfileService returns a ProfileService. names may be nil.
func NewProfileService(store kv.Store, names NameSyncer, logger logging.Logger) ProfileService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &profileService{store: store, names: names, logger: logger.With("module", "profile")}
}

func (s *profileService) LoadOrInitialize(ctx context.Context, sess *session.Session) (models.Profile, bool, error) {
	if sess == nil {
		return models.Profile{}, false, common.ErrNoSession
	}
	raw, ok, err := s.store.Get(ctx, common.ProfileKey(sess.AccountID))
	if err != nil {
		return models.Profile{}, false, fmt.Errorf("read profile: %w", err)
	}

	p, decoded := decodeProfile(raw, ok)
	if !decoded {
		p = models.DefaultProfile(sess.AccountID)
	}
	sess.SetOnboarded(decoded)
	return p, decoded, nil
}

// decodeProfile reports whether raw held a usable profile.
func decodeProfile(raw string, ok bool) (models.Profile, bool) {
	var zero models.Profile
	p := kv.DecodeOr(raw, ok, zero)
	if p.ID == "" {
		return zero, false
	}
	return p, true
}

func (s *profileService) load(ctx context.Context, accountID string) (models.Profile, error) {
	raw, ok, err := s.store.Get(ctx, common.ProfileKey(accountID))
	if err != nil {
		return models.Profile{}, fmt.Errorf("read profile: %w", err)
	}
	p, decoded := decodeProfile(raw, ok)
	if !decoded {
		return models.DefaultProfile(accountID), nil
	}
	return p, nil
}

func (s *profileService) Update(ctx context.Context, sess *session.Session, mutations ...ProfileMutation) (models.Profile, error) {
	if sess == nil {
		return models.Profile{}, common.ErrNoSession
	}
	return s.update(ctx, sess.AccountID, mutations...)
}

func (s *profileService) update(ctx context.Context, accountID string, mutations ...ProfileMutation) (models.Profile, error) {
	cur, err := s.load(ctx, accountID)
	if err != nil {
		return models.Profile{}, err
	}

	next := cur.Clone()
	for _, m := range mutations {
		if err := m(&next); err != nil {
			return cur, err
		}
	}
	next.ID = accountID

	if err := kv.Save(ctx, s.store, common.ProfileKey(accountID), next); err != nil {
		return cur, err
	}

	if next.Name != cur.Name && s.names != nil {
		if err := s.names.SyncNameFromProfile(ctx, accountID, next.Name); err != nil {
			s.logger.Warn(ctx, "account name sync failed", "account", accountID, "error", err)
		}
	}
	return next, nil
}

func (s *profileService) CompleteOnboarding(ctx context.Context, sess *session.Session, interests []string, major string) (models.Profile, error) {
	if sess == nil {
		return models.Profile{}, common.ErrNoSession
	}
	major = strings.TrimSpace(major)
	if len(interests) == 0 || major == "" {
		return models.Profile{}, common.ErrOnboardingIncomplete
	}

	p, err := s.update(ctx, sess.AccountID, SetInterests(interests), SetMajor(major))
	if err != nil {
		return models.Profile{}, err
	}
	sess.SetOnboarded(true)
	s.logger.Info(ctx, "onboarding complete", "account", sess.AccountID, "interests", len(interests))
	return p, nil
}

func (s *profileService) SetAvatarFromFile(ctx context.Context, sess *session.Session, f avatar.File) (models.Profile, error) {
	if sess == nil {
		return models.Profile{}, common.ErrNoSession
	}
	// Captured now: the write goes to this account even if the caller
	// switches sessions while the file is being read.
	accountID := sess.AccountID

	uri, err := avatar.ReadDataURI(ctx, f)
	if err != nil {
		return models.Profile{}, err
	}
	return s.update(ctx, accountID, SetAvatar(uri))
}
