package httpapi

import (
	"errors"
	"io"
	"net/http"
	"slices"

	"github.com/dmitrijs2005/unicampus/internal/client/avatar"
	"github.com/dmitrijs2005/unicampus/internal/client/models"
	"github.com/dmitrijs2005/unicampus/internal/client/services"
)

type profileResponse struct {
	Profile   models.Profile `json:"profile"`
	Onboarded bool           `json:"onboarded"`
}

// profilePatch carries the fields to change; absent fields are kept.
type profilePatch struct {
	Name       *string   `json:"name"`
	Major      *string   `json:"major"`
	Bio        *string   `json:"bio"`
	GPA        *string   `json:"gpa"`
	Interests  *[]string `json:"interests"`
	Skills     *[]string `json:"skills"`
	Experience *[]string `json:"experience"`
}

func (p profilePatch) mutations() []services.ProfileMutation {
	var ms []services.ProfileMutation
	if p.Name != nil {
		ms = append(ms, services.SetName(*p.Name))
	}
	if p.Major != nil {
		ms = append(ms, services.SetMajor(*p.Major))
	}
	if p.Bio != nil {
		ms = append(ms, services.SetBio(*p.Bio))
	}
	if p.GPA != nil {
		ms = append(ms, services.SetGPA(*p.GPA))
	}
	if p.Interests != nil {
		ms = append(ms, services.SetInterests(*p.Interests))
	}
	if p.Skills != nil {
		skills := nonNilStrings(*p.Skills)
		ms = append(ms, func(pr *models.Profile) error {
			pr.Skills = skills
			return nil
		})
	}
	if p.Experience != nil {
		exp := nonNilStrings(*p.Experience)
		ms = append(ms, func(pr *models.Profile) error {
			pr.Experience = exp
			return nil
		})
	}
	return ms
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return slices.Clone(v)
}

type onboardingRequest struct {
	Interests []string `json:"interests"`
	Major     string   `json:"major"`
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	p, onboarded, err := s.profiles.LoadOrInitialize(ctx, sess)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: p, Onboarded: onboarded})
}

func (s *Server) patchProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	var patch profilePatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	p, err := s.profiles.Update(ctx, sess, patch.mutations()...)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: p, Onboarded: sess.Onboarded()})
}

func (s *Server) completeOnboarding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	var req onboardingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	p, err := s.profiles.CompleteOnboarding(ctx, sess, req.Interests, req.Major)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: p, Onboarded: true})
}

// putAvatar takes the raw image as the body. The Content-Type header is
// the declared type; the content itself decides.
func (s *Server) putAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, avatar.MaxSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = &avatar.RejectionError{Message: avatar.MsgTooLarge}
		} else {
			err = errors.Join(avatar.ErrUnreadable, err)
		}
		writeError(ctx, w, s.logger, err)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "avatar"
	}
	p, err := s.profiles.SetAvatarFromFile(ctx, sess, avatar.FromBytes(name, r.Header.Get("Content-Type"), data))
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Profile: p, Onboarded: sess.Onboarded()})
}
