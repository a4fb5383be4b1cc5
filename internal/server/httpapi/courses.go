package httpapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/unicampus/internal/client/models"
	"github.com/dmitrijs2005/unicampus/internal/client/services"
	"github.com/dmitrijs2005/unicampus/internal/client/session"
)

type coursesResponse struct {
	Subjects []services.Subject `json:"subjects"`
	Joined   []services.Course  `json:"joined"`
}

type swipeClassmateRequest struct {
	ClassmateID string               `json:"classmateId"`
	Action      models.SwipeDecision `json:"action"`
}

// courseParam returns the {course} path segment unescaped, so both
// "ecse-415" and "ECSE%20415" name the same course.
func courseParam(r *http.Request) string {
	raw := chi.URLParam(r, "course")
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}

// actor returns the session and the profile that authors writes.
func (s *Server) actor(ctx context.Context) (*session.Session, models.Profile, error) {
	sess, err := sessionFrom(ctx)
	if err != nil {
		return nil, models.Profile{}, err
	}
	me, _, err := s.profiles.LoadOrInitialize(ctx, sess)
	if err != nil {
		return nil, models.Profile{}, err
	}
	return sess, me, nil
}

func (s *Server) listCourses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	joined, err := s.courses.Joined(ctx, sess.AccountID)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, coursesResponse{Subjects: services.Subjects(), Joined: joined})
}

func (s *Server) joinCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, me, err := s.actor(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	c, err := s.courses.Join(ctx, me, courseParam(r))
	s.metrics.observeCourse("join", err)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) leaveCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	err = s.courses.Leave(ctx, sess.AccountID, courseParam(r))
	s.metrics.observeCourse("leave", err)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getCourseChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	msgs, err := s.courses.Chat(ctx, sess.AccountID, courseParam(r))
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) postCourseMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, me, err := s.actor(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	var in services.MessageInput
	if err := decodeBody(r, &in); err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	msg, err := s.courses.PostMessage(ctx, me, courseParam(r), in)
	s.metrics.observeCourse("message", err)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) getCourseGroups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	groups, err := s.courses.Groups(ctx, sess.AccountID, courseParam(r))
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) postCourseGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, me, err := s.actor(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	var in services.GroupInput
	if err := decodeBody(r, &in); err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	g, err := s.courses.PostGroup(ctx, me, courseParam(r), in)
	s.metrics.observeCourse("group", err)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) bumpCourseGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	g, err := s.courses.BumpInterest(ctx, sess.AccountID, courseParam(r), chi.URLParam(r, "id"))
	s.metrics.observeCourse("interest", err)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) getCourseDeck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	deck, err := s.courses.Deck(ctx, sess.AccountID, courseParam(r))
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

func (s *Server) swipeClassmate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	var in swipeClassmateRequest
	if err := decodeBody(r, &in); err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	res, err := s.courses.Swipe(ctx, sess.AccountID, courseParam(r), in.ClassmateID, in.Action)
	s.metrics.observeCourse("swipe", err)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) resetCourseSwipes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	err = s.courses.ResetSwipes(ctx, sess.AccountID, courseParam(r))
	s.metrics.observeCourse("reset_swipes", err)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getCourseMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	matches, err := s.courses.Matches(ctx, sess.AccountID, courseParam(r))
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) getCourseThread(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	thread, err := s.courses.Thread(ctx, sess.AccountID, courseParam(r), chi.URLParam(r, "other"))
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, thread)
}

func (s *Server) sendCourseDM(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	var in services.MessageInput
	if err := decodeBody(r, &in); err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	msg, err := s.courses.SendDM(ctx, sess.AccountID, courseParam(r), chi.URLParam(r, "other"), in)
	s.metrics.observeCourse("dm", err)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}
