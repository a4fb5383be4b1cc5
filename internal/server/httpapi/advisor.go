package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/unicampus/internal/client/models"
)

// The advisor endpoints never fail on model errors; the advisor serves
// fallbacks or empty results instead.

func (s *Server) recommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := s.currentProfile(w, r)
	if !ok {
		return
	}
	recs := s.advisor.Recommend(ctx, p.Interests)
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) icebreakers(w http.ResponseWriter, r *http.Request) {
	lines := s.advisor.Icebreakers(r.Context(), r.URL.Query().Get("scenario"))
	writeJSON(w, http.StatusOK, lines)
}

func (s *Server) matchReason(w http.ResponseWriter, r *http.Request) {
	p, ok := s.currentProfile(w, r)
	if !ok {
		return
	}
	reason := s.advisor.MatchReason(r.Context(), r.URL.Query().Get("title"), p.Interests)
	writeJSON(w, http.StatusOK, map[string]string{"reason": reason})
}

func (s *Server) currentProfile(w http.ResponseWriter, r *http.Request) (models.Profile, bool) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return models.Profile{}, false
	}
	p, _, err := s.profiles.LoadOrInitialize(ctx, sess)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return models.Profile{}, false
	}
	return p, true
}
