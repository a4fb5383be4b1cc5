package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/unicampus/internal/client/models"
	"github.com/dmitrijs2005/unicampus/internal/client/services"
	"github.com/dmitrijs2005/unicampus/internal/kv"
)

type interestResponse struct {
	Request models.CollabRequest `json:"request"`
	Joined  bool                 `json:"joined"`
}

// emptyBoardDigest tags a board whose key was never written. It is the
// digest of the body such a board is served as.
var emptyBoardDigest = kv.Digest("[]")

// getBoard reads the board straight from storage. The ETag is the digest of
// the stored value, so a matching If-None-Match gets 304.
func (s *Server) getBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqs, digest, err := s.board.Snapshot(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}

	if digest == "" {
		digest = emptyBoardDigest
	}
	etag := `"` + digest + `"`
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func (s *Server) createRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	var in services.RequestInput
	if err := decodeBody(r, &in); err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	creator, _, err := s.profiles.LoadOrInitialize(ctx, sess)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}

	req, err := s.board.CreateRequest(ctx, creator, in)
	s.metrics.observeBoard("create", err)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) toggleInterest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	req, joined, err := s.board.ToggleInterest(ctx, chi.URLParam(r, "id"), sess.AccountID)
	s.metrics.observeBoard("interest", err)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, interestResponse{Request: req, Joined: joined})
}

func (s *Server) deleteRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	err = s.board.DeleteRequest(ctx, chi.URLParam(r, "id"), sess.AccountID)
	s.metrics.observeBoard("delete", err)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
