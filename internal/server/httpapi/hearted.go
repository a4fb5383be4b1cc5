package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/unicampus/internal/client/models"
)

// maxItemBody bounds a posted discovery item.
const maxItemBody = 1 << 20

var errMissingID = errors.New("item id is required")

func (s *Server) listHearted(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	items, err := s.hearted.List(ctx, sess)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// heart saves the posted item. Any item variant is accepted.
func (s *Server) heart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxItemBody))
	if err != nil {
		writeError(ctx, w, s.logger, wrapBadBody(err))
		return
	}
	item, err := models.DecodeItem(raw)
	if err != nil {
		writeError(ctx, w, s.logger, wrapBadBody(err))
		return
	}
	if item.Common().ID == "" {
		writeError(ctx, w, s.logger, wrapBadBody(errMissingID))
		return
	}

	items, err := s.hearted.Heart(ctx, sess, item)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) unheart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, err := sessionFrom(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	items, err := s.hearted.Unheart(ctx, sess, chi.URLParam(r, "id"))
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
