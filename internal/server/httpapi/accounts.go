package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/unicampus/internal/client/models"
)

type accountsResponse struct {
	Accounts []models.Account `json:"accounts"`
	ActiveID string           `json:"activeId"`
}

type switchAccountRequest struct {
	ID string `json:"id"`
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	active, err := s.accounts.Active(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, accountsResponse{Accounts: accounts, ActiveID: active.ID})
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, acc, err := s.accounts.CreateAccount(ctx)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, acc)
}

func (s *Server) switchAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req switchAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	sess, err := s.accounts.SwitchActiveAccount(ctx, req.ID)
	if err != nil {
		writeError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"activeId": sess.AccountID})
}
