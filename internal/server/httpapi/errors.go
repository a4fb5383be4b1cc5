package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/unicampus/internal/client/avatar"
	"github.com/dmitrijs2005/unicampus/internal/common"
	"github.com/dmitrijs2005/unicampus/internal/logging"
)

var errBadBody = errors.New("malformed request body")

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrAccountNotFound),
		errors.Is(err, common.ErrRequestNotFound),
		errors.Is(err, common.ErrProfileNotFound),
		errors.Is(err, common.ErrCourseNotFound),
		errors.Is(err, common.ErrGroupNotFound),
		errors.Is(err, common.ErrClassmateNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrNotCreator),
		errors.Is(err, common.ErrNotJoined):
		return http.StatusForbidden
	case errors.Is(err, common.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrIndexOutOfRange),
		errors.Is(err, common.ErrOnboardingIncomplete),
		errors.Is(err, errBadBody),
		avatar.UserMessage(err) != "":
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return 499
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError logs server-side failures and hides their text from clients.
func writeError(ctx context.Context, w http.ResponseWriter, logger logging.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if m := avatar.UserMessage(err); m != "" {
		msg = m
	}
	if status >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed", "error", err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return wrapBadBody(err)
	}
	return nil
}

func wrapBadBody(err error) error {
	return fmt.Errorf("%w: %v", errBadBody, err)
}
