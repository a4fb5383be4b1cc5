// Package common defines shared constants and sentinel errors used across
// the unicampus client, storage and HTTP layers. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Lookup errors.
	ErrAccountNotFound = errors.New("account not found")
	ErrRequestNotFound = errors.New("collaboration request not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrGroupNotFound   = errors.New("study group not found")

	ErrClassmateNotFound = errors.New("classmate not found")

	// Authorization on shared state.
	ErrNotCreator = errors.New("only the creator may delete this request")
	ErrNotJoined  = errors.New("join the course first")

	// Optimistic concurrency on the shared board.
	ErrVersionConflict = errors.New("version conflict")

	// Validation errors.
	ErrValidation           = errors.New("validation error")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrOnboardingIncomplete = errors.New("pick at least one interest and a major")
	ErrNoSession            = errors.New("no active session")

	// Storage errors.
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrStoreClosed    = errors.New("store closed")
)
