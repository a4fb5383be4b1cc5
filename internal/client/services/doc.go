// Package services contains the unicampus application services: the
// account registry, per-account profile and hearted-items stores, and the
// global collaboration board.
//
// Services keep no account in package state. Every per-account operation
// takes the *session.Session it acts for; switching accounts means getting a
// new session from the registry.
package services
