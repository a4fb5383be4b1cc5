// Package cli provides the interactive unicampus command-line client.
//
// It wires configuration, the key/value store, the account, profile,
// hearted-items and board services, the discovery feed and the AI advisor
// into a line-oriented REPL. Several CLI processes pointed at the same store
// behave like several browser tabs: board changes made in one are picked up
// by the others.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
