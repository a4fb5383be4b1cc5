// Package kv defines the durable key→string store every unicampus component
// persists through, and the helpers that sit on top of it.
//
// # Overview
//
// A Store is a flat map of string keys to JSON-encoded string values. Several
// store handles may share one underlying key space (two CLI sessions on one
// SQLite file, two server replicas on one Redis). Each handle has an origin;
// writes made through one handle are reported to the others through
// OnExternalChange, never to the writer itself.
//
// # Decoding policy
//
// Values are read with DecodeOr/Load: an absent or unparsable value decodes
// to the caller's default. Corrupt data never surfaces as an error; only
// backend I/O failures do.
//
// # Optimistic updates
//
// CompareAndSwap writes only when the stored value still has the expected
// Digest. Update wraps it in a bounded read-modify-write retry loop.
//
// Implementations: internal/kv/memory, internal/kv/sqlstore,
// internal/kv/redisstore.
package kv
