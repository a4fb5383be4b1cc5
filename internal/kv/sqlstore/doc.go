// Package sqlstore implements kv.Store on a SQL table, for SQLite (the
// default single-machine backend) and PostgreSQL (shared by server
// replicas).
//
// Every write stamps the row with a monotonically increasing seq and the
// writer's origin. Deletes leave a tombstone so that other handles can
// observe them. A watcher goroutine scans rows with seq above the last one
// it saw and reports rows written by other origins to OnExternalChange
// subscribers. For SQLite the scan is triggered by fsnotify events on the
// database file and its WAL as well as by a poll ticker; PostgreSQL relies
// on the ticker alone.
package sqlstore
