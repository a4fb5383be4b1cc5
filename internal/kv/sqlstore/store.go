package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/unicampus/internal/common"
	"github.com/dmitrijs2005/unicampus/internal/dbx"
	"github.com/dmitrijs2005/unicampus/internal/kv"
	"github.com/dmitrijs2005/unicampus/internal/kv/sqlstore/migrations"
	"github.com/dmitrijs2005/unicampus/internal/logging"
)

const defaultPollInterval = 500 * time.Millisecond

// Options tunes a Store.
type Options struct {
	// PollInterval is how often the watcher scans for external changes.
	// Zero selects the default; a negative value disables watching.
	PollInterval time.Duration
	Logger       logging.Logger
}

// Store is a kv.Store over the kv table.
type Store struct {
	db      *sql.DB
	dialect dbx.Dialect
	origin  string
	logger  logging.Logger
	now     func() time.Time

	subs   kv.Subscribers
	closed atomic.Bool

	// path is the SQLite file watched with fsnotify; empty for Postgres.
	path    string
	poll    time.Duration
	lastSeq int64
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

var _ kv.Store = (*Store)(nil)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema for the given dialect.
func RunMigrations(ctx context.Context, db *sql.DB, dialect dbx.Dialect) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// OpenSQLite opens (creating if needed) the SQLite database at path, runs
// migrations and starts the change watcher.
func OpenSQLite(ctx context.Context, path string, opts Options) (*Store, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	s, err := open(ctx, db, dbx.SQLite, path, opts)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// OpenPostgres connects to dsn through pgx, runs migrations and starts the
// change watcher.
func OpenPostgres(ctx context.Context, dsn string, opts Options) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	s, err := open(ctx, db, dbx.Postgres, "", opts)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func open(ctx context.Context, db *sql.DB, dialect dbx.Dialect, path string, opts Options) (*Store, error) {
	if err := RunMigrations(ctx, db, dialect); err != nil {
		return nil, err
	}
	if dialect == dbx.SQLite {
		// One connection serialises writers inside the process; other
		// processes wait on busy_timeout.
		db.SetMaxOpenConns(1)
	}
	s := New(db, dialect, opts)
	s.path = path
	if err := s.start(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// New wraps an already migrated database. The watcher is not started; Open*
// constructors do that.
func New(db *sql.DB, dialect dbx.Dialect, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	poll := opts.PollInterval
	if poll == 0 {
		poll = defaultPollInterval
	}
	return &Store{
		db:      db,
		dialect: dialect,
		origin:  uuid.NewString(),
		logger:  logger,
		now:     time.Now,
		poll:    poll,
	}
}

// Origin identifies writes made through this handle.
func (s *Store) Origin() string { return s.origin }

func (s *Store) q(query string) string { return s.dialect.Rebind(query) }

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, common.ErrStoreClosed
	}
	var value string
	err := s.db.QueryRowContext(ctx, s.q(queryGet), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if s.closed.Load() {
		return common.ErrStoreClosed
	}
	return s.set(ctx, s.db, key, value)
}

func (s *Store) set(ctx context.Context, db dbx.DBTX, key, value string) error {
	_, err := db.ExecContext(ctx, s.q(querySet),
		key, value, kv.Digest(value), s.origin, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

// SetMany writes every entry in one transaction.
func (s *Store) SetMany(ctx context.Context, entries map[string]string) error {
	if s.closed.Load() {
		return common.ErrStoreClosed
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for k, v := range entries {
			if err := s.set(ctx, tx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if s.closed.Load() {
		return common.ErrStoreClosed
	}
	_, err := s.db.ExecContext(ctx, s.q(queryDelete), s.origin, s.now().UnixMilli(), key)
	if err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w", key, err)
	}
	return nil
}

func (s *Store) CompareAndSwap(ctx context.Context, key, oldDigest, value string) (bool, error) {
	if s.closed.Load() {
		return false, common.ErrStoreClosed
	}

	var (
		res sql.Result
		err error
	)
	now := s.now().UnixMilli()
	if oldDigest == "" {
		res, err = s.db.ExecContext(ctx, s.q(queryInsertIfAbsent),
			key, value, kv.Digest(value), s.origin, now)
	} else {
		res, err = s.db.ExecContext(ctx, s.q(querySwap),
			value, kv.Digest(value), s.origin, now, key, oldDigest)
	}
	if err != nil {
		return false, fmt.Errorf("failed to swap kv[%s]: %w", key, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to swap kv[%s]: %w", key, err)
	}
	return n == 1, nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	if s.closed.Load() {
		return nil, common.ErrStoreClosed
	}
	rows, err := s.db.QueryContext(ctx, s.q(queryKeys))
	if err != nil {
		return nil, fmt.Errorf("failed to list kv keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan kv key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate kv keys: %w", err)
	}
	return keys, nil
}

func (s *Store) OnExternalChange(key string, h kv.Handler) func() {
	return s.subs.Add(key, h)
}

// Close stops the watcher and closes the database.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	return s.db.Close()
}
