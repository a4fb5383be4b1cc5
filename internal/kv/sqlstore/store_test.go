package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dmitrijs2005/unicampus/internal/common"
	"github.com/dmitrijs2005/unicampus/internal/dbx"
	"github.com/dmitrijs2005/unicampus/internal/kv"
)

func openTemp(t *testing.T, path string, poll time.Duration) *Store {
	t.Helper()
	s, err := OpenSQLite(context.Background(), path, Options{PollInterval: poll})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_CRUD(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t, filepath.Join(t.TempDir(), "kv.db"), -1)

	_, ok, err := s.Get(ctx, "accounts")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "accounts", "[]"))
	require.NoError(t, s.Set(ctx, "accounts", `[{"id":"a"}]`))
	v, ok, err := s.Get(ctx, "accounts")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, v)

	require.NoError(t, s.Set(ctx, "active_account", `"a"`))
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"accounts", "active_account"}, keys)

	require.NoError(t, s.Delete(ctx, "accounts"))
	require.NoError(t, s.Delete(ctx, "accounts"))
	_, ok, err = s.Get(ctx, "accounts")
	require.NoError(t, err)
	assert.False(t, ok)

	keys, err = s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"active_account"}, keys)
}

func TestSQLite_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t, filepath.Join(t.TempDir(), "kv.db"), -1)

	ok, err := s.CompareAndSwap(ctx, "global_collabs", "", "[]")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.CompareAndSwap(ctx, "global_collabs", "", "[1]")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.CompareAndSwap(ctx, "global_collabs", kv.Digest("[9]"), "[1]")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.CompareAndSwap(ctx, "global_collabs", kv.Digest("[]"), "[1]")
	require.NoError(t, err)
	assert.True(t, ok)

	// A tombstoned key counts as absent.
	require.NoError(t, s.Delete(ctx, "global_collabs"))
	ok, err = s.CompareAndSwap(ctx, "global_collabs", kv.Digest("[1]"), "[2]")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = s.CompareAndSwap(ctx, "global_collabs", "", "[2]")
	require.NoError(t, err)
	assert.True(t, ok)

	v, _, _ := s.Get(ctx, "global_collabs")
	assert.Equal(t, "[2]", v)
}

func TestSQLite_SetMany(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t, filepath.Join(t.TempDir(), "kv.db"), -1)

	require.NoError(t, s.SetMany(ctx, map[string]string{"a": "1", "b": "2"}))
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestSQLite_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	s, err := OpenSQLite(ctx, path, Options{PollInterval: -1})
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "profile_acc_1", `{"name":"Ada"}`))
	require.NoError(t, s.Close())

	s = openTemp(t, path, -1)
	v, ok, err := s.Get(ctx, "profile_acc_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"name":"Ada"}`, v)
}

func TestSQLite_ClosedStore(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "kv.db"), Options{PollInterval: -1})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, _, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrStoreClosed)
	assert.ErrorIs(t, s.Set(ctx, "k", "v"), common.ErrStoreClosed)
}

func TestSQLite_ExternalChangesAcrossHandles(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")
	tabA, err := OpenSQLite(ctx, path, Options{PollInterval: 20 * time.Millisecond})
	require.NoError(t, err)
	tabB, err := OpenSQLite(ctx, path, Options{PollInterval: 20 * time.Millisecond})
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		seenA []kv.Change
		seenB []kv.Change
	)
	tabA.OnExternalChange("global_collabs", func(c kv.Change) {
		mu.Lock()
		defer mu.Unlock()
		seenA = append(seenA, c)
	})
	tabB.OnExternalChange("global_collabs", func(c kv.Change) {
		mu.Lock()
		defer mu.Unlock()
		seenB = append(seenB, c)
	})

	require.NoError(t, tabB.Set(ctx, "global_collabs", `[{"id":"req_1"}]`))
	require.NoError(t, tabB.Set(ctx, "hearted_acc_1", `[]`))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seenA) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, tabB.Delete(ctx, "global_collabs"))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seenA) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, `[{"id":"req_1"}]`, seenA[0].Value)
	assert.Equal(t, tabB.Origin(), seenA[0].Origin)
	assert.True(t, seenA[1].Deleted)
	assert.Empty(t, seenB, "writer must not see its own changes")
	mu.Unlock()

	require.NoError(t, tabA.Close())
	require.NoError(t, tabB.Close())
}

func TestRunMigrations_Error(t *testing.T) {
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("migrate boom")
	}
	defer func() { gooseUpContext = orig }()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	err = RunMigrations(context.Background(), db, dbx.Postgres)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate boom")
}

func newPostgresMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := New(db, dbx.Postgres, Options{PollInterval: -1})
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s, mock
}

func TestPostgres_GetUsesNumberedPlaceholders(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectQuery(`(?s)^SELECT value FROM kv WHERE key = \$1 AND deleted = 0$`).
		WithArgs("accounts").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("[]"))

	v, ok, err := s.Get(context.Background(), "accounts")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetMissingAndError(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectQuery(`SELECT value FROM kv`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT value FROM kv`).
		WithArgs("broken").
		WillReturnError(errors.New("db down"))

	_, ok, err := s.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.Get(context.Background(), "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestPostgres_Set(t *testing.T) {
	s, mock := newPostgresMock(t)

	mock.ExpectExec(`(?s)INSERT INTO kv .*VALUES \(\$1, \$2, \$3, \(SELECT COALESCE\(MAX\(seq\), 0\) \+ 1 FROM kv\), \$4, 0, \$5\).*ON CONFLICT \(key\) DO UPDATE`).
		WithArgs("accounts", "[]", kv.Digest("[]"), s.Origin(), int64(1700000000000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Set(context.Background(), "accounts", "[]"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CompareAndSwap(t *testing.T) {
	s, mock := newPostgresMock(t)
	ctx := context.Background()

	mock.ExpectExec(`(?s)UPDATE kv SET value = \$1, digest = \$2, .*WHERE key = \$5 AND digest = \$6 AND deleted = 0`).
		WithArgs("[1]", kv.Digest("[1]"), s.Origin(), int64(1700000000000), "global_collabs", kv.Digest("[]")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)UPDATE kv SET value = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`(?s)INSERT INTO kv .*WHERE kv.deleted = 1`).
		WithArgs("global_collabs", "[]", kv.Digest("[]"), s.Origin(), int64(1700000000000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := s.CompareAndSwap(ctx, "global_collabs", kv.Digest("[]"), "[1]")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.CompareAndSwap(ctx, "global_collabs", kv.Digest("[]"), "[1]")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.CompareAndSwap(ctx, "global_collabs", "", "[]")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ScanSkipsOwnOrigin(t *testing.T) {
	s, mock := newPostgresMock(t)
	s.lastSeq = 4

	rows := sqlmock.NewRows([]string{"key", "value", "deleted", "origin", "seq"}).
		AddRow("global_collabs", "[]", 0, s.Origin(), 5).
		AddRow("global_collabs", "[1]", 0, "other", 6).
		AddRow("global_collabs", "", 1, "other", 7)
	mock.ExpectQuery(`(?s)SELECT key, value, deleted, origin, seq FROM kv\s+WHERE seq > \$1`).
		WithArgs(int64(4)).
		WillReturnRows(rows)

	var seen []kv.Change
	s.OnExternalChange("global_collabs", func(c kv.Change) { seen = append(seen, c) })

	require.NoError(t, s.scan(context.Background()))
	require.Len(t, seen, 2)
	assert.Equal(t, "[1]", seen[0].Value)
	assert.True(t, seen[1].Deleted)
	assert.Equal(t, int64(7), s.lastSeq)
}
