package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/unicampus/internal/common"
	"github.com/dmitrijs2005/unicampus/internal/kv"
	"github.com/dmitrijs2005/unicampus/internal/timex"
)

func TestOpen_Backends(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"memory", Config{Backend: BackendMemory, Namespace: "uc_"}},
		{"sqlite", Config{
			Backend:       BackendSQLite,
			SQLitePath:    filepath.Join(t.TempDir(), "nested", "kv.db"),
			Namespace:     "uc_",
			WatchInterval: timex.Duration{Duration: 50 * time.Millisecond},
		}},
		{"redis", Config{Backend: BackendRedis, RedisAddr: mr.Addr(), Namespace: "uc_"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.cfg, nil)
			require.NoError(t, err)
			defer s.Close()

			_, namespaced := s.(*kv.Namespaced)
			assert.True(t, namespaced)

			require.NoError(t, kv.Save(ctx, s, common.AccountsKey, []string{"x"}))
			got, err := kv.Load(ctx, s, common.AccountsKey, []string(nil))
			require.NoError(t, err)
			assert.Equal(t, []string{"x"}, got)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Config{Backend: "floppy"}, nil)
	assert.ErrorIs(t, err, common.ErrUnknownBackend)
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, BackendSQLite, d.Backend)
	assert.Equal(t, DefaultNamespace, d.Namespace)
	assert.Equal(t, 500*time.Millisecond, d.WatchInterval.Duration)
}
