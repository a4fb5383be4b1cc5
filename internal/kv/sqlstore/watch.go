package sqlstore

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrijs2005/unicampus/internal/kv"
)

func (s *Store) start(ctx context.Context) error {
	if s.poll < 0 {
		return nil
	}

	seq, err := s.maxSeq(ctx)
	if err != nil {
		return err
	}
	s.lastSeq = seq

	var fw *fsnotify.Watcher
	if s.path != "" {
		fw, err = fsnotify.NewWatcher()
		if err != nil {
			s.logger.Warn(ctx, "fsnotify unavailable, polling only", "error", err)
		} else if err := fw.Add(filepath.Dir(s.path)); err != nil {
			s.logger.Warn(ctx, "cannot watch database directory, polling only", "error", err)
			_ = fw.Close()
			fw = nil
		}
	}

	wctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.watch(wctx, fw)
	return nil
}

func (s *Store) watch(ctx context.Context, fw *fsnotify.Watcher) {
	defer s.wg.Done()

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if fw != nil {
		defer fw.Close()
		events, errs = fw.Events, fw.Errors
	}

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	base := filepath.Base(s.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			name := filepath.Base(ev.Name)
			if name != base && name != base+"-wal" {
				continue
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.logger.Warn(ctx, "fsnotify error", "error", err)
			continue
		case <-ticker.C:
		}

		if err := s.scan(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn(ctx, "change scan failed", "error", err)
		}
	}
}

// scan reads rows newer than lastSeq and notifies subscribers about the ones
// written by other origins. Rows are fully read before any handler runs so a
// handler may query the store.
func (s *Store) scan(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, s.q(queryChangesSince), s.lastSeq)
	if err != nil {
		return fmt.Errorf("failed to query changes: %w", err)
	}

	var changes []kv.Change
	for rows.Next() {
		var (
			c       kv.Change
			deleted int
			seq     int64
		)
		if err := rows.Scan(&c.Key, &c.Value, &deleted, &c.Origin, &seq); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan change row: %w", err)
		}
		c.Deleted = deleted != 0
		if seq > s.lastSeq {
			s.lastSeq = seq
		}
		if c.Origin != s.origin {
			changes = append(changes, c)
		}
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return fmt.Errorf("failed to iterate change rows: %w", err)
	}

	for _, c := range changes {
		s.subs.Notify(c)
	}
	return nil
}

func (s *Store) maxSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, s.q(queryMaxSeq)).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to read max seq: %w", err)
	}
	return seq, nil
}
