// Package backup copies the whole key/value space to S3-compatible object
// storage as a single JSON snapshot and restores it back.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/unicampus/internal/cryptox"
	"github.com/dmitrijs2005/unicampus/internal/kv"
	"github.com/dmitrijs2005/unicampus/internal/logging"
)

// SnapshotVersion is written into every snapshot document.
const SnapshotVersion = 1

var (
	ErrNoBucket           = errors.New("backup bucket is not configured")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrPassphrase         = errors.New("snapshot is encrypted, set BACKUP_PASSPHRASE")
)

// ObjectAPI is the subset of *s3.Client used here.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Snapshot is the uploaded document.
type Snapshot struct {
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"createdAt"`
	Entries   map[string]string `json:"entries"`
}

// Exporter moves snapshots between a Store and a bucket.
type Exporter struct {
	store   kv.Store
	objects ObjectAPI
	bucket  string
	prefix  string
	secret  []byte
	logger  logging.Logger
	now     func() time.Time
}

func NewExporter(store kv.Store, objects ObjectAPI, bucket, prefix string, logger logging.Logger) *Exporter {
	return &Exporter{
		store:   store,
		objects: objects,
		bucket:  bucket,
		prefix:  prefix,
		logger:  logger.With("module", "backup"),
		now:     time.Now,
	}
}

// WithPassphrase makes Export seal snapshots and lets Restore open sealed
// ones. An empty passphrase leaves snapshots in plain JSON.
func (e *Exporter) WithPassphrase(p string) *Exporter {
	if p != "" {
		e.secret = []byte(p)
	}
	return e
}

// SnapshotKey builds a dated, unique object key below prefix.
func SnapshotKey(prefix string, d time.Time) string {
	return fmt.Sprintf("%ssnapshots/%d/%02d/%02d/%v.json", prefix, d.Year(), d.Month(), d.Day(), uuid.New())
}

// Export uploads every key of the store and returns the object key.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	if e.bucket == "" {
		return "", ErrNoBucket
	}

	keys, err := e.store.Keys(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list keys: %w", err)
	}

	snap := Snapshot{
		Version:   SnapshotVersion,
		CreatedAt: e.now().UTC(),
		Entries:   make(map[string]string, len(keys)),
	}
	for _, k := range keys {
		v, ok, err := e.store.Get(ctx, k)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", k, err)
		}
		if ok {
			snap.Entries[k] = v
		}
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	contentType := "application/json"
	if e.secret != nil {
		if body, err = cryptox.Seal(body, e.secret); err != nil {
			return "", fmt.Errorf("failed to seal snapshot: %w", err)
		}
		contentType = "application/octet-stream"
	}

	key := SnapshotKey(e.prefix, snap.CreatedAt)
	_, err = e.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot: %w", err)
	}

	e.logger.Info(ctx, "snapshot uploaded", "key", key, "entries", len(snap.Entries), "sealed", e.secret != nil)
	return key, nil
}

// Restore downloads the snapshot at key and writes every entry back.
// Keys missing from the snapshot are left untouched.
func (e *Exporter) Restore(ctx context.Context, key string) (int, error) {
	if e.bucket == "" {
		return 0, ErrNoBucket
	}

	out, err := e.objects.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to download snapshot: %w", err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read snapshot: %w", err)
	}

	if cryptox.IsSealed(raw) {
		if e.secret == nil {
			return 0, ErrPassphrase
		}
		if raw, err = cryptox.Open(raw, e.secret); err != nil {
			return 0, fmt.Errorf("failed to open snapshot: %w", err)
		}
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return 0, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Version != SnapshotVersion {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, snap.Version)
	}

	if err := kv.SetMany(ctx, e.store, snap.Entries); err != nil {
		return 0, fmt.Errorf("failed to write snapshot: %w", err)
	}

	e.logger.Info(ctx, "snapshot restored", "key", key, "entries", len(snap.Entries))
	return len(snap.Entries), nil
}
