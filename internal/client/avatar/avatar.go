// Package avatar validates profile pictures and turns them into data URIs
// so a profile stays self-contained JSON.
package avatar

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxSize is the largest accepted file, in bytes.
const MaxSize = 5_000_000

const (
	MsgNotImage   = "Please upload an image file (PNG/JPG/WebP)."
	MsgTooLarge   = "That image is too large. Try one under ~5MB."
	MsgUnreadable = "Could not read that file. Try another image."
)

// sniffLen is how much of the file head is used for type detection.
const sniffLen = 3072

// ErrUnreadable means the file passed validation but could not be read.
var ErrUnreadable = errors.New("avatar file unreadable")

// RejectionError is a validation failure with a message meant for the user.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string { return e.Message }

// UserMessage returns the user-facing text for an avatar error, or "" when
// err is not one.
func UserMessage(err error) string {
	var rej *RejectionError
	switch {
	case errors.As(err, &rej):
		return rej.Message
	case errors.Is(err, ErrUnreadable):
		return MsgUnreadable
	}
	return ""
}

// File is a candidate avatar. Open may be called more than once.
type File struct {
	Name string
	// Type is the MIME type declared by the source (extension, upload
	// header). Detection from content takes precedence.
	Type string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FromPath describes a file on disk.
func FromPath(path string) (File, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return File{
		Name: filepath.Base(path),
		Type: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Size: fi.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// FromBytes describes an in-memory upload.
func FromBytes(name, declaredType string, data []byte) File {
	return File{
		Name: name,
		Type: declaredType,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// DetectType sniffs the file head, falling back to the declared type when
// the content cannot be read or is not recognised.
func DetectType(f File) string {
	if f.Open != nil {
		if rc, err := f.Open(); err == nil {
			head := make([]byte, sniffLen)
			n, _ := io.ReadFull(rc, head)
			_ = rc.Close()
			if n > 0 {
				if mt := mimetype.Detect(head[:n]); mt.String() != "application/octet-stream" && mt.String() != "text/plain; charset=utf-8" {
					return baseType(mt.String())
				}
			}
		}
	}
	return baseType(f.Type)
}

// Validate checks the type is image/* and the size is within MaxSize. It
// returns the detected MIME type.
func Validate(f File) (string, error) {
	mt := DetectType(f)
	if !strings.HasPrefix(mt, "image/") {
		return "", &RejectionError{Message: MsgNotImage}
	}
	if f.Size > MaxSize {
		return "", &RejectionError{Message: MsgTooLarge}
	}
	return mt, nil
}

// ReadDataURI validates f and reads it into a data:<mime>;base64 URI. The
// read stops early when ctx is cancelled.
func ReadDataURI(ctx context.Context, f File) (string, error) {
	mt, err := Validate(f)
	if err != nil {
		return "", err
	}
	if f.Open == nil {
		return "", ErrUnreadable
	}

	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	chunk := make([]byte, 64*1024)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, err := rc.Read(chunk)
		buf.Write(chunk[:n])
		if buf.Len() > MaxSize {
			return "", &RejectionError{Message: MsgTooLarge}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
	}

	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func baseType(t string) string {
	if t == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(t)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(t))
	}
	return mt
}
