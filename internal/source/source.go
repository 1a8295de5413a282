// Package source resolves where a dataset archive comes from: a local path,
// an uploaded stream or a remote download.
package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Archive is the raw bytes of a ZIP file plus a display name.
type Archive struct {
	Name string
	Data []byte
}

// Key identifies archive content for caching.
func (a *Archive) Key() string { return Key(a.Data) }

// Key returns the hex SHA-256 of b.
func Key(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Source produces an Archive.
type Source interface {
	Open(ctx context.Context) (*Archive, error)
}

// ErrTooLarge is returned when an upload exceeds its size cap.
var ErrTooLarge = errors.New("archive exceeds size limit")

// Local reads an archive from disk.
type Local struct {
	Path string
}

func (l Local) Open(ctx context.Context) (*Archive, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.Path, err)
	}
	return &Archive{Name: filepath.Base(l.Path), Data: b}, nil
}

// Upload reads an archive from a stream, such as a multipart upload.
type Upload struct {
	Name   string
	Reader io.Reader
	// MaxBytes caps the stream size; 0 means unlimited.
	MaxBytes int64
}

func (u Upload) Open(ctx context.Context) (*Archive, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := u.Reader
	if u.MaxBytes > 0 {
		r = io.LimitReader(u.Reader, u.MaxBytes+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", u.Name, err)
	}
	if u.MaxBytes > 0 && int64(len(b)) > u.MaxBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, u.Name, u.MaxBytes)
	}
	return &Archive{Name: u.Name, Data: b}, nil
}
