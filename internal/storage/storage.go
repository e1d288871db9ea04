package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const trashDir = ".trash"

var ErrTooLarge = errors.New("file exceeds the upload limit")

// Stored describes a file after it has been written.
type Stored struct {
	Path string
	Size int64
}

// FileStore keeps attachment bytes. Paths are relative, slash separated and never escape the root.
type FileStore interface {
	Put(ctx context.Context, dir, originalName string, r io.Reader, limit int64) (Stored, error)
	Delete(ctx context.Context, p string) error
	// Trash moves a file aside so that it can either be restored or purged later.
	Trash(ctx context.Context, p string) (Trashed, error)
	Open(ctx context.Context, p string) (io.ReadCloser, error)
}

// Trashed is a file moved aside by FileStore.Trash.
type Trashed interface {
	Restore() error
	Purge() error
}

type Store struct {
	fs afero.Fs
}

// NewLocal stores files under root on the local disk.
func NewLocal(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return New(afero.NewBasePathFs(afero.NewOsFs(), root)), nil
}

func New(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

func (s *Store) Put(ctx context.Context, dir, originalName string, r io.Reader, limit int64) (Stored, error) {
	if err := ctx.Err(); err != nil {
		return Stored{}, err
	}
	dir, err := clean(dir)
	if err != nil {
		return Stored{}, err
	}
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return Stored{}, fmt.Errorf("create directory %s: %w", dir, err)
	}

	name := uuid.NewString() + strings.ToLower(path.Ext(filepath.Base(originalName)))
	p := path.Join(dir, name)

	f, err := s.fs.Create(p)
	if err != nil {
		return Stored{}, fmt.Errorf("create %s: %w", p, err)
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	if copyErr == nil && limit > 0 && n > limit {
		copyErr = ErrTooLarge
	}
	if copyErr != nil || closeErr != nil {
		_ = s.fs.Remove(p)
		if copyErr != nil {
			return Stored{}, copyErr
		}
		return Stored{}, closeErr
	}

	return Stored{Path: p, Size: n}, nil
}

func (s *Store) Delete(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := clean(p)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", p, err)
	}
	return nil
}

func (s *Store) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := clean(p)
	if err != nil {
		return nil, err
	}
	return s.fs.Open(p)
}

func (s *Store) Exists(p string) bool {
	p, err := clean(p)
	if err != nil {
		return false
	}
	ok, _ := afero.Exists(s.fs, p)
	return ok
}

func (s *Store) Trash(ctx context.Context, p string) (Trashed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := clean(p)
	if err != nil {
		return nil, err
	}

	ok, err := afero.Exists(s.fs, p)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", p, err)
	}
	if !ok {
		// already gone; nothing to restore or purge
		return noopTrash{}, nil
	}

	bucket := path.Join(trashDir, uuid.NewString())
	dst := path.Join(bucket, p)
	if err := s.fs.MkdirAll(path.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("prepare trash for %s: %w", p, err)
	}
	if err := s.fs.Rename(p, dst); err != nil {
		return nil, fmt.Errorf("move %s to trash: %w", p, err)
	}
	return &trashed{fs: s.fs, bucket: bucket, original: p, current: dst}, nil
}

type trashed struct {
	fs       afero.Fs
	bucket   string
	original string
	current  string
}

func (t *trashed) Restore() error {
	return t.fs.Rename(t.current, t.original)
}

func (t *trashed) Purge() error {
	return t.fs.RemoveAll(t.bucket)
}

type noopTrash struct{}

func (noopTrash) Restore() error { return nil }
func (noopTrash) Purge() error   { return nil }

func clean(p string) (string, error) {
	c := path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	c = strings.TrimPrefix(c, "/")
	if c == "" || c == "." {
		return "", fmt.Errorf("invalid storage path %q", p)
	}
	return c, nil
}
