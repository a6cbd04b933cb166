// Package scratch manages the directory that holds uploaded audio for the
// lifetime of a single request. Every file is named "<uuid>_<filename>" so
// concurrent requests never collide.
package scratch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "whisper-stt/internal/app/errors"
)

// idLen is the length of a canonical UUID string.
const idLen = 36

// Area is a scratch directory guaranteed to exist once New returns.
type Area struct {
	dir   string
	newID func() uuid.UUID
}

// New creates the directory if it is absent.
func New(dir string) (*Area, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory %s: %w", dir, err)
	}
	return &Area{dir: dir, newID: uuid.New}, nil
}

// Dir returns the scratch directory.
func (a *Area) Dir() string {
	return a.dir
}

// SanitizeFilename reduces an untrusted client filename to its base name.
// It reports false when nothing usable remains.
func SanitizeFilename(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	switch base {
	case "", ".", "..", "/":
		return "", false
	}
	return base, true
}

// Create opens a new, uniquely named file for exclusive writing.
func (a *Area) Create(filename string) (*File, error) {
	id := a.newID()
	p := filepath.Join(a.dir, id.String()+"_"+filename)

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFileCreateFailed, err)
	}

	return &File{ID: id, Path: p, f: f}, nil
}

// File is one request's scratch file.
type File struct {
	ID   uuid.UUID
	Path string

	f          *os.File
	removeOnce sync.Once
	removeErr  error
}

// Write streams r into the file and releases the write handle.
func (f *File) Write(r io.Reader) (int64, error) {
	if f.f == nil {
		return 0, fmt.Errorf("%w: %s already closed", apperrors.ErrFileWriteFailed, f.Path)
	}

	n, err := io.Copy(f.f, r)
	closeErr := f.f.Close()
	f.f = nil

	if err != nil {
		return n, fmt.Errorf("%w: %w", apperrors.ErrFileWriteFailed, err)
	}
	if closeErr != nil {
		return n, fmt.Errorf("%w: %w", apperrors.ErrFileWriteFailed, closeErr)
	}
	return n, nil
}

// Remove deletes the file if it still exists. It is safe to call more than
// once; only the first call touches the filesystem.
func (f *File) Remove() error {
	f.removeOnce.Do(func() {
		if f.f != nil {
			f.f.Close()
			f.f = nil
		}
		if _, err := os.Stat(f.Path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				f.removeErr = err
			}
			return
		}
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			f.removeErr = err
		}
	})
	return f.removeErr
}

// Sweep removes scratch files older than olderThan that were left behind by a
// previous process. Files not named "<uuid>_..." are never touched.
func (a *Area) Sweep(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read scratch directory: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	var errs []error

	for _, entry := range entries {
		if entry.IsDir() || !isScratchName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(a.dir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	return removed, errors.Join(errs...)
}

func isScratchName(name string) bool {
	if len(name) <= idLen || name[idLen] != '_' {
		return false
	}
	_, err := uuid.Parse(name[:idLen])
	return err == nil
}
