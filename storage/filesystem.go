package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// FilesystemStore writes invites into a local directory that the app serves
// under baseURL.
type FilesystemStore struct {
	dir     string
	baseURL string
	now     func() time.Time
}

// NewFilesystemStore creates a FilesystemStore. baseURL is the public prefix
// the directory is served under, e.g. "/invites".
func NewFilesystemStore(dir, baseURL string) *FilesystemStore {
	return &FilesystemStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

func (s *FilesystemStore) Name() string { return "filesystem" }

// Dir returns the directory invites are written to.
func (s *FilesystemStore) Dir() string { return s.dir }

// Persist writes data to a new file and returns its public URL. An existing
// file is never overwritten; a counter is appended instead.
func (s *FilesystemStore) Persist(ctx context.Context, data []byte, nameHint string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create invite dir: %w", err)
	}

	base := UniqueName(nameHint, s.now())
	candidate := base + ".png"
	for counter := 2; ; counter++ {
		f, err := os.OpenFile(filepath.Join(s.dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			candidate = fmt.Sprintf("%s-%d.png", base, counter)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create invite file: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", fmt.Errorf("write invite: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close invite: %w", err)
		}
		break
	}

	logrus.WithFields(logrus.Fields{"file": candidate, "bytes": len(data)}).Debug("Stored invite")
	return s.baseURL + "/" + candidate, nil
}

// Remove deletes the file behind a URL returned by Persist. URLs outside
// baseURL are ignored.
func (s *FilesystemStore) Remove(ctx context.Context, url string) error {
	name, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || name == "" || path.Base(name) != name {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
