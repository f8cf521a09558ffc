package compositor

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"sync"
	"time"
)

// BackgroundLoadError reports a template background that could not be read or
// decoded.
type BackgroundLoadError struct {
	Path string
	Err  error
}

func (e *BackgroundLoadError) Error() string {
	return fmt.Sprintf("load background %q: %v", e.Path, e.Err)
}

func (e *BackgroundLoadError) Unwrap() error { return e.Err }

// NotFound reports whether the background file is missing, as opposed to
// present but unreadable.
func (e *BackgroundLoadError) NotFound() bool {
	return errors.Is(e.Err, fs.ErrNotExist)
}

// BackgroundSource loads decoded background images by asset path.
type BackgroundSource interface {
	Load(path string) (image.Image, error)
}

type cachedBackground struct {
	img     image.Image
	fetched time.Time
}

// BackgroundCache decodes backgrounds from an fs.FS and keeps them for ttl.
// Decoded images are shared between renders and never written to.
type BackgroundCache struct {
	mu      sync.RWMutex
	fsys    fs.FS
	ttl     time.Duration
	entries map[string]cachedBackground
}

// NewBackgroundCache creates a BackgroundCache over fsys. A ttl of zero keeps
// entries until Invalidate is called.
func NewBackgroundCache(fsys fs.FS, ttl time.Duration) *BackgroundCache {
	return &BackgroundCache{fsys: fsys, ttl: ttl, entries: make(map[string]cachedBackground)}
}

func (c *BackgroundCache) valid(e cachedBackground, ok bool) bool {
	return ok && (c.ttl <= 0 || time.Since(e.fetched) < c.ttl)
}

// Invalidate drops every cached image so the next Load reads from disk.
func (c *BackgroundCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cachedBackground)
	c.mu.Unlock()
}

// Load returns the decoded image at path. Failures are *BackgroundLoadError
// and are not cached.
func (c *BackgroundCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	e, ok := c.entries[path]
	if c.valid(e, ok) {
		c.mu.RUnlock()
		return e.img, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[path]; c.valid(e, ok) {
		return e.img, nil
	}
	img, err := decodeFile(c.fsys, path)
	if err != nil {
		return nil, err
	}
	c.entries[path] = cachedBackground{img: img, fetched: time.Now()}
	return img, nil
}

func decodeFile(fsys fs.FS, path string) (image.Image, error) {
	if fsys == nil {
		return nil, &BackgroundLoadError{Path: path, Err: fs.ErrNotExist}
	}
	f, err := fsys.Open(path)
	if err != nil {
		return nil, &BackgroundLoadError{Path: path, Err: err}
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &BackgroundLoadError{Path: path, Err: fmt.Errorf("decode: %w", err)}
	}
	return img, nil
}
