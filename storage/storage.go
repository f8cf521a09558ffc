// Package storage persists rendered invites and falls back to an inline data
// URL when the backend is unavailable.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// MimePNG is the content type of every persisted invite.
const MimePNG = "image/png"

// ErrDisabled is returned by the "none" backend.
var ErrDisabled = errors.New("persistence disabled")

// Persister uploads an image and returns a URL it can be fetched from.
type Persister interface {
	Persist(ctx context.Context, data []byte, nameHint string) (string, error)
}

// Remover is implemented by backends that can delete what they stored.
type Remover interface {
	Remove(ctx context.Context, url string) error
}

// PersistenceError wraps a failed upload.
type PersistenceError struct {
	Backend string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist to %s: %v", e.Backend, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Outcome is the result of Save. URL is always usable: it is the durable URL
// when the upload worked and InlineURL otherwise.
type Outcome struct {
	URL       string
	InlineURL string
	Durable   bool
	Err       error
}

// Save persists data with p. A failed upload is logged and reported in
// Outcome.Err, never returned, so callers can always answer with an image.
func Save(ctx context.Context, p Persister, data []byte, nameHint string) Outcome {
	out := Outcome{InlineURL: DataURL(MimePNG, data)}
	out.URL = out.InlineURL

	if p == nil {
		out.Err = &PersistenceError{Backend: "none", Err: ErrDisabled}
		return out
	}
	url, err := p.Persist(ctx, data, nameHint)
	if err == nil && url == "" {
		err = errors.New("backend returned an empty url")
	}
	if err != nil {
		var pe *PersistenceError
		if !errors.As(err, &pe) {
			err = &PersistenceError{Backend: backendName(p), Err: err}
		}
		out.Err = err
		log := logrus.WithFields(logrus.Fields{
			"backend": backendName(p),
			"name":    nameHint,
			"bytes":   len(data),
		})
		if errors.Is(err, ErrDisabled) {
			log.Debug("Persistence disabled, returning inline image")
		} else {
			log.WithError(err).Warn("Persisting invite failed, returning inline image")
		}
		return out
	}
	out.URL = url
	out.Durable = true
	return out
}

// DataURL encodes data as a base64 data URL.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// UniqueName derives an object name from hint and the time in unix
// milliseconds, e.g. "max-superhero-1718900000000".
func UniqueName(hint string, t time.Time) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(hint), "-"), "-")
	if len(slug) > 60 {
		slug = strings.TrimRight(slug[:60], "-")
	}
	if slug == "" {
		slug = "invite"
	}
	return fmt.Sprintf("%s-%d", slug, t.UnixMilli())
}

type namer interface{ Name() string }

func backendName(p Persister) string {
	if n, ok := p.(namer); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}
