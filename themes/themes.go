// Package themes holds the invite template registry: one background image and
// an ordered list of text zones per party theme.
package themes

import (
	"errors"
	"fmt"
	"sort"
)

// Text alignment values accepted on a Zone.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Text transform values accepted on a Zone.
const (
	TransformNone       = "none"
	TransformUppercase  = "uppercase"
	TransformLowercase  = "lowercase"
	TransformCapitalize = "capitalize"
)

// DefaultFamily is the family every deployment can render, regardless of which
// font files are present on disk.
const DefaultFamily = "sans-serif"

// ErrUnknownTemplate is matched by errors.Is for any UnknownTemplateError.
var ErrUnknownTemplate = errors.New("unknown template")

// UnknownTemplateError reports a theme key with no registry entry. Callers
// surface it as invalid client input.
type UnknownTemplateError struct {
	Key string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("unknown template %q", e.Key)
}

// Is reports whether target is ErrUnknownTemplate.
func (e *UnknownTemplateError) Is(target error) bool {
	return target == ErrUnknownTemplate
}

// Template is the configuration for one party theme.
type Template struct {
	Key        string `json:"-"`
	Name       string `json:"name"`
	Background string `json:"background"` // slash path inside the asset FS
	Width      int    `json:"width"`      // nominal size, used only when the background has none
	Height     int    `json:"height"`
	Zones      []Zone `json:"zones"`
}

// Zone is one piece of text drawn on a template.
type Zone struct {
	ID         string  `json:"id"`
	StaticText string  `json:"staticText,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`

	FontSize   float64 `json:"fontSize"`
	FontFamily string  `json:"fontFamily,omitempty"`
	FontWeight string  `json:"fontWeight,omitempty"`

	Color       string  `json:"color,omitempty"`
	StrokeColor string  `json:"strokeColor,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`

	Align         string  `json:"align,omitempty"`
	TextTransform string  `json:"textTransform,omitempty"`
	LetterSpacing float64 `json:"letterSpacing,omitempty"`
	Rotation      float64 `json:"rotation,omitempty"` // degrees, clockwise

	MaxWidth    float64 `json:"maxWidth,omitempty"`
	AutoScale   bool    `json:"autoScale,omitempty"`
	MinFontSize float64 `json:"minFontSize,omitempty"`

	Multiline  bool    `json:"multiline,omitempty"`
	LineHeight float64 `json:"lineHeight,omitempty"` // multiplier of the font size
}

// HasStroke reports whether the zone draws an outline.
func (z Zone) HasStroke() bool {
	return z.StrokeColor != "" && z.StrokeWidth > 0
}

// FontSpec names one font file in the asset FS and the family/weight it
// registers under.
type FontSpec struct {
	Family string `json:"family"`
	Weight string `json:"weight,omitempty"`
	File   string `json:"file"`
}

// Registry is an immutable theme lookup built once at startup.
type Registry struct {
	templates map[string]*Template
	fonts     []FontSpec
}

// Get returns the template registered under key.
func (r *Registry) Get(key string) (*Template, error) {
	t, ok := r.templates[key]
	if !ok {
		return nil, &UnknownTemplateError{Key: key}
	}
	return t, nil
}

// Keys returns every theme key in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.templates))
	for k := range r.templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fonts returns the font manifest declared alongside the templates.
func (r *Registry) Fonts() []FontSpec {
	out := make([]FontSpec, len(r.fonts))
	copy(out, r.fonts)
	return out
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	return len(r.templates)
}
