package themes

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
)

//go:embed themes.json
var defaultThemes []byte

// Default minimum size for auto-scaling zones that do not declare one.
const defaultMinFontSize = 10

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// file is the on-disk shape of a theme configuration.
type file struct {
	Fonts     []FontSpec           `json:"fonts"`
	Templates map[string]*Template `json:"templates"`
}

// Default returns the registry built from the embedded theme configuration.
func Default() (*Registry, error) {
	return Load(bytes.NewReader(defaultThemes))
}

// LoadFile reads a theme configuration from path.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("themes: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a theme configuration, fills defaults and validates every
// template. All validation failures are returned together.
func Load(r io.Reader) (*Registry, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var cfg file
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("themes: decode: %w", err)
	}
	if len(cfg.Templates) == 0 {
		return nil, errors.New("themes: no templates defined")
	}

	var errs []error
	for i, f := range cfg.Fonts {
		if f.Family == "" || f.File == "" {
			errs = append(errs, fmt.Errorf("fonts[%d]: family and file are required", i))
		}
		if cfg.Fonts[i].Weight == "" {
			cfg.Fonts[i].Weight = "normal"
		}
	}

	reg := &Registry{
		templates: make(map[string]*Template, len(cfg.Templates)),
		fonts:     cfg.Fonts,
	}
	for key, t := range cfg.Templates {
		if t == nil {
			errs = append(errs, fmt.Errorf("template %q: empty definition", key))
			continue
		}
		t.Key = key
		applyDefaults(t)
		if err := Validate(t); err != nil {
			errs = append(errs, err)
			continue
		}
		reg.templates[key] = t
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("themes: invalid configuration: %w", err)
	}
	return reg, nil
}

func applyDefaults(t *Template) {
	if t.Name == "" {
		t.Name = t.Key
	}
	for i := range t.Zones {
		z := &t.Zones[i]
		if z.Align == "" {
			z.Align = AlignLeft
		}
		if z.TextTransform == "" {
			z.TextTransform = TransformNone
		}
		if z.FontFamily == "" {
			z.FontFamily = DefaultFamily
		}
		if z.FontWeight == "" {
			z.FontWeight = "normal"
		}
		if z.Color == "" {
			z.Color = "#000000"
		}
		if z.LineHeight == 0 {
			z.LineHeight = 1.2
		}
		if z.AutoScale && z.MinFontSize == 0 {
			z.MinFontSize = defaultMinFontSize
		}
	}
}

// Validate checks the structural invariants of a template.
func Validate(t *Template) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("template %q: "+format, append([]any{t.Key}, args...)...))
	}

	if !keyPattern.MatchString(t.Key) {
		fail("key must be lowercase letters, digits and dashes")
	}
	if t.Background == "" {
		fail("background is required")
	}
	if t.Width <= 0 || t.Height <= 0 {
		fail("width and height must be positive, got %dx%d", t.Width, t.Height)
	}
	if len(t.Zones) == 0 {
		fail("at least one zone is required")
	}

	for i, z := range t.Zones {
		if z.ID == "" {
			fail("zones[%d]: id is required", i)
		}
		if z.FontSize <= 0 {
			fail("zone %q: fontSize must be positive", z.ID)
		}
		if z.AutoScale && z.MaxWidth <= 0 {
			fail("zone %q: autoScale requires maxWidth > 0", z.ID)
		}
		if z.Multiline && z.MaxWidth <= 0 {
			fail("zone %q: multiline requires maxWidth > 0", z.ID)
		}
		if z.AutoScale && z.Multiline {
			fail("zone %q: autoScale and multiline cannot be combined", z.ID)
		}
		if z.MinFontSize < 0 || z.MinFontSize > z.FontSize {
			fail("zone %q: minFontSize %.1f must be between 0 and fontSize %.1f", z.ID, z.MinFontSize, z.FontSize)
		}
		if z.StrokeWidth < 0 {
			fail("zone %q: strokeWidth must not be negative", z.ID)
		}
		if z.LineHeight <= 0 {
			fail("zone %q: lineHeight must be positive", z.ID)
		}
		switch z.Align {
		case AlignLeft, AlignCenter, AlignRight:
		default:
			fail("zone %q: unknown align %q", z.ID, z.Align)
		}
		switch z.TextTransform {
		case TransformNone, TransformUppercase, TransformLowercase, TransformCapitalize:
		default:
			fail("zone %q: unknown textTransform %q", z.ID, z.TextTransform)
		}
		if _, err := ParseHexColor(z.Color); err != nil {
			fail("zone %q: color: %v", z.ID, err)
		}
		if z.StrokeColor != "" {
			if _, err := ParseHexColor(z.StrokeColor); err != nil {
				fail("zone %q: strokeColor: %v", z.ID, err)
			}
		}
	}
	return errors.Join(errs...)
}
