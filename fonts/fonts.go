// Package fonts loads the font files a theme configuration declares and hands
// out faces by family, weight and size.
package fonts

import (
	"io/fs"
	"sort"
	"strings"

	"github.com/golang/freetype/truetype"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/eringen/inviteengine/themes"
)

const (
	WeightNormal = "normal"
	WeightBold   = "bold"
)

// Registry maps family and weight to a parsed font. It is populated once by
// Initialize and only read afterwards, so it is safe for concurrent use.
type Registry struct {
	families map[string]map[string]*truetype.Font
}

// Initialize parses every font in specs from fsys. Files that are missing or
// fail to parse are logged and skipped. The built-in sans-serif family is
// always registered.
func Initialize(fsys fs.FS, specs []themes.FontSpec) *Registry {
	r := &Registry{families: make(map[string]map[string]*truetype.Font)}
	r.add(themes.DefaultFamily, WeightNormal, mustParse(goregular.TTF))
	r.add(themes.DefaultFamily, WeightBold, mustParse(gobold.TTF))

	for _, spec := range specs {
		log := logrus.WithFields(logrus.Fields{
			"family": spec.Family,
			"weight": spec.Weight,
			"file":   spec.File,
		})
		if fsys == nil {
			log.Warn("No asset filesystem, skipping font")
			continue
		}
		data, err := fs.ReadFile(fsys, spec.File)
		if err != nil {
			log.WithError(err).Warn("Font file unavailable, skipping")
			continue
		}
		f, err := truetype.Parse(data)
		if err != nil {
			log.WithError(err).Warn("Font file could not be parsed, skipping")
			continue
		}
		r.add(spec.Family, spec.Weight, f)
		log.Debug("Registered font")
	}
	return r
}

// Face returns a new face for the family and weight at size pixels. Faces
// keep a glyph cache and must not be shared between goroutines. An unknown
// family falls back to sans-serif; an unknown weight falls back to normal.
func (r *Registry) Face(family, weight string, size float64) font.Face {
	return truetype.NewFace(r.lookup(family, weight), &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// Has reports whether family was registered under its own name.
func (r *Registry) Has(family string) bool {
	_, ok := r.families[normalize(family)]
	return ok
}

// Families lists the registered family names in sorted order.
func (r *Registry) Families() []string {
	out := make([]string, 0, len(r.families))
	for name := range r.families {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) lookup(family, weight string) *truetype.Font {
	weights, ok := r.families[normalize(family)]
	if !ok {
		weights = r.families[themes.DefaultFamily]
	}
	if f, ok := weights[normalizeWeight(weight)]; ok {
		return f
	}
	if f, ok := weights[WeightNormal]; ok {
		return f
	}
	// A family registered with only a bold file.
	for _, f := range weights {
		return f
	}
	return r.families[themes.DefaultFamily][WeightNormal]
}

func (r *Registry) add(family, weight string, f *truetype.Font) {
	name := normalize(family)
	if r.families[name] == nil {
		r.families[name] = make(map[string]*truetype.Font)
	}
	r.families[name][normalizeWeight(weight)] = f
}

func normalize(family string) string {
	return strings.ToLower(strings.TrimSpace(family))
}

// normalizeWeight folds CSS numeric weights onto normal and bold.
func normalizeWeight(weight string) string {
	switch strings.ToLower(strings.TrimSpace(weight)) {
	case "bold", "bolder", "600", "700", "800", "900":
		return WeightBold
	default:
		return WeightNormal
	}
}

func mustParse(ttf []byte) *truetype.Font {
	f, err := truetype.Parse(ttf)
	if err != nil {
		panic("fonts: parse built-in font: " + err.Error())
	}
	return f
}
