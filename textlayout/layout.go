package textlayout

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eringen/inviteengine/themes"
)

// FontStep is the decrement applied on each auto-scale iteration. Existing
// invites were produced with this step, so changing it changes output.
const FontStep = 5

// Layout reports what Draw did for one zone.
type Layout struct {
	ZoneID      string   `json:"zoneId"`
	FontSize    float64  `json:"fontSize"`
	StrokeWidth float64  `json:"strokeWidth,omitempty"`
	Lines       []string `json:"lines"`
	Width       float64  `json:"width"`
}

// ResolveText picks the text for a zone: static text wins over the field
// value. ok is false when the zone has nothing to draw.
func ResolveText(z themes.Zone, fields map[string]string) (text string, ok bool) {
	if z.StaticText != "" {
		return z.StaticText, true
	}
	text = strings.TrimSpace(fields[z.ID])
	return text, text != ""
}

// ApplyTransform applies a CSS-style text transform. Capitalize uppercases
// the first letter of each word and leaves the rest alone.
func ApplyTransform(text, transform string) string {
	// Casers carry state and are not shared between goroutines.
	switch transform {
	case themes.TransformUppercase:
		return cases.Upper(language.Und).String(text)
	case themes.TransformLowercase:
		return cases.Lower(language.Und).String(text)
	case themes.TransformCapitalize:
		return cases.Title(language.Und, cases.NoLower).String(text)
	default:
		return text
	}
}

// MeasureWidth returns the drawn width of text with the current font. With
// spacing set it is the sum of the glyph widths plus spacing between each
// pair of glyphs.
func MeasureWidth(c Canvas, text string, spacing float64) float64 {
	if spacing == 0 {
		return c.MeasureString(text)
	}
	var w float64
	n := 0
	for _, r := range text {
		w += c.MeasureString(string(r))
		n++
	}
	if n > 1 {
		w += spacing * float64(n-1)
	}
	return w
}

// ResolveFontSize shrinks an auto-scaling zone in FontStep decrements until
// text fits MaxWidth or another step would go below MinFontSize. The result
// is always FontSize minus a whole number of steps. The font is left set at
// the returned size.
func ResolveFontSize(c Canvas, text string, z themes.Zone) float64 {
	size := z.FontSize
	c.SetFont(z.FontFamily, z.FontWeight, size)
	if !z.AutoScale || z.MaxWidth <= 0 {
		return size
	}
	floor := math.Max(z.MinFontSize, 1)
	for MeasureWidth(c, text, z.LetterSpacing) > z.MaxWidth && size-FontStep >= floor {
		size -= FontStep
		c.SetFont(z.FontFamily, z.FontWeight, size)
	}
	return size
}

// WrapLines greedily packs words into lines no wider than maxWidth using
// the current font. A single word wider than maxWidth gets a line of its
// own and overflows.
func WrapLines(c Canvas, text string, maxWidth float64) []string {
	return wrap(c, text, maxWidth, 0)
}

func wrap(c Canvas, text string, maxWidth, spacing float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		candidate := line + " " + w
		if MeasureWidth(c, candidate, spacing) <= maxWidth {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = w
	}
	return append(lines, line)
}

// Draw renders text for zone z. The canvas state is restored on return.
//
// The whole zone is stroked before any of it is filled, so fill stays on top
// even where lines or spaced glyphs overlap.
func Draw(c Canvas, z themes.Zone, text string) Layout {
	text = ApplyTransform(text, z.TextTransform)
	size := ResolveFontSize(c, text, z)

	out := Layout{ZoneID: z.ID, FontSize: size}
	if z.HasStroke() {
		out.StrokeWidth = z.StrokeWidth * size / z.FontSize
	}

	lines := []string{text}
	if z.Multiline && z.MaxWidth > 0 {
		lines = wrap(c, text, z.MaxWidth, z.LetterSpacing)
	}
	out.Lines = lines

	type placed struct {
		text string
		x, y float64
	}
	lineHeight := size * z.LineHeight
	y := 0.0
	if len(lines) > 1 {
		y = -float64(len(lines))*lineHeight/2 + lineHeight/2
	}
	runs := make([]placed, 0, len(lines))
	for _, l := range lines {
		w := MeasureWidth(c, l, z.LetterSpacing)
		out.Width = math.Max(out.Width, w)
		runs = append(runs, placed{text: l, x: alignOffset(z.Align, w), y: y})
		y += lineHeight
	}

	c.Push()
	defer c.Pop()
	c.Translate(z.X, z.Y)
	if z.Rotation != 0 {
		c.Rotate(z.Rotation * math.Pi / 180)
	}

	if out.StrokeWidth > 0 {
		c.SetColor(themes.MustColor(z.StrokeColor))
		for _, r := range runs {
			drawRun(c, r.text, r.x, r.y, z.LetterSpacing, out.StrokeWidth)
		}
	}
	c.SetColor(themes.MustColor(z.Color))
	for _, r := range runs {
		drawRun(c, r.text, r.x, r.y, z.LetterSpacing, 0)
	}
	return out
}

func alignOffset(align string, width float64) float64 {
	switch align {
	case themes.AlignCenter:
		return -width / 2
	case themes.AlignRight:
		return -width
	default:
		return 0
	}
}

// drawRun draws one line starting at its left edge. A positive stroke draws
// the outline, zero draws the fill. With spacing the line is placed glyph by
// glyph.
func drawRun(c Canvas, s string, x, y, spacing, stroke float64) {
	paint := func(s string, x float64) {
		if stroke > 0 {
			c.StrokeString(s, x, y, stroke)
		} else {
			c.FillString(s, x, y)
		}
	}
	if spacing == 0 {
		paint(s, x)
		return
	}
	for _, r := range s {
		g := string(r)
		paint(g, x)
		x += c.MeasureString(g) + spacing
	}
}
