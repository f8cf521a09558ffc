package textlayout

import (
	"image/color"
	"math"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/eringen/inviteengine/themes"
)

// recorder is a Canvas where every rune is half the font size wide.
type recorder struct {
	size  float64
	color color.Color
	ops   []op
	depth int
}

type op struct {
	kind  string
	text  string
	x, y  float64
	width float64
	size  float64
	color color.Color
}

func (r *recorder) SetFont(_, _ string, size float64) { r.size = size }
func (r *recorder) MeasureString(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * r.size / 2
}
func (r *recorder) SetColor(c color.Color) { r.color = c }
func (r *recorder) FillString(s string, x, y float64) {
	r.ops = append(r.ops, op{kind: "fill", text: s, x: x, y: y, size: r.size, color: r.color})
}
func (r *recorder) StrokeString(s string, x, y, w float64) {
	r.ops = append(r.ops, op{kind: "stroke", text: s, x: x, y: y, width: w, size: r.size, color: r.color})
}
func (r *recorder) Push() {
	r.depth++
	r.ops = append(r.ops, op{kind: "push"})
}
func (r *recorder) Pop() {
	r.depth--
	r.ops = append(r.ops, op{kind: "pop"})
}
func (r *recorder) Translate(x, y float64) { r.ops = append(r.ops, op{kind: "translate", x: x, y: y}) }
func (r *recorder) Rotate(rad float64)     { r.ops = append(r.ops, op{kind: "rotate", x: rad}) }

func (r *recorder) draws(kind string) []op {
	var out []op
	for _, o := range r.ops {
		if o.kind == kind {
			out = append(out, o)
		}
	}
	return out
}

func nameZone() themes.Zone {
	return themes.Zone{
		ID: "name", X: 400, Y: 300,
		FontSize: 96, FontFamily: "sans-serif", FontWeight: "normal",
		Color: "#D81B60", StrokeColor: "#FFFFFF", StrokeWidth: 6,
		Align: themes.AlignCenter, TextTransform: themes.TransformNone,
		MaxWidth: 560, AutoScale: true, MinFontSize: 40, LineHeight: 1.2,
	}
}

func TestResolveTextStaticWins(t *testing.T) {
	z := themes.Zone{ID: "turns", StaticText: "IS TURNING"}
	for _, fields := range []map[string]string{
		nil,
		{},
		{"turns": "something else"},
		{"turns": ""},
	} {
		got, ok := ResolveText(z, fields)
		if !ok || got != "IS TURNING" {
			t.Errorf("ResolveText(%v) = %q, %v; want static text", fields, got, ok)
		}
	}
}

func TestResolveTextFromFields(t *testing.T) {
	z := themes.Zone{ID: "venue"}
	if got, ok := ResolveText(z, map[string]string{"venue": " Community Hall "}); !ok || got != "Community Hall" {
		t.Errorf("ResolveText = %q, %v", got, ok)
	}
	if _, ok := ResolveText(z, map[string]string{"name": "Max"}); ok {
		t.Error("zone without a value should be skipped")
	}
	if _, ok := ResolveText(z, map[string]string{"venue": "   "}); ok {
		t.Error("blank value should be skipped")
	}
}

func TestApplyTransform(t *testing.T) {
	tests := []struct {
		in, transform, want string
	}{
		{"Community Hall", themes.TransformUppercase, "COMMUNITY HALL"},
		{"Community Hall", themes.TransformLowercase, "community hall"},
		{"max and sam", themes.TransformCapitalize, "Max And Sam"},
		{"mAX", themes.TransformCapitalize, "MAX"},
		{"Max", themes.TransformNone, "Max"},
		{"Max", "", "Max"},
	}
	for _, tt := range tests {
		if got := ApplyTransform(tt.in, tt.transform); got != tt.want {
			t.Errorf("ApplyTransform(%q, %q) = %q, want %q", tt.in, tt.transform, got, tt.want)
		}
	}
}

func TestMeasureWidthLetterSpacing(t *testing.T) {
	c := &recorder{size: 20}
	for _, text := range []string{"", "A", "MAX", "Community Hall", "Zoë"} {
		for _, spacing := range []float64{0, 1.5, 4} {
			var glyphs float64
			n := 0
			for _, r := range text {
				glyphs += c.MeasureString(string(r))
				n++
			}
			want := glyphs
			if n > 0 {
				want += spacing * float64(n-1)
			}
			if got := MeasureWidth(c, text, spacing); math.Abs(got-want) > 1e-9 {
				t.Errorf("MeasureWidth(%q, %v) = %v, want %v", text, spacing, got, want)
			}
		}
	}
}

func TestResolveFontSizeNoShrinkWhenFits(t *testing.T) {
	c := &recorder{}
	z := nameZone()
	// 10 runes at 96px = 480 <= 560
	if got := ResolveFontSize(c, "Maximilian", z); got != z.FontSize {
		t.Errorf("size = %v, want %v", got, z.FontSize)
	}
}

func TestResolveFontSizeDisabled(t *testing.T) {
	c := &recorder{}
	z := nameZone()
	z.AutoScale = false
	if got := ResolveFontSize(c, strings.Repeat("W", 100), z); got != z.FontSize {
		t.Errorf("size = %v, want %v", got, z.FontSize)
	}
}

func TestResolveFontSizeSteps(t *testing.T) {
	c := &recorder{}
	for _, z := range []themes.Zone{
		nameZone(), // 96-40 is not a whole number of steps
		func() themes.Zone { z := nameZone(); z.MinFontSize = 36; return z }(),
		func() themes.Zone { z := nameZone(); z.FontSize = 73; z.MinFontSize = 12; return z }(),
	} {
		for n := 1; n <= 60; n++ {
			text := strings.Repeat("W", n)
			got := ResolveFontSize(c, text, z)

			if got < z.MinFontSize {
				t.Fatalf("%v/%v len %d: size %v below min", z.FontSize, z.MinFontSize, n, got)
			}
			steps := (z.FontSize - got) / FontStep
			if steps != math.Trunc(steps) {
				t.Fatalf("%v/%v len %d: size %v not reachable in %v px steps", z.FontSize, z.MinFontSize, n, got, FontStep)
			}
			if got-FontStep >= z.MinFontSize && MeasureWidth(c, text, 0) > z.MaxWidth {
				t.Fatalf("%v/%v len %d: stopped at %v while still overflowing", z.FontSize, z.MinFontSize, n, got)
			}
			if c.size != got {
				t.Fatalf("%v/%v len %d: canvas left at %v, want %v", z.FontSize, z.MinFontSize, n, c.size, got)
			}
		}
	}
}

func TestResolveFontSizeOverflowStopsAboveMin(t *testing.T) {
	c := &recorder{}
	text := strings.Repeat("W", 60) // 60*20 = 1200 > 560 even at min

	// 96 - 11*5 = 41 is the smallest reachable size not below 40.
	if got := ResolveFontSize(c, text, nameZone()); got != 41 {
		t.Errorf("size = %v, want 41", got)
	}

	z := nameZone()
	z.MinFontSize = 36
	if got := ResolveFontSize(c, text, z); got != 36 {
		t.Errorf("size = %v, want min 36", got)
	}
}

func TestResolveFontSizeIncludesLetterSpacing(t *testing.T) {
	c := &recorder{}
	z := nameZone()
	z.MaxWidth = 500
	// 10 runes at 96px = 480 fits without spacing, 480+9*5 = 525 does not.
	if got := ResolveFontSize(c, "Maximilian", z); got != 96 {
		t.Fatalf("size without spacing = %v, want 96", got)
	}
	z.LetterSpacing = 5
	if got := ResolveFontSize(c, "Maximilian", z); got != 91 {
		t.Errorf("size with spacing = %v, want 91", got)
	}
}

func TestWrapLines(t *testing.T) {
	c := &recorder{size: 10} // 5px per rune
	text := "The Big Community Hall on Supercalifragilistic Street"
	maxWidth := 80.0

	lines := WrapLines(c, text, maxWidth)
	if strings.Join(lines, " ") != text {
		t.Fatalf("wrapped lines %q lose words", lines)
	}
	for _, l := range lines {
		if c.MeasureString(l) > maxWidth && strings.Contains(l, " ") {
			t.Errorf("line %q is %v wide, over %v", l, c.MeasureString(l), maxWidth)
		}
	}
	want := []string{"The Big", "Community Hall", "on", "Supercalifragilistic", "Street"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("WrapLines = %q, want %q", lines, want)
	}
}

func TestWrapLinesEmpty(t *testing.T) {
	if lines := WrapLines(&recorder{size: 10}, "   ", 50); len(lines) != 0 {
		t.Errorf("WrapLines(blank) = %q, want none", lines)
	}
}

func TestDrawStrokeBeforeFill(t *testing.T) {
	c := &recorder{}
	z := nameZone()
	z.LetterSpacing = 3

	Draw(c, z, "Max")

	lastStroke, firstFill := -1, len(c.ops)
	for i, o := range c.ops {
		switch o.kind {
		case "stroke":
			lastStroke = i
		case "fill":
			if i < firstFill {
				firstFill = i
			}
		}
	}
	if lastStroke == -1 {
		t.Fatal("expected stroke draws")
	}
	if lastStroke > firstFill {
		t.Errorf("stroke at op %d drawn after fill at op %d", lastStroke, firstFill)
	}
	for _, o := range c.draws("fill") {
		if o.color != themes.MustColor(z.Color) {
			t.Errorf("fill color = %v, want %v", o.color, z.Color)
		}
	}
	for _, o := range c.draws("stroke") {
		if o.color != themes.MustColor(z.StrokeColor) {
			t.Errorf("stroke color = %v, want %v", o.color, z.StrokeColor)
		}
	}
}

func TestDrawRestoresState(t *testing.T) {
	c := &recorder{}
	z := nameZone()
	z.Rotation = -6

	Draw(c, z, "Max")

	if c.depth != 0 {
		t.Fatalf("unbalanced push/pop, depth %d", c.depth)
	}
	if c.ops[0].kind != "push" || c.ops[len(c.ops)-1].kind != "pop" {
		t.Fatalf("ops should be wrapped in push/pop: first %q last %q", c.ops[0].kind, c.ops[len(c.ops)-1].kind)
	}
	if tr := c.ops[1]; tr.kind != "translate" || tr.x != z.X || tr.y != z.Y {
		t.Errorf("expected translate to anchor, got %+v", tr)
	}
	if rot := c.ops[2]; rot.kind != "rotate" || math.Abs(rot.x-(-6*math.Pi/180)) > 1e-12 {
		t.Errorf("expected rotate by -6deg, got %+v", rot)
	}
}

func TestDrawNoRotateWhenZero(t *testing.T) {
	c := &recorder{}
	Draw(c, nameZone(), "Max")
	if len(c.draws("rotate")) != 0 {
		t.Error("rotate should not be called for 0 degrees")
	}
}

func TestDrawAlignment(t *testing.T) {
	tests := []struct {
		align string
		want  float64
	}{
		{themes.AlignLeft, 0},
		{themes.AlignCenter, -72}, // 3 runes * 48px = 144
		{themes.AlignRight, -144},
	}
	for _, tt := range tests {
		c := &recorder{}
		z := nameZone()
		z.Align = tt.align
		z.StrokeWidth = 0

		layout := Draw(c, z, "Max")

		fills := c.draws("fill")
		if len(fills) != 1 {
			t.Fatalf("%s: expected a single fill, got %d", tt.align, len(fills))
		}
		if fills[0].x != tt.want || fills[0].y != 0 {
			t.Errorf("%s: fill at (%v,%v), want (%v,0)", tt.align, fills[0].x, fills[0].y, tt.want)
		}
		if layout.Width != 144 {
			t.Errorf("%s: width = %v, want 144", tt.align, layout.Width)
		}
	}
}

func TestDrawLetterSpacingPlacesGlyphs(t *testing.T) {
	c := &recorder{}
	z := nameZone()
	z.StrokeWidth = 0
	z.LetterSpacing = 10
	z.Align = themes.AlignCenter

	Draw(c, z, "MAX")

	// 3*48 + 2*10 = 164 wide, starting at -82.
	fills := c.draws("fill")
	want := []float64{-82, -24, 34}
	if len(fills) != len(want) {
		t.Fatalf("expected %d glyph draws, got %d", len(want), len(fills))
	}
	for i, o := range fills {
		if utf8.RuneCountInString(o.text) != 1 {
			t.Errorf("glyph draw %d has text %q", i, o.text)
		}
		if o.x != want[i] {
			t.Errorf("glyph %d at x=%v, want %v", i, o.x, want[i])
		}
	}
}

func TestDrawScalesStroke(t *testing.T) {
	c := &recorder{}
	z := nameZone()
	text := strings.Repeat("a", 15) // 15*48=720 > 560, shrinks

	layout := Draw(c, z, text)

	if layout.FontSize >= z.FontSize {
		t.Fatalf("expected shrink, got %v", layout.FontSize)
	}
	want := z.StrokeWidth * layout.FontSize / z.FontSize
	if math.Abs(layout.StrokeWidth-want) > 1e-9 {
		t.Errorf("stroke width = %v, want %v", layout.StrokeWidth, want)
	}
	for _, o := range c.draws("stroke") {
		if o.width != layout.StrokeWidth || o.size != layout.FontSize {
			t.Errorf("stroke op %+v does not use scaled values", o)
		}
	}
}

func TestDrawMultilineCentersBlock(t *testing.T) {
	c := &recorder{}
	z := themes.Zone{
		ID: "venue", X: 424, Y: 1000, FontSize: 10,
		Color: "#000000", Align: themes.AlignLeft,
		MaxWidth: 80, Multiline: true, LineHeight: 2,
	}

	layout := Draw(c, z, "The Big Community Hall")

	if want := []string{"The Big", "Community Hall"}; !reflect.DeepEqual(layout.Lines, want) {
		t.Fatalf("lines = %q, want %q", layout.Lines, want)
	}
	fills := c.draws("fill")
	if len(fills) != 2 {
		t.Fatalf("expected 2 fills, got %d", len(fills))
	}
	// Two 20px lines centred on the anchor: middles at -10 and +10.
	if fills[0].y != -10 || fills[1].y != 10 {
		t.Errorf("line middles = %v, %v; want -10, 10", fills[0].y, fills[1].y)
	}
}

func TestDrawAppliesTransform(t *testing.T) {
	c := &recorder{}
	z := nameZone()
	z.TextTransform = themes.TransformUppercase
	z.StrokeWidth = 0

	layout := Draw(c, z, "max")

	if layout.Lines[0] != "MAX" || c.draws("fill")[0].text != "MAX" {
		t.Errorf("expected uppercase draw, got %q", layout.Lines)
	}
}
