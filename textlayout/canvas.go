// Package textlayout turns a text zone and a string into drawing calls on a
// Canvas: auto-scaling, word wrap, letter spacing, stroke and rotation.
package textlayout

import "image/color"

// Canvas is the 2D surface the layout engine draws on. Coordinates passed to
// FillString and StrokeString name the left edge and the vertical middle of
// the text.
type Canvas interface {
	SetFont(family, weight string, size float64)
	MeasureString(s string) float64
	SetColor(c color.Color)
	FillString(s string, x, y float64)
	StrokeString(s string, x, y, width float64)

	Push()
	Pop()
	Translate(x, y float64)
	Rotate(radians float64)
}
