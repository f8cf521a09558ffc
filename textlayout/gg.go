package textlayout

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/eringen/inviteengine/fonts"
)

type faceKey struct {
	family, weight string
	size           float64
}

// GGCanvas draws on a gg.Context. It caches faces per font and size, so one
// GGCanvas must not be used from more than one goroutine.
type GGCanvas struct {
	dc    *gg.Context
	fonts *fonts.Registry
	faces map[faceKey]font.Face
}

// NewGGCanvas wraps dc, resolving fonts through reg.
func NewGGCanvas(dc *gg.Context, reg *fonts.Registry) *GGCanvas {
	return &GGCanvas{dc: dc, fonts: reg, faces: make(map[faceKey]font.Face)}
}

func (c *GGCanvas) SetFont(family, weight string, size float64) {
	k := faceKey{family, weight, size}
	f, ok := c.faces[k]
	if !ok {
		f = c.fonts.Face(family, weight, size)
		c.faces[k] = f
	}
	c.dc.SetFontFace(f)
}

func (c *GGCanvas) MeasureString(s string) float64 {
	w, _ := c.dc.MeasureString(s)
	return w
}

func (c *GGCanvas) SetColor(col color.Color) { c.dc.SetColor(col) }

func (c *GGCanvas) FillString(s string, x, y float64) {
	c.dc.DrawStringAnchored(s, x, y, 0, 0.5)
}

// StrokeString outlines s by redrawing it at every integer offset inside a
// disc of radius width/2. gg has no text stroking of its own.
func (c *GGCanvas) StrokeString(s string, x, y, width float64) {
	r := width / 2
	if r <= 0 {
		return
	}
	n := int(math.Ceil(r))
	for dy := -n; dy <= n; dy++ {
		for dx := -n; dx <= n; dx++ {
			if float64(dx*dx+dy*dy) > r*r {
				continue
			}
			c.dc.DrawStringAnchored(s, x+float64(dx), y+float64(dy), 0, 0.5)
		}
	}
}

func (c *GGCanvas) Push()                  { c.dc.Push() }
func (c *GGCanvas) Pop()                   { c.dc.Pop() }
func (c *GGCanvas) Translate(x, y float64) { c.dc.Translate(x, y) }
func (c *GGCanvas) Rotate(radians float64) { c.dc.Rotate(radians) }
