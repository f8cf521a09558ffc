// Package compositor renders invite images: a theme background with every
// text zone of the theme drawn on top.
package compositor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/eringen/inviteengine/fonts"
	"github.com/eringen/inviteengine/textlayout"
	"github.com/eringen/inviteengine/themes"
)

// Request names a theme and the field values keyed by zone ID.
type Request struct {
	Theme  string
	Fields map[string]string
}

// Result is a finished invite image.
type Result struct {
	Theme       string
	Image       image.Image
	Width       int
	Height      int
	Zones       []textlayout.Layout
	GeneratedAt time.Time
}

// Compositor is safe for concurrent use: every Render allocates its own
// canvas and font faces.
type Compositor struct {
	themes      *themes.Registry
	fonts       *fonts.Registry
	backgrounds BackgroundSource
	now         func() time.Time
}

// New creates a Compositor.
func New(reg *themes.Registry, fontReg *fonts.Registry, bg BackgroundSource) *Compositor {
	return &Compositor{themes: reg, fonts: fontReg, backgrounds: bg, now: time.Now}
}

// Render draws req. It returns a *themes.UnknownTemplateError for an unknown
// theme and a *BackgroundLoadError when the background cannot be loaded.
func (c *Compositor) Render(req Request) (res *Result, err error) {
	tmpl, err := c.themes.Get(req.Theme)
	if err != nil {
		return nil, err
	}
	bg, err := c.backgrounds.Load(tmpl.Background)
	if err != nil {
		var ble *BackgroundLoadError
		if !errors.As(err, &ble) {
			err = &BackgroundLoadError{Path: tmpl.Background, Err: err}
		}
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("compositor: render %q: %v", req.Theme, r)
		}
	}()

	b := bg.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		w, h = tmpl.Width, tmpl.Height
	}

	dc := gg.NewContext(w, h)
	dc.DrawImage(bg, -b.Min.X, -b.Min.Y)

	canvas := textlayout.NewGGCanvas(dc, c.fonts)
	var zones []textlayout.Layout
	for _, z := range tmpl.Zones {
		text, ok := textlayout.ResolveText(z, req.Fields)
		if !ok {
			continue
		}
		zones = append(zones, textlayout.Draw(canvas, z, text))
	}

	return &Result{
		Theme:       tmpl.Key,
		Image:       dc.Image(),
		Width:       w,
		Height:      h,
		Zones:       zones,
		GeneratedAt: c.now().UTC(),
	}, nil
}

// Zone returns the layout recorded for zone id.
func (r *Result) Zone(id string) (textlayout.Layout, bool) {
	for _, z := range r.Zones {
		if z.ZoneID == id {
			return z, true
		}
	}
	return textlayout.Layout{}, false
}

// PNG encodes the image as PNG.
func (r *Result) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.Image); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// JPEG encodes the image as JPEG at quality.
func (r *Result) JPEG(quality int) ([]byte, error) {
	return encodeJPEG(r.Image, quality)
}

// Preview encodes a JPEG of the image scaled down to width.
func (r *Result) Preview(width, quality int) ([]byte, error) {
	return encodeJPEG(Thumbnail(r.Image, width), quality)
}

// Thumbnail scales img down to width, keeping the aspect ratio. Images
// already narrower than width are returned unchanged.
func Thumbnail(img image.Image, width int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if width <= 0 || w <= width {
		return img
	}
	newH := h * width / w
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
