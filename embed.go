package inviteengine

import (
	"embed"
	"io/fs"
)

// EmbeddedAssets contains the theme backgrounds and any bundled fonts:
// backgrounds/*.png, fonts/*.ttf
//
//go:embed all:assets
var EmbeddedAssets embed.FS

// DefaultAssets returns the embedded assets rooted so that theme paths like
// "backgrounds/superhero.png" resolve directly.
func DefaultAssets() fs.FS {
	sub, err := fs.Sub(EmbeddedAssets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}
