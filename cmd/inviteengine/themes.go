package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"text/tabwriter"

	"github.com/eringen/inviteengine"
	"github.com/eringen/inviteengine/compositor"
)

// runThemes lists every theme and checks that its background decodes.
func runThemes(args []string) error {
	var themesFile, assetsDir string

	fset := flag.NewFlagSet("themes", flag.ExitOnError)
	fset.StringVar(&themesFile, "file", "", "theme JSON file (default built-in themes)")
	fset.StringVar(&assetsDir, "assets", "", "asset directory (default embedded assets)")
	fset.Parse(args)

	reg, err := inviteengine.LoadThemes(themesFile)
	if err != nil {
		return err
	}
	bg := compositor.NewBackgroundCache(assetsFS(assetsDir), 0)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tNAME\tSIZE\tZONES\tBACKGROUND")

	var errs []error
	for _, key := range reg.Keys() {
		t, err := reg.Get(key)
		if err != nil {
			return err
		}
		status := "ok"
		var img image.Image
		if img, err = bg.Load(t.Background); err != nil {
			status = "unreadable"
			var ble *compositor.BackgroundLoadError
			if errors.As(err, &ble) && ble.NotFound() {
				status = "missing"
			}
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		} else if b := img.Bounds(); b.Dx() != t.Width || b.Dy() != t.Height {
			status = fmt.Sprintf("ok (%dx%d)", b.Dx(), b.Dy())
		}
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%d\t%s\n", key, t.Name, t.Width, t.Height, len(t.Zones), status)
	}
	w.Flush()
	return errors.Join(errs...)
}
