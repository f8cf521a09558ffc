package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/eringen/inviteengine"
	"github.com/eringen/inviteengine/compositor"
	"github.com/eringen/inviteengine/fonts"
)

func runRender(args []string) error {
	var req inviteengine.InviteRequest
	var age, out, themesFile, assetsDir, logLevel string

	fset := flag.NewFlagSet("render", flag.ExitOnError)
	fset.StringVar(&req.Theme, "theme", "", "theme key")
	fset.StringVar(&req.ChildName, "name", "", "child's name")
	fset.StringVar(&age, "age", "", "age the child is turning")
	fset.StringVar(&req.Date, "date", "", "party date, YYYY-MM-DD or free text")
	fset.StringVar(&req.Time, "time", "", "party time")
	fset.StringVar(&req.Venue, "venue", "", "venue")
	fset.StringVar(&out, "o", "", "output file (default <name>-<theme>.png)")
	fset.StringVar(&themesFile, "themes", "", "theme JSON file (default built-in themes)")
	fset.StringVar(&assetsDir, "assets", "", "asset directory (default embedded assets)")
	fset.StringVar(&logLevel, "loglevel", "warn", "log level")
	fset.Parse(args)

	if err := inviteengine.SetupLogging(logLevel); err != nil {
		return err
	}

	req.Age = inviteengine.FlexString(age)
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}

	reg, err := inviteengine.LoadThemes(themesFile)
	if err != nil {
		return err
	}
	assets := assetsFS(assetsDir)
	c := compositor.New(reg, fonts.Initialize(assets, reg.Fonts()), compositor.NewBackgroundCache(assets, 0))

	res, err := c.Render(compositor.Request{Theme: req.Theme, Fields: req.Fields()})
	if err != nil {
		return err
	}
	data, err := res.PNG()
	if err != nil {
		return err
	}
	if out == "" {
		out = inviteengine.Slugify(req.ChildName+" "+req.Theme) + ".png"
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}

	for _, z := range res.Zones {
		logrus.WithFields(logrus.Fields{
			"zone":     z.ZoneID,
			"fontSize": z.FontSize,
			"lines":    len(z.Lines),
		}).Debug("Zone laid out")
	}
	fmt.Printf("%s (%dx%d)\n", out, res.Width, res.Height)
	return nil
}

func assetsFS(dir string) fs.FS {
	if dir == "" {
		return inviteengine.DefaultAssets()
	}
	return os.DirFS(dir)
}
