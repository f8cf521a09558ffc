package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eringen/inviteengine"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe(args)
	case "render":
		err = runRender(args)
	case "themes":
		err = runThemes(args)
	case "version":
		fmt.Printf("inviteengine %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(args []string) error {
	cfg := inviteengine.ConfigFromEnv()

	fset := flag.NewFlagSet("serve", flag.ExitOnError)
	fset.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fset.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel, "log level (debug, info, warn, error)")
	fset.Parse(args)

	if err := inviteengine.SetupLogging(cfg.LogLevel); err != nil {
		return err
	}

	app := inviteengine.New(cfg)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	if app.Config.AdminEnabled() {
		logrus.WithField("url", inviteengine.BuildURL(app.Config.URL, "admin")).Info("Admin dashboard enabled")
	}

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

func printUsage() {
	fmt.Println(`inviteengine - Party invite image engine built with Go, Echo, and templ

Usage:
  inviteengine <command> [arguments]

Commands:
  serve         Run the HTTP server (default)
  render        Render one invite to a PNG file
  themes        List and validate themes
  version       Print the inviteengine version
  help          Show this help message

Examples:
  inviteengine serve -addr :8080 -loglevel debug
  inviteengine render -theme superhero -name Max -age 7 -date 2028-06-20 -time 2pm-4pm -venue "Community Hall"
  inviteengine themes -file my-themes.json`)
}
