// Package main provides the entry point for the lantern server. It serves the static
// document root together with the example resources over HTTP and, optionally, HTTPS.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/indigo-web/lantern"
	"github.com/indigo-web/lantern/config"
	"github.com/indigo-web/lantern/resources"
	"github.com/indigo-web/lantern/router/inbuilt"
	"github.com/indigo-web/lantern/router/inbuilt/middleware"
	"github.com/indigo-web/lantern/static"
	"github.com/urfave/cli/v2"
)

// Build information, set via ldflags.
var version = "dev"

func main() {
	if err := app().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func app() *cli.App {
	return &cli.App{
		Name:    "lantern",
		Usage:   "serve a document root and example resources",
		Version: version,
		Flags:   flags(),
		Action:  run,
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Aliases: []string{"a"},
			Usage:   "plain HTTP address, empty disables it",
			EnvVars: []string{"LANTERN_ADDR"},
			Value:   ":8080",
		},
		&cli.StringFlag{
			Name:    "https",
			Usage:   "HTTPS address, empty disables it",
			EnvVars: []string{"LANTERN_HTTPS"},
		},
		&cli.StringFlag{
			Name:    "cert",
			Usage:   "certificate file; without it HTTPS obtains certificates automatically",
			EnvVars: []string{"LANTERN_CERT"},
		},
		&cli.StringFlag{
			Name:    "key",
			Usage:   "private key file",
			EnvVars: []string{"LANTERN_KEY"},
		},
		&cli.StringSliceFlag{
			Name:    "domain",
			Usage:   "domain to obtain a certificate for when HTTPS runs without --cert",
			EnvVars: []string{"LANTERN_DOMAINS"},
		},
		&cli.StringFlag{
			Name:    "root",
			Aliases: []string{"r"},
			Usage:   "document root, overrides static.root from the config",
			EnvVars: []string{"LANTERN_ROOT"},
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to a YAML config file",
			EnvVars: []string{"LANTERN_CONFIG"},
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "number of event loop workers, overrides loop.workers from the config",
			EnvVars: []string{"LANTERN_WORKERS"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "trace, debug, info, warn or error",
			EnvVars: []string{"LANTERN_LOG_LEVEL"},
		},
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"), config.EnvPrefix)
	if err != nil {
		return err
	}

	if c.IsSet("root") {
		cfg.Static.Root = c.String("root")
	}
	if c.IsSet("workers") {
		cfg.Loop.Workers = c.Int("workers")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "lantern",
		Level:      hclog.LevelFromString(cfg.Log.Level),
		JSONFormat: cfg.Log.JSON,
		Output:     os.Stderr,
	})

	app := lantern.New(c.String("addr")).
		Tune(cfg).
		Logger(logger).
		Housekeeping(func(err error) {
			if err != nil {
				logger.Info("housekeeping stopped")
			}
		})

	if addr := c.String("https"); addr != "" {
		if cert := c.String("cert"); cert != "" {
			app.HTTPS(addr, cert, c.String("key"))
		} else {
			app.AutoHTTPS(addr, c.StringSlice("domain")...)
		}
	}

	r := inbuilt.New().
		Use(middleware.Recover, middleware.LogRequests(logger.Named("access")))

	resources.Register(r, resources.WithMetrics(app.Metrics()))
	r.StaticIndex(cfg.Static.Root, cfg.Static.Index,
		static.WithLogger(logger.Named("static")),
		static.WithMetrics(app.Metrics()),
	)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		app.Stop()
	}()

	logger.Info("starting", "version", version, "root", cfg.Static.Root, "workers", cfg.Loop.Workers)

	return app.Serve(r)
}
