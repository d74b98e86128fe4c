package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/MikeSquared-Agency/Pow2/internal/engine"
	"github.com/MikeSquared-Agency/Pow2/internal/factors/catalog"
	"github.com/MikeSquared-Agency/Pow2/internal/season"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "pow2ctl",
		Usage:   "Inspect seasons and compute cpu from local season files",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "seasons-dir",
				Aliases: []string{"d"},
				Value:   "resource/config",
				Usage:   "Directory holding <category>/<season>.yaml documents",
				EnvVars: []string{"POW2_SEASONS_DIR"},
			},
			&cli.IntFlag{
				Name:    "tz-hours",
				Value:   catalog.DefaultTZHours,
				Usage:   "UTC offset for zone-less season timestamps",
				EnvVars: []string{"POW2_DEFAULT_TZ_HOURS"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text or json",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("no-color") {
				color.NoColor = true
			}
			return nil
		},
		Commands: []*cli.Command{
			factorsCmd(),
			seasonCmd(),
			validateCmd(),
			calcCmd(),
		},
	}
}

// env bundles what every command builds from the global flags.
type env struct {
	loader *season.Loader
	engine *engine.Engine
	out    io.Writer
	json   bool
}

func newEnv(c *cli.Context) *env {
	registry := catalog.NewRegistry()
	loader := season.NewLoader(
		season.DirSource{Dir: c.String("seasons-dir")},
		season.NewParser(registry, c.Int("tz-hours")),
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &env{
		loader: loader,
		engine: engine.New(loader, registry, nil, engine.Options{}, logger),
		out:    c.App.Writer,
		json:   c.String("format") == "json",
	}
}

func requireArg(c *cli.Context, name string) (string, error) {
	if c.Args().Len() < 1 {
		return "", fmt.Errorf("%s is required", name)
	}
	return c.Args().First(), nil
}
