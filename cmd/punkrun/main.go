// Command punkrun runs the side-scrolling runner in a window, in the
// terminal, or headless for scripted captures.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/phanxgames/punkrun"
	"github.com/phanxgames/punkrun/ebitenhost"
	"github.com/phanxgames/punkrun/termhost"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	config    string
	host      string
	layout    string
	script    string
	ticks     int
	generated bool
	debug     bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.config, "config", "punkrun.toml", "Path to the TOML config file")
	flag.StringVar(&f.host, "host", "ebiten", "Host to run in: ebiten, term or headless")
	flag.StringVar(&f.layout, "layout", "", "Path to a YAML blob layout overriding the built-in one")
	flag.StringVar(&f.script, "script", "", "JSON input script to replay (headless)")
	flag.IntVar(&f.ticks, "ticks", 600, "Maximum ticks to run (headless)")
	flag.BoolVar(&f.generated, "generated", false, "Use a generated asset blob instead of reading one")
	flag.BoolVar(&f.debug, "debug", false, "Enable fatal assertions and per-tick stats")
	flag.Parse()
	if p := os.Getenv("PUNKRUN_CONFIG"); p != "" && !isFlagSet("config") {
		f.config = p
	}
	return f
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			set = true
		}
	})
	return set
}

func run() error {
	f := parseFlags()

	cfg, err := loadConfig(f.config)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if f.debug {
		cfg.Engine.Debug = true
	}

	log, err := punkrun.NewLogger(cfg.Logging)
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	defer log.Sync()

	layout := punkrun.DefaultLayout()
	if f.layout != "" {
		data, err := os.ReadFile(f.layout)
		if err != nil {
			return errors.Wrap(err, "read layout")
		}
		if layout, err = punkrun.ParseLayout(data); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	primary, fallback := assetRefs(cfg.Assets, layout, f.generated, cfg.Engine.Seed)
	g, err := punkrun.NewGame(punkrun.Options{
		Config:   cfg,
		Logger:   log,
		Layout:   layout,
		Primary:  primary,
		Fallback: fallback,
		Context:  ctx,
	})
	if err != nil {
		return err
	}
	defer g.Close()

	log.Info("starting", zap.String("host", f.host), zap.Int("tps", cfg.Engine.TPS))
	switch f.host {
	case "ebiten":
		err = ebitenhost.Run(g, log)
	case "term":
		err = termhost.Run(ctx, g, log)
	case "headless":
		err = runHeadless(ctx, g, f)
	default:
		return errors.Errorf("unknown host %q", f.host)
	}
	if err != nil {
		return err
	}
	if g.Mode() == punkrun.ModeError {
		return g.Err()
	}
	stats := g.Stats()
	log.Info("finished",
		zap.Uint64("ticks", uint64(g.Tick())),
		zap.Int32("distance", stats.Distance),
		zap.Int("hits", stats.Hits),
		zap.Int("jumps", stats.Jumps),
	)
	return nil
}

// loadConfig reads path, falling back to the defaults when it does not
// exist.
func loadConfig(path string) (punkrun.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return punkrun.DefaultConfig(), nil
	}
	return punkrun.LoadConfig(path)
}

// assetRefs builds the primary and fallback asset locations.
func assetRefs(cfg punkrun.AssetsConfig, layout *punkrun.Layout, generated bool, seed uint64) (primary, fallback punkrun.AssetRef) {
	if generated {
		blob := punkrun.GenerateBlob(layout, seed)
		return punkrun.AssetRef{Source: punkrun.MemorySource{cfg.Path: blob}, Path: cfg.Path}, punkrun.AssetRef{}
	}
	primary = punkrun.AssetRef{Source: punkrun.FileSource{Root: cfg.Dir}, Path: cfg.Path}
	if cfg.FallbackURL != "" {
		fallback = punkrun.AssetRef{Source: punkrun.HTTPSource{BaseURL: cfg.FallbackURL}, Path: cfg.Path}
	}
	return primary, fallback
}

func runHeadless(ctx context.Context, g *punkrun.Game, f flags) error {
	var src punkrun.InputSource
	if f.script != "" {
		data, err := os.ReadFile(f.script)
		if err != nil {
			return errors.Wrap(err, "read script")
		}
		script, err := punkrun.LoadInputScript(data, g)
		if err != nil {
			return err
		}
		src = script
	}
	return punkrun.RunHeadless(ctx, g, f.ticks, src, nil)
}
