package punkrun

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config holds every tunable of a run. LoadConfig overlays a TOML file on
// DefaultConfig, so a file only needs the keys it changes.
type Config struct {
	Window     WindowConfig     `toml:"window"`
	Engine     EngineConfig     `toml:"engine"`
	Background BackgroundConfig `toml:"background"`
	Sky        SkyConfig        `toml:"sky"`
	Runner     RunnerConfig     `toml:"runner"`
	Assets     AssetsConfig     `toml:"assets"`
	Logging    LoggingConfig    `toml:"logging"`
}

// WindowConfig sizes and titles the desktop window.
type WindowConfig struct {
	Title string `toml:"title"`
	Scale int    `toml:"scale"` // integer upscale of the device framebuffer
}

// EngineConfig fixes the tick rate, the view and the capacity of every
// arena-backed table.
type EngineConfig struct {
	TPS         int    `toml:"tps"`          // ticks per second
	Seed        uint64 `toml:"seed"`         // RNG seed; 0 picks the default
	Debug       bool   `toml:"debug"`        // fatal assertions and tick stats
	ViewWidth   int32  `toml:"view_width"`   // device pixels along the scroll axis
	ViewHeight  int32  `toml:"view_height"`  // device pixels across it
	SceneWidth  int32  `toml:"scene_width"`  // scrollable distance
	Tiles       int    `toml:"tiles"`        // tile table capacity
	Sprites     int    `toml:"sprites"`      // sprite table capacity
	DrawQueue   int    `toml:"draw_queue"`   // draw commands per tick
	RandomRing  int    `toml:"random_ring"`  // pre-generated random values
	ArenaLimit  int    `toml:"arena_limit"`  // bytes; 0 is unlimited
	ObjectTable int    `toml:"object_table"` // event log capacity
}

// BackgroundConfig lists the parallax layers, far to near.
type BackgroundConfig struct {
	Layers []LayerConfig `toml:"layers"`
}

// LayerConfig names a background layer and its parallax speed in 1/256ths
// of the camera speed.
type LayerConfig struct {
	Name  string `toml:"name"`
	Speed uint32 `toml:"speed"`
}

// SkyConfig times the cloud crossfade and sets its drift.
type SkyConfig struct {
	SwapTicks uint32  `toml:"swap_ticks"`
	FadeTicks uint32  `toml:"fade_ticks"`
	Opacity   uint8   `toml:"opacity"`
	VelocityX float32 `toml:"velocity_x"`
	VelocityY float32 `toml:"velocity_y"`
}

// RunnerConfig tunes runner physics and obstacle spacing.
type RunnerConfig struct {
	RunSpeed     float32 `toml:"run_speed"`     // scene pixels per tick
	Gravity      float32 `toml:"gravity"`       // pixels per tick squared
	JumpVelocity float32 `toml:"jump_velocity"` // initial upward speed
	Ground       int32   `toml:"ground"`        // scene y of the running surface
	GapMin       int32   `toml:"gap_min"`       // obstacle spacing
	GapMax       int32   `toml:"gap_max"`
	ObstacleTTL  uint32  `toml:"obstacle_ttl"` // ticks before an obstacle is retired
}

// AssetsConfig locates the asset blob and its HTTP fallback.
type AssetsConfig struct {
	Dir         string `toml:"dir"`
	Path        string `toml:"path"`
	FallbackURL string `toml:"fallback_url"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Title: "punkrun",
			Scale: 3,
		},
		Engine: EngineConfig{
			TPS:         60,
			Seed:        1,
			ViewWidth:   320,
			ViewHeight:  180,
			SceneWidth:  1 << 30,
			Tiles:       64,
			Sprites:     8,
			DrawQueue:   128,
			RandomRing:  DefaultRandomRingSize,
			ArenaLimit:  64 << 20,
			ObjectTable: 256,
		},
		Background: BackgroundConfig{
			Layers: []LayerConfig{
				{Name: "far", Speed: 96},
				{Name: "near", Speed: 192},
			},
		},
		Sky: SkyConfig{
			SwapTicks: 600,
			FadeTicks: 90,
			Opacity:   200,
			VelocityX: 0.25,
			VelocityY: 0.4,
		},
		Runner: RunnerConfig{
			RunSpeed:     2,
			Gravity:      0.35,
			JumpVelocity: 6,
			Ground:       150,
			GapMin:       90,
			GapMax:       220,
			ObstacleTTL:  600,
		},
		Assets: AssetsConfig{
			Dir:  "assets",
			Path: "punkrun.bin",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig reads path and overlays it on DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	e := c.Engine
	switch {
	case e.TPS <= 0:
		return errors.Wrapf(ErrConfig, "engine.tps must be positive, got %d", e.TPS)
	case e.ViewWidth <= 0 || e.ViewHeight <= 0:
		return errors.Wrapf(ErrConfig, "engine view %dx%d is empty", e.ViewWidth, e.ViewHeight)
	case e.SceneWidth < e.ViewWidth:
		return errors.Wrapf(ErrConfig, "engine.scene_width %d is narrower than the view", e.SceneWidth)
	case e.Tiles <= 0 || e.Sprites <= 0 || e.DrawQueue <= 0 || e.ObjectTable <= 0:
		return errors.Wrap(ErrConfig, "engine capacities must be positive")
	case e.ArenaLimit < 0:
		return errors.Wrapf(ErrConfig, "engine.arena_limit %d is negative", e.ArenaLimit)
	}
	if len(c.Background.Layers) == 0 {
		return errors.Wrap(ErrConfig, "background needs at least one layer")
	}
	seen := make(map[string]bool, len(c.Background.Layers))
	for _, l := range c.Background.Layers {
		if l.Name == "" {
			return errors.Wrap(ErrConfig, "background layer has no name")
		}
		if seen[l.Name] {
			return errors.Wrapf(ErrConfig, "background layer %q listed twice", l.Name)
		}
		seen[l.Name] = true
	}
	r := c.Runner
	if r.GapMin <= 0 || r.GapMax < r.GapMin {
		return errors.Wrapf(ErrConfig, "runner gap range [%d, %d] is invalid", r.GapMin, r.GapMax)
	}
	if r.Ground <= 0 || r.Ground > e.ViewHeight {
		return errors.Wrapf(ErrConfig, "runner.ground %d is outside the view", r.Ground)
	}
	return nil
}
