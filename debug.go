package punkrun

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// defaultDebug is the debug flag that arenas, queues, cameras and asset
// stores start with when created outside a Game.
var defaultDebug bool

// SetDebugMode sets the debug flag for engine objects created afterwards
// outside a Game. A Game takes its flag from EngineConfig.Debug and hands it
// to everything it creates, so games with different settings do not
// interfere. With debug on, invariant violations (capacity overflow,
// malformed asset dimensions, camera desync) panic instead of being
// ignored, and a Game logs per-tick timing stats.
func SetDebugMode(enabled bool) {
	defaultDebug = enabled
}

// DebugMode reports the flag SetDebugMode last set.
func DebugMode() bool {
	return defaultDebug
}

// debugFlag is carried by every engine object that checks invariants.
type debugFlag bool

// assert panics with a descriptive message when cond is false and the flag
// is on. In release mode violations are ignored and the caller continues
// with its fallback behavior.
func (d debugFlag) assert(cond bool, format string, args ...any) {
	if cond || !bool(d) {
		return
	}
	panic(fmt.Sprintf("punkrun debug: "+format, args...))
}

// debugStats holds per-tick timing and queue metrics.
// Only reported when the game's debug flag is on.
type debugStats struct {
	updateTime   time.Duration
	drawTime     time.Duration
	loadTime     time.Duration
	commandCount int
	loadCount    int
}

// debugLog reports tick stats at debug level.
func (g *Game) debugLog(stats debugStats) {
	if !g.debug {
		return
	}
	total := stats.updateTime + stats.drawTime + stats.loadTime
	g.log.Debug("tick",
		zap.Uint64("tick", uint64(g.tick)),
		zap.Duration("update", stats.updateTime),
		zap.Duration("draw", stats.drawTime),
		zap.Duration("load", stats.loadTime),
		zap.Duration("total", total),
		zap.Int("commands", stats.commandCount),
		zap.Int("decodes", stats.loadCount),
	)
}
