package ebitenhost

import (
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/phanxgames/punkrun"
)

// reportTicks is how often the measured frame rates are logged.
const reportTicks = 300

// rateReporter logs Ebitengine's measured FPS and TPS with run progress.
type rateReporter struct {
	log *zap.Logger
	age int
}

func (r *rateReporter) update(g *punkrun.Game) {
	r.age++
	if r.age < reportTicks {
		return
	}
	r.age = 0
	r.log.Debug("frame rate", rateFields(ebiten.ActualFPS(), ebiten.ActualTPS(), g)...)
}

func rateFields(fps, tps float64, g *punkrun.Game) []zap.Field {
	return []zap.Field{
		zap.Float64("fps", fps),
		zap.Float64("tps", tps),
		zap.Stringer("mode", g.Mode()),
		zap.Int32("distance", g.Stats().Distance),
	}
}
