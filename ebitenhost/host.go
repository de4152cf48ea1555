// Package ebitenhost runs a punkrun Game in an Ebitengine window.
//
// The host reads the keyboard and the first standard gamepad into a
// punkrun.InputSnapshot, calls Game.Update once per Ebitengine tick and
// uploads the framebuffer, transposed to device orientation, to the screen.
package ebitenhost

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/phanxgames/punkrun"
)

// Host adapts a punkrun.Game to ebiten.Game.
type Host struct {
	game  *punkrun.Game
	log   *zap.Logger
	frame *ebiten.Image
	pix   []byte
	w, h  int
	rates *rateReporter
}

// New creates a host for g. A nil logger disables logging.
func New(g *punkrun.Game, log *zap.Logger) *Host {
	if log == nil {
		log = zap.NewNop()
	}
	w, h := g.DeviceSize()
	host := &Host{game: g, log: log, pix: make([]byte, 4*w*h), w: w, h: h}
	if g.Config().Engine.Debug {
		host.rates = &rateReporter{log: log}
	}
	return host
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	h.game.Update(Snapshot())
	if h.game.Command().Quit {
		h.log.Info("quit requested", zap.Uint64("tick", uint64(h.game.Tick())))
		return ebiten.Termination
	}
	if h.rates != nil {
		h.rates.update(h.game)
	}
	return nil
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	if h.frame == nil {
		h.frame = ebiten.NewImage(h.w, h.h)
	}
	h.game.Framebuffer().DeviceRGBA(h.pix)
	h.frame.WritePixels(h.pix)
	screen.DrawImage(h.frame, nil)
}

// Layout implements ebiten.Game. The logical screen is always the device
// framebuffer; Ebitengine scales it to the window.
func (h *Host) Layout(_, _ int) (int, int) {
	return h.w, h.h
}

// Run opens a window sized from cfg and blocks until the game quits or the
// window closes.
func Run(g *punkrun.Game, log *zap.Logger) error {
	cfg := g.Config()
	w, hgt := g.DeviceSize()
	scale := max(cfg.Window.Scale, 1)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowSize(w*scale, hgt*scale)
	ebiten.SetTPS(cfg.Engine.TPS)
	if err := ebiten.RunGame(New(g, log)); err != nil {
		return errors.Wrap(err, "ebiten")
	}
	return nil
}
