// Package termhost runs a punkrun Game inside a terminal using tcell.
//
// Each character cell shows two vertically stacked device pixels with the
// upper half block glyph: the foreground carries the top pixel and the
// background the bottom one. The framebuffer is sampled nearest-neighbour
// to whatever size the terminal reports.
package termhost

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/phanxgames/punkrun"
)

// halfBlock is the upper half block glyph.
const halfBlock = '▀'

// Host adapts a punkrun.Game to a tcell screen.
type Host struct {
	game   *punkrun.Game
	screen tcell.Screen
	log    *zap.Logger
	keys   keyState
	events chan tcell.Event
}

// New creates a host drawing g onto screen. screen must already be
// initialized. A nil logger disables logging.
func New(g *punkrun.Game, screen tcell.Screen, log *zap.Logger) *Host {
	if log == nil {
		log = zap.NewNop()
	}
	return &Host{game: g, screen: screen, log: log, events: make(chan tcell.Event, 64)}
}

// Run opens the terminal, runs g until it quits or ctx is done, and
// restores the terminal.
func Run(ctx context.Context, g *punkrun.Game, log *zap.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "tcell screen")
	}
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "tcell init")
	}
	defer screen.Fini()
	screen.HideCursor()
	return New(g, screen, log).Run(ctx)
}

// Run drives the game at its configured tick rate. Terminal events are
// collected on a separate goroutine and applied at the start of each tick.
func (h *Host) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go h.pollEvents(ctx)

	pacer := punkrun.NewPacer(h.game.Config().Engine.TPS)
	for {
	drain:
		for {
			select {
			case ev := <-h.events:
				h.HandleEvent(ev)
			default:
				break drain
			}
		}

		h.game.Update(h.Snapshot())
		if h.game.Command().Quit {
			h.log.Info("quit requested", zap.Uint64("tick", uint64(h.game.Tick())))
			return nil
		}
		h.Render()
		h.screen.Show()

		if err := pacer.Wait(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

func (h *Host) pollEvents(ctx context.Context) {
	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case h.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// HandleEvent applies one terminal event.
func (h *Host) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if b, pulse, ok := keyButton(ev); ok {
			h.keys.press(b, h.game.Tick(), pulse)
		}
	case *tcell.EventResize:
		h.screen.Sync()
	}
}

// Snapshot returns the buttons held for the coming tick.
func (h *Host) Snapshot() punkrun.InputSnapshot {
	return punkrun.InputSnapshot{Buttons: h.keys.buttons(h.game.Tick())}
}

// Render samples the framebuffer onto the whole screen.
func (h *Host) Render() {
	cols, rows := h.screen.Size()
	if cols <= 0 || rows <= 0 {
		return
	}
	fb := h.game.Framebuffer()
	w, hgt := h.game.DeviceSize()
	sub := rows * 2
	for cy := 0; cy < rows; cy++ {
		top := int32((2 * cy) * hgt / sub)
		bottom := int32((2*cy + 1) * hgt / sub)
		for cx := 0; cx < cols; cx++ {
			x := int32(cx * w / cols)
			// Device (x, y) is bitmap column y, row x.
			style := tcell.StyleDefault.
				Foreground(rgb(fb.At(top, x))).
				Background(rgb(fb.At(bottom, x)))
			h.screen.SetContent(cx, cy, halfBlock, nil, style)
		}
	}
}

func rgb(p punkrun.Pixel) tcell.Color {
	return tcell.NewRGBColor(int32(p.R), int32(p.G), int32(p.B))
}
