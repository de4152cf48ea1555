package punkrun

import (
	"context"
	"time"
)

// Pacer paces a cooperative loop at a fixed tick rate. Wait measures the
// time since the previous tick and sleeps the remainder of the frame
// budget. A tick that overran its budget is not made up.
type Pacer struct {
	frame time.Duration
	last  time.Time
	now   func() time.Time
}

// NewPacer creates a pacer for tps ticks per second.
func NewPacer(tps int) *Pacer {
	if tps <= 0 {
		tps = 60
	}
	return &Pacer{frame: time.Second / time.Duration(tps), now: time.Now}
}

// Frame returns the per-tick budget.
func (p *Pacer) Frame() time.Duration { return p.frame }

// Wait blocks until the current frame budget has elapsed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	now := p.now()
	if p.last.IsZero() {
		p.last = now
		return ctx.Err()
	}
	remaining := p.frame - now.Sub(p.last)
	if remaining <= 0 {
		p.last = now
		return ctx.Err()
	}
	t := time.NewTimer(remaining)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}
	p.last = p.now()
	return nil
}

// InputSource supplies the input for one tick.
type InputSource interface {
	Next(tick GameTick) InputSnapshot
}

// InputFunc adapts a function to InputSource.
type InputFunc func(tick GameTick) InputSnapshot

// Next calls f.
func (f InputFunc) Next(tick GameTick) InputSnapshot { return f(tick) }

// RunHeadless drives g for up to ticks updates with input from src. A nil
// pacer runs as fast as possible; a nil src sends no input. It returns
// early when ctx is cancelled, when the input requests quit, or when src is
// an InputScript that has finished.
func RunHeadless(ctx context.Context, g *Game, ticks int, src InputSource, pacer *Pacer) error {
	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		var in InputSnapshot
		if src != nil {
			in = src.Next(g.Tick())
		}
		g.Update(in)
		if g.Command().Quit {
			return nil
		}
		if s, ok := src.(*InputScript); ok && s.Done() {
			return nil
		}
		if pacer != nil {
			if err := pacer.Wait(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}
