package punkrun

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Fade animates one value from a start to an end over a number of ticks.
// Call Update once per tick. Durations are measured in ticks so stepping by
// whole units never drifts.
//
// There is no global animation manager; owners call Update themselves.
type Fade struct {
	tween *gween.Tween
	value float32
	Done  bool
}

// NewFade creates a fade from from to to over ticks using the easing
// function. A zero duration finishes on the first Update.
func NewFade(from, to float32, ticks TickQty, fn ease.TweenFunc) *Fade {
	if fn == nil {
		fn = ease.Linear
	}
	return &Fade{tween: gween.New(from, to, float32(max(ticks, 1)), fn), value: from}
}

// Update advances the fade by one tick and returns the current value.
func (f *Fade) Update() float32 {
	if f.Done {
		return f.value
	}
	f.value, f.Done = f.tween.Update(1)
	return f.value
}

// Value returns the value after the most recent Update.
func (f *Fade) Value() float32 {
	return f.value
}

// Pulse oscillates a value between lo and hi, easing in both directions.
// It never finishes.
type Pulse struct {
	up, down *gween.Tween
	rising   bool
	value    float32
}

// NewPulse creates a pulse that takes period ticks for one full lo-hi-lo
// cycle.
func NewPulse(lo, hi float32, period TickQty, fn ease.TweenFunc) *Pulse {
	if fn == nil {
		fn = ease.InOutSine
	}
	half := float32(max(period/2, 1))
	return &Pulse{
		up:     gween.New(lo, hi, half, fn),
		down:   gween.New(hi, lo, half, fn),
		rising: true,
		value:  lo,
	}
}

// Update advances the pulse by one tick and returns the current value.
func (p *Pulse) Update() float32 {
	tw := p.down
	if p.rising {
		tw = p.up
	}
	v, finished := tw.Update(1)
	p.value = v
	if finished {
		tw.Reset()
		p.rising = !p.rising
	}
	return v
}

// Value returns the value after the most recent Update.
func (p *Pulse) Value() float32 {
	return p.value
}

// opacity8 converts a value in [0, 1] to an 8-bit opacity.
func opacity8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}
