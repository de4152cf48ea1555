package punkrun

import (
	"github.com/pkg/errors"
	"github.com/tanema/gween/ease"
)

// skyAtlases names the two sky images the overlay alternates between.
var skyAtlases = [2]string{"sky_a", "sky_b"}

// Sky is a semi-transparent overlay drawn beneath the scrolling layers. A
// window the size of the framebuffer drifts inside a larger atlas and
// reflects at its edges. Every swap period the front and back atlases trade
// places, cross-fading over a short tween. Timing follows the tick counter,
// not the camera.
type Sky struct {
	atlases [2]Bitmap
	front   int

	window Extent // in bitmap orientation via GameWidth/GameHeight
	pos    Vec2   // window top-left: X is the column, Y the row
	vel    Vec2

	swapEvery TickQty
	fadeTicks TickQty
	opacity   uint8
	lastSwap  GameTick
	fade      *Fade
}

// DeclareSky reserves arena space for both sky atlases.
func DeclareSky(a *Arena, l *Layout) {
	for _, name := range skyAtlases {
		if e, ok := l.Entry(name); ok {
			DeclareBitmap(a, e.Width, e.Height)
		}
	}
}

// NewSky carves the sky atlases out of the arena. window is the visible
// extent the overlay covers.
func NewSky(a *Arena, l *Layout, window Extent, cfg SkyConfig) (*Sky, error) {
	s := &Sky{
		window:    window,
		vel:       Vec2{X: cfg.VelocityX, Y: cfg.VelocityY},
		swapEvery: TickQty(cfg.SwapTicks),
		fadeTicks: TickQty(cfg.FadeTicks),
		opacity:   cfg.Opacity,
	}
	for i, name := range skyAtlases {
		e, ok := l.Entry(name)
		if !ok {
			return nil, errors.Wrapf(ErrAssetRead, "layout has no %s entry", name)
		}
		if e.Width < window.GameWidth() || e.Height < window.GameHeight() {
			return nil, errors.Wrapf(ErrAssetRead, "%s is %dx%d, smaller than the %dx%d window",
				name, e.Width, e.Height, window.GameWidth(), window.GameHeight())
		}
		bmp, ok := AllocBitmap(a, e.Width, e.Height)
		if !ok {
			return nil, errors.Wrapf(ErrAllocation, "sky atlas %s", name)
		}
		s.atlases[i] = bmp
	}
	return s, nil
}

// Prime decodes both atlases from the resident blob.
func (s *Sky) Prime(assets *AssetData, now GameTick) error {
	for i, name := range skyAtlases {
		if res := assets.ReadImage(name, &s.atlases[i]); res != ReadOK {
			return errors.Wrapf(ErrAssetRead, "sky %s: %s", name, res)
		}
	}
	s.lastSwap = now
	return nil
}

// Front returns the index of the atlas currently in front.
func (s *Sky) Front() int { return s.front }

// Window returns the visible sub-rect of the atlases in bitmap orientation.
func (s *Sky) Window() Rect {
	return Rect{X: int32(s.pos.X), Y: int32(s.pos.Y), W: s.window.GameWidth(), H: s.window.GameHeight()}
}

// Fading reports whether a cross-fade is in progress.
func (s *Sky) Fading() bool {
	return s.fade != nil && !s.fade.Done
}

// Update moves the window one tick and swaps the atlases when the swap
// period has elapsed.
func (s *Sky) Update(now GameTick) {
	maxX := float32(s.atlases[0].Width - s.window.GameWidth())
	maxY := float32(s.atlases[0].Height - s.window.GameHeight())
	s.pos.X, s.vel.X = bounce(s.pos.X+s.vel.X, s.vel.X, maxX)
	s.pos.Y, s.vel.Y = bounce(s.pos.Y+s.vel.Y, s.vel.Y, maxY)

	if s.fade != nil {
		s.fade.Update()
	}
	if s.swapEvery > 0 && now.Since(s.lastSwap) >= s.swapEvery {
		s.front = 1 - s.front
		s.lastSwap = now
		s.fade = NewFade(0, 1, s.fadeTicks, ease.InOutSine)
	}
}

// bounce reflects v into [0, hi], flipping the velocity on contact.
func bounce(v, vel, hi float32) (float32, float32) {
	if hi <= 0 {
		return 0, vel
	}
	if v < 0 {
		return -v, -vel
	}
	if v > hi {
		return 2*hi - v, -vel
	}
	return v, vel
}

// Push queues the overlay onto dst. During a cross-fade the back atlas is
// drawn first at full overlay opacity and the front fades in over it.
func (s *Sky) Push(q *DrawQueue, dst *Bitmap) {
	win := s.Window()
	front := s.opacity
	if s.Fading() {
		back := s.atlases[1-s.front].SubView(win)
		q.PushDrawViewAlpha(back, dst, GamePos{}, s.opacity)
		front = mul8(s.opacity, opacity8(s.fade.Value()))
	}
	q.PushDrawViewAlpha(s.atlases[s.front].SubView(win), dst, GamePos{}, front)
}
