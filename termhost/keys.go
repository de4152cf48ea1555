package termhost

import (
	"github.com/gdamore/tcell/v2"

	"github.com/phanxgames/punkrun"
)

// holdTicks is how long a direction key stays down after its last key
// event. Terminals report presses and repeats but never releases.
const holdTicks = 8

// keyState tracks, per button, the first tick at which it is released.
type keyState struct {
	until [8]punkrun.GameTick
}

// press marks b down from now. A pulse lasts exactly one tick so that
// edge-triggered buttons fire once per key event.
func (k *keyState) press(b punkrun.Button, now punkrun.GameTick, pulse bool) {
	n := punkrun.TickQty(holdTicks)
	if pulse {
		n = 1
	}
	for i := range k.until {
		if b&(1<<i) != 0 {
			k.until[i] = now.Add(n)
		}
	}
}

func (k *keyState) buttons(now punkrun.GameTick) punkrun.Button {
	var b punkrun.Button
	for i, t := range k.until {
		if now < t {
			b |= 1 << i
		}
	}
	return b
}

// keyButton maps a key event to a button. pulse is set for buttons the
// game treats as edges.
func keyButton(ev *tcell.EventKey) (b punkrun.Button, pulse, ok bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return punkrun.ButtonQuit, true, true
	case tcell.KeyEnter:
		return punkrun.ButtonAction, true, true
	case tcell.KeyUp:
		return punkrun.ButtonUp, false, true
	case tcell.KeyDown:
		return punkrun.ButtonDown, false, true
	case tcell.KeyLeft:
		return punkrun.ButtonLeft, false, true
	case tcell.KeyRight:
		return punkrun.ButtonRight, false, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ', 'z', 'Z':
			return punkrun.ButtonAction, true, true
		case 'q', 'Q':
			return punkrun.ButtonQuit, true, true
		case 'w':
			return punkrun.ButtonUp, false, true
		case 's':
			return punkrun.ButtonDown, false, true
		case 'a':
			return punkrun.ButtonLeft, false, true
		case 'd':
			return punkrun.ButtonRight, false, true
		}
	}
	return 0, false, false
}
