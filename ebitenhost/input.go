package ebitenhost

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/punkrun"
)

// keyBindings maps each button to the keys that press it.
var keyBindings = []struct {
	button punkrun.Button
	keys   []ebiten.Key
}{
	{punkrun.ButtonAction, []ebiten.Key{ebiten.KeySpace, ebiten.KeyZ, ebiten.KeyEnter}},
	{punkrun.ButtonUp, []ebiten.Key{ebiten.KeyArrowUp, ebiten.KeyW}},
	{punkrun.ButtonDown, []ebiten.Key{ebiten.KeyArrowDown, ebiten.KeyS}},
	{punkrun.ButtonLeft, []ebiten.Key{ebiten.KeyArrowLeft, ebiten.KeyA}},
	{punkrun.ButtonRight, []ebiten.Key{ebiten.KeyArrowRight, ebiten.KeyD}},
	{punkrun.ButtonQuit, []ebiten.Key{ebiten.KeyEscape}},
}

// padBindings maps each button to a standard gamepad button.
var padBindings = []struct {
	button punkrun.Button
	pad    ebiten.StandardGamepadButton
}{
	{punkrun.ButtonAction, ebiten.StandardGamepadButtonRightBottom},
	{punkrun.ButtonUp, ebiten.StandardGamepadButtonLeftTop},
	{punkrun.ButtonDown, ebiten.StandardGamepadButtonLeftBottom},
	{punkrun.ButtonLeft, ebiten.StandardGamepadButtonLeftLeft},
	{punkrun.ButtonRight, ebiten.StandardGamepadButtonLeftRight},
	{punkrun.ButtonQuit, ebiten.StandardGamepadButtonCenterRight},
}

// keyButtons folds the pressed keys into button bits.
func keyButtons(pressed func(ebiten.Key) bool) punkrun.Button {
	var b punkrun.Button
	for _, kb := range keyBindings {
		for _, k := range kb.keys {
			if pressed(k) {
				b |= kb.button
				break
			}
		}
	}
	return b
}

// Snapshot captures the current keyboard and gamepad state.
func Snapshot() punkrun.InputSnapshot {
	in := punkrun.InputSnapshot{Buttons: keyButtons(ebiten.IsKeyPressed)}
	var ids []ebiten.GamepadID
	ids = ebiten.AppendGamepadIDs(ids)
	for _, id := range ids {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		for _, pb := range padBindings {
			if ebiten.IsStandardGamepadButtonPressed(id, pb.pad) {
				in.Buttons |= pb.button
			}
		}
		in.AxisX = float32(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal))
		in.AxisY = float32(ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical))
		break
	}
	return in
}
