package punkrun

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// scriptStep is a single action in an input script.
type scriptStep struct {
	Action  string   `json:"action"`
	Label   string   `json:"label,omitempty"`
	Buttons []string `json:"buttons,omitempty"`
	AxisX   float32  `json:"axisX,omitempty"`
	AxisY   float32  `json:"axisY,omitempty"`
	Frames  int      `json:"frames,omitempty"`
}

// inputScript is the top-level JSON structure for an input script.
type inputScript struct {
	Steps []scriptStep `json:"steps"`
}

var buttonNames = map[string]Button{
	"action": ButtonAction,
	"up":     ButtonUp,
	"down":   ButtonDown,
	"left":   ButtonLeft,
	"right":  ButtonRight,
	"quit":   ButtonQuit,
}

// InputScript replays a scripted sequence of inputs and screenshots, one
// tick at a time, for automated runs. Steps:
//
//	{"action": "press", "buttons": ["action"], "frames": 1}
//	{"action": "axis", "axisX": 1, "frames": 30}
//	{"action": "wait", "frames": 60}
//	{"action": "screenshot", "label": "after-jump"}
type InputScript struct {
	game      *Game
	steps     []scriptStep
	cursor    int
	current   InputSnapshot
	holdCount int
	done      bool
}

// LoadInputScript parses a JSON input script. Screenshot steps are queued on
// game; a nil game ignores them.
func LoadInputScript(jsonData []byte, game *Game) (*InputScript, error) {
	var script inputScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, errors.Wrap(err, "parse input script")
	}
	if len(script.Steps) == 0 {
		return nil, errors.New("parse input script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "press", "axis", "wait", "screenshot":
		default:
			return nil, errors.Errorf("parse input script: step %d: unknown action %q", i, st.Action)
		}
		for _, name := range st.Buttons {
			if _, ok := buttonNames[name]; !ok {
				return nil, errors.Errorf("parse input script: step %d: unknown button %q", i, name)
			}
		}
	}
	return &InputScript{game: game, steps: script.Steps}, nil
}

// Done reports whether every step has been replayed.
func (s *InputScript) Done() bool {
	return s.done
}

// Next returns the input for the coming tick.
func (s *InputScript) Next(GameTick) InputSnapshot {
	if s.done {
		return InputSnapshot{}
	}
	if s.holdCount > 0 {
		s.holdCount--
		in := s.current
		s.finishIfDrained()
		return in
	}
	for s.cursor < len(s.steps) {
		st := s.steps[s.cursor]
		s.cursor++
		switch st.Action {
		case "screenshot":
			if s.game != nil {
				s.game.Screenshot(st.Label)
			}
			continue
		case "press":
			s.current = InputSnapshot{Buttons: parseButtons(st.Buttons)}
		case "axis":
			s.current = InputSnapshot{Buttons: parseButtons(st.Buttons), AxisX: st.AxisX, AxisY: st.AxisY}
		case "wait":
			s.current = InputSnapshot{}
		}
		s.holdCount = max(st.Frames, 1) - 1 // this tick counts as one
		in := s.current
		s.finishIfDrained()
		return in
	}
	s.done = true
	return InputSnapshot{}
}

func (s *InputScript) finishIfDrained() {
	if s.holdCount == 0 && s.cursor >= len(s.steps) {
		s.done = true
	}
}

func parseButtons(names []string) Button {
	var b Button
	for _, name := range names {
		b |= buttonNames[name]
	}
	return b
}
