package punkrun

// Button is a bit set of digital inputs captured by the host.
type Button uint16

const (
	ButtonAction Button = 1 << iota // jump / confirm
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonQuit
)

// InputSnapshot is the raw per-frame input state supplied by a host.
// Axes are in [-1, 1]; positive X is right, positive Y is down.
type InputSnapshot struct {
	Buttons Button
	AxisX   float32
	AxisY   float32
}

// Pressed reports whether every button in b is held.
func (s InputSnapshot) Pressed(b Button) bool {
	return s.Buttons&b == b
}

// MoveBits is the set of movement directions requested this tick.
type MoveBits uint8

const (
	MoveUp MoveBits = 1 << iota
	MoveDown
	MoveLeft
	MoveRight
)

// Has reports whether every direction in m is set.
func (b MoveBits) Has(m MoveBits) bool {
	return b&m == m
}

// InputCommand is the core's view of one tick of input.
type InputCommand struct {
	Action bool // action went down this tick
	Held   bool // action is held
	Quit   bool
	Move   MoveBits
}

const defaultAxisDeadZone = 0.35

// InputMapper turns snapshots into commands. It remembers the previous
// snapshot so the action fires only on the press edge.
type InputMapper struct {
	DeadZone float32
	prev     Button
}

// NewInputMapper creates a mapper with the default axis dead zone.
func NewInputMapper() *InputMapper {
	return &InputMapper{DeadZone: defaultAxisDeadZone}
}

// Map converts s into a command and records it as the previous snapshot.
func (m *InputMapper) Map(s InputSnapshot) InputCommand {
	cmd := InputCommand{
		Action: s.Pressed(ButtonAction) && m.prev&ButtonAction == 0,
		Held:   s.Pressed(ButtonAction),
		Quit:   s.Pressed(ButtonQuit),
	}
	m.prev = s.Buttons

	if s.Pressed(ButtonUp) || s.AxisY < -m.DeadZone {
		cmd.Move |= MoveUp
	}
	if s.Pressed(ButtonDown) || s.AxisY > m.DeadZone {
		cmd.Move |= MoveDown
	}
	if s.Pressed(ButtonLeft) || s.AxisX < -m.DeadZone {
		cmd.Move |= MoveLeft
	}
	if s.Pressed(ButtonRight) || s.AxisX > m.DeadZone {
		cmd.Move |= MoveRight
	}
	// Opposing directions cancel.
	if cmd.Move.Has(MoveUp | MoveDown) {
		cmd.Move &^= MoveUp | MoveDown
	}
	if cmd.Move.Has(MoveLeft | MoveRight) {
		cmd.Move &^= MoveLeft | MoveRight
	}
	return cmd
}

// Reset forgets the previous snapshot.
func (m *InputMapper) Reset() {
	m.prev = 0
}
