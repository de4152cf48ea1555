package punkrun

import "testing"

func TestInputActionIsEdgeTriggered(t *testing.T) {
	m := NewInputMapper()
	held := InputSnapshot{Buttons: ButtonAction}

	if cmd := m.Map(held); !cmd.Action || !cmd.Held {
		t.Fatalf("first press: %+v, want Action and Held", cmd)
	}
	if cmd := m.Map(held); cmd.Action {
		t.Error("holding the button fired Action again")
	}
	if cmd := m.Map(InputSnapshot{}); cmd.Action || cmd.Held {
		t.Errorf("release: %+v, want no action", cmd)
	}
	if cmd := m.Map(held); !cmd.Action {
		t.Error("second press did not fire Action")
	}
}

func TestInputMoveBits(t *testing.T) {
	tests := []struct {
		name string
		in   InputSnapshot
		want MoveBits
	}{
		{"none", InputSnapshot{}, 0},
		{"up button", InputSnapshot{Buttons: ButtonUp}, MoveUp},
		{"right axis", InputSnapshot{AxisX: 0.9}, MoveRight},
		{"axis inside dead zone", InputSnapshot{AxisX: 0.2, AxisY: -0.2}, 0},
		{"diagonal", InputSnapshot{AxisX: -1, AxisY: 1}, MoveLeft | MoveDown},
		{"opposing buttons cancel", InputSnapshot{Buttons: ButtonLeft | ButtonRight}, 0},
		{"button and axis agree", InputSnapshot{Buttons: ButtonUp, AxisY: -1}, MoveUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewInputMapper()
			if got := m.Map(tt.in).Move; got != tt.want {
				t.Errorf("Move = %04b, want %04b", got, tt.want)
			}
		})
	}
}

func TestInputQuit(t *testing.T) {
	m := NewInputMapper()
	if !m.Map(InputSnapshot{Buttons: ButtonQuit}).Quit {
		t.Error("Quit not set")
	}
}

func TestInputReset(t *testing.T) {
	m := NewInputMapper()
	m.Map(InputSnapshot{Buttons: ButtonAction})
	m.Reset()
	if !m.Map(InputSnapshot{Buttons: ButtonAction}).Action {
		t.Error("Action should fire after Reset")
	}
}
