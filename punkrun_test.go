package punkrun

import "testing"

func TestRectIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"overlap", Rect{0, 0, 10, 10}, Rect{5, 5, 10, 10}, Rect{5, 5, 5, 5}},
		{"contained", Rect{0, 0, 10, 10}, Rect{2, 3, 4, 5}, Rect{2, 3, 4, 5}},
		{"touching edges", Rect{0, 0, 10, 10}, Rect{10, 0, 5, 5}, Rect{}},
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 5, 5}, Rect{}},
		{"negative origin", Rect{-5, -5, 10, 10}, Rect{0, 0, 100, 100}, Rect{0, 0, 5, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersect(tt.b); got != tt.want {
				t.Errorf("Intersect = %+v, want %+v", got, tt.want)
			}
			if got := tt.a.Intersects(tt.b); got != !tt.want.Empty() {
				t.Errorf("Intersects = %v", got)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 5, H: 5}
	tests := []struct {
		x, y int32
		want bool
	}{
		{10, 20, true},
		{14, 24, true},
		{15, 20, false},
		{10, 25, false},
		{9, 20, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{ModeTitle.String(), "title"},
		{ModeGameplay.String(), "gameplay"},
		{ModeError.String(), "error"},
		{GameMode(99).String(), "unknown"},
		{AssetFailRead.String(), "fail_read"},
		{ReadWrongClass.String(), "wrong_class"},
		{ClassFilterAlpha.String(), "filter_alpha"},
		{ErrAssetVersion.Error(), "punkrun: asset version mismatch"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
