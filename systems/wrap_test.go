package systems

import "testing"

func TestWrap(t *testing.T) {
	b := Bounds{Width: 800, Height: 600}
	tests := []struct {
		name    string
		in      Vec2
		want    Vec2
		wrapped bool
	}{
		{"inside", Vec2{400, 300}, Vec2{400, 300}, false},
		{"inside footprint margin", Vec2{-1, 300}, Vec2{-1, 300}, false},
		{"left edge", Vec2{-11, 300}, Vec2{809, 300}, true},
		{"right edge", Vec2{811, 300}, Vec2{-9, 300}, true},
		{"top edge", Vec2{400, -12}, Vec2{400, 608}, true},
		{"bottom edge", Vec2{400, 612}, Vec2{400, -8}, true},
		{"corner", Vec2{-11, 611}, Vec2{809, -9}, true},
		{"exactly on margin", Vec2{-10, 610}, Vec2{-10, 610}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			got := Wrap(&p, 20, b)
			if got != tt.wrapped {
				t.Errorf("Wrap returned %v, want %v", got, tt.wrapped)
			}
			if p != tt.want {
				t.Errorf("position = %+v, want %+v", p, tt.want)
			}
		})
	}
}

func TestWrapIdempotent(t *testing.T) {
	b := Bounds{Width: 800, Height: 600}
	for x := float32(-30); x <= 830; x += 7 {
		for y := float32(-30); y <= 630; y += 11 {
			p := Vec2{x, y}
			Wrap(&p, 20, b)
			again := p
			if Wrap(&again, 20, b) {
				t.Fatalf("second wrap moved (%v,%v): %+v -> %+v", x, y, p, again)
			}
		}
	}
}

func TestWrapZeroFootprint(t *testing.T) {
	b := Bounds{Width: 800, Height: 600}
	p := Vec2{-1, 300}
	if !Wrap(&p, 0, b) {
		t.Fatal("expected wrap")
	}
	if p != (Vec2{799, 300}) {
		t.Errorf("position = %+v, want {799 300}", p)
	}
}
