package systems

// Bounds is the current simulation area, anchored at the origin.
type Bounds struct {
	Width, Height float32
}

// Valid reports whether both dimensions are positive.
func (b Bounds) Valid() bool {
	return b.Width > 0 && b.Height > 0
}

// Wrap teleports a position that has fully left the bounds to the opposite
// edge. An agent counts as gone once it is more than half its footprint past
// an edge, and it reappears half a footprint outside the opposite edge so it
// slides back in. Each axis is adjusted at most once. Wrap reports whether
// any axis moved; applying it again to its own output is a no-op.
func Wrap(p *Vec2, scale float32, b Bounds) bool {
	half := scale / 2
	wrapped := false

	if p.X < -half {
		p.X += b.Width + scale
		wrapped = true
	} else if p.X > b.Width+half {
		p.X -= b.Width + scale
		wrapped = true
	}

	if p.Y < -half {
		p.Y += b.Height + scale
		wrapped = true
	} else if p.Y > b.Height+half {
		p.Y -= b.Height + scale
		wrapped = true
	}

	return wrapped
}
