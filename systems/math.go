package systems

import "math"

// Vec2 is a float32 2D vector used by the per-frame hot paths.
// Methods use value receivers and return new values.
type Vec2 struct {
	X, Y float32
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// LenSq returns the squared magnitude. Use for comparisons.
func (v Vec2) LenSq() float32 {
	return v.X*v.X + v.Y*v.Y
}

// Len returns the magnitude.
func (v Vec2) Len() float32 {
	return float32(math.Sqrt(float64(v.LenSq())))
}

// Normalize returns the unit vector in the same direction,
// or the zero vector if v has zero (or non-finite) length.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 || math.IsInf(float64(l), 0) || l != l {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Lerp interpolates from v towards target by t.
func (v Vec2) Lerp(target Vec2, t float32) Vec2 {
	return v.Add(target.Sub(v).Scale(t))
}

// IsZero reports whether both components are exactly zero.
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Angle returns atan2(y, x) in radians.
func (v Vec2) Angle() float32 {
	return float32(math.Atan2(float64(v.Y), float64(v.X)))
}

// Within reports whether the offset (dx, dy) lies inside a closed disc of the
// given radius. Every neighbor index uses this predicate so that their results
// agree exactly.
func Within(dx, dy, radius float32) bool {
	return dx*dx+dy*dy <= radius*radius
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Vec2) float32 {
	return a.Sub(b).Len()
}

// clampInt clamps v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
