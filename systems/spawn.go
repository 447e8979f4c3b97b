package systems

import (
	"math"
	"math/rand"
)

// SpawnKinematics samples an initial agent row: position uniform over the
// bounds, heading uniform in [0, 2π), speed equal to maxSpeed.
func SpawnKinematics(rng *rand.Rand, b Bounds, maxSpeed float32) Kinematics {
	heading := rng.Float64() * 2 * math.Pi
	vel := Vec2{
		X: float32(math.Cos(heading)) * maxSpeed,
		Y: float32(math.Sin(heading)) * maxSpeed,
	}
	return Kinematics{
		Pos:      Vec2{X: rng.Float32() * b.Width, Y: rng.Float32() * b.Height},
		Vel:      vel,
		Heading:  float32(heading),
		MaxSpeed: maxSpeed,
	}
}
