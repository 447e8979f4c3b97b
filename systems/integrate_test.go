package systems

import (
	"math"
	"math/rand"
	"testing"
)

func TestIntegrateSingleAgentNoNeighbors(t *testing.T) {
	for _, mode := range []Mode{ModeSteering, ModeVelocity} {
		t.Run(mode.String(), func(t *testing.T) {
			k := Kinematics{Pos: Vec2{100, 100}, Vel: Vec2{100, 0}, MaxSpeed: 100}
			if !Integrate(&k, Vec2{}, 1, DefaultRules(mode)) {
				t.Fatal("Integrate skipped a positive dt")
			}
			if k.Pos != (Vec2{200, 100}) {
				t.Errorf("Pos = %+v, want (200,100)", k.Pos)
			}
			if k.Vel.Len() > 100 {
				t.Errorf("|Vel| = %v, want <= 100", k.Vel.Len())
			}
		})
	}
}

func TestIntegrateSpeedBound(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, mode := range []Mode{ModeSteering, ModeVelocity} {
		t.Run(mode.String(), func(t *testing.T) {
			r := DefaultRules(mode)
			k := Kinematics{MaxSpeed: 100}
			for step := 0; step < 1000; step++ {
				desired := Vec2{(rng.Float32() - 0.5) * 1e4, (rng.Float32() - 0.5) * 1e4}
				Integrate(&k, desired, 1.0/60.0, r)
				if speed := k.Vel.Len(); float64(speed) > 100*(1+1e-5) {
					t.Fatalf("step %d: |Vel| = %v exceeds max speed", step, speed)
				}
			}
		})
	}
}

func TestIntegrateNonPositiveDT(t *testing.T) {
	for _, dt := range []float32{0, -1} {
		k := Kinematics{Pos: Vec2{1, 2}, Vel: Vec2{3, 4}, Acc: Vec2{5, 6}, MaxSpeed: 100}
		before := k
		if Integrate(&k, Vec2{10, 10}, dt, DefaultRules(ModeSteering)) {
			t.Errorf("dt=%v: Integrate reported a step", dt)
		}
		if k != before {
			t.Errorf("dt=%v: state changed to %+v", dt, k)
		}
	}
}

func TestIntegrateVelocityResetsAcceleration(t *testing.T) {
	k := Kinematics{Vel: Vec2{90, 0}, MaxSpeed: 100}
	Integrate(&k, Vec2{1000, 0}, 0.5, DefaultRules(ModeVelocity))

	if !k.Acc.IsZero() {
		t.Errorf("Acc = %+v, want zero after clamp", k.Acc)
	}
	if !approxVec(k.Vel, Vec2{100, 0}, 1e-4) {
		t.Errorf("Vel = %+v, want (100,0)", k.Vel)
	}
	if !approxVec(k.Pos, Vec2{50, 0}, 1e-4) {
		t.Errorf("Pos = %+v, want (50,0)", k.Pos)
	}
}

func TestIntegrateVelocityBlend(t *testing.T) {
	k := Kinematics{MaxSpeed: 100}
	Integrate(&k, Vec2{10, 0}, 1, DefaultRules(ModeVelocity))

	// acc = 0 + lerp(0, 10, 0.1) = 1, vel = 1
	if !approxVec(k.Acc, Vec2{1, 0}, 1e-6) {
		t.Errorf("Acc = %+v, want (1,0)", k.Acc)
	}
	if !approxVec(k.Vel, Vec2{1, 0}, 1e-6) {
		t.Errorf("Vel = %+v, want (1,0)", k.Vel)
	}
}

func TestIntegrateHeading(t *testing.T) {
	k := Kinematics{Vel: Vec2{0, 50}, MaxSpeed: 100, Heading: 1}
	Integrate(&k, Vec2{}, 0.1, DefaultRules(ModeSteering))
	if math.Abs(float64(k.Heading)-math.Pi/2) > 1e-6 {
		t.Errorf("Heading = %v, want pi/2", k.Heading)
	}

	still := Kinematics{MaxSpeed: 100, Heading: 1}
	Integrate(&still, Vec2{}, 0.1, DefaultRules(ModeSteering))
	if still.Heading != 1 {
		t.Errorf("Heading of stationary agent = %v, want unchanged 1", still.Heading)
	}
}

func TestSpawnKinematics(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	b := Bounds{Width: 800, Height: 600}
	for i := 0; i < 200; i++ {
		k := SpawnKinematics(rng, b, 100)
		if k.Pos.X < 0 || k.Pos.X > b.Width || k.Pos.Y < 0 || k.Pos.Y > b.Height {
			t.Fatalf("spawn %d outside bounds: %+v", i, k.Pos)
		}
		if math.Abs(float64(k.Vel.Len())-100) > 1e-3 {
			t.Fatalf("spawn %d speed = %v, want 100", i, k.Vel.Len())
		}
	}
}
