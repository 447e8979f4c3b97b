package systems

// Kinematics is the mutable per-agent row advanced by Integrate.
type Kinematics struct {
	Pos      Vec2
	Vel      Vec2
	Acc      Vec2
	Heading  float32
	MaxSpeed float32
}

// Integrate advances one agent by dt using the integration law of r.Mode.
// It returns false, leaving k untouched, when dt is not positive.
//
// Steering mode accumulates desired into acceleration and integrates
// velocity over dt, clamping speed to MaxSpeed.
//
// Velocity mode blends acceleration towards desired and adds it to velocity
// without dt scaling. When the speed bound is exceeded acceleration is reset
// and velocity is rescaled to MaxSpeed.
//
// Both modes move position by velocity * dt and point Heading along the
// velocity when it is non-zero.
func Integrate(k *Kinematics, desired Vec2, dt float32, r Rules) bool {
	if !(dt > 0) {
		return false
	}

	maxSq := k.MaxSpeed * k.MaxSpeed

	switch r.Mode {
	case ModeVelocity:
		k.Acc = k.Acc.Add(k.Acc.Lerp(desired, r.AccelBlend))
		k.Vel = k.Vel.Add(k.Acc)
		if k.Vel.LenSq() > maxSq {
			k.Acc = Vec2{}
			k.Vel = k.Vel.Normalize().Scale(k.MaxSpeed)
		}
	default:
		k.Acc = k.Acc.Add(desired)
		k.Vel = k.Vel.Add(k.Acc.Scale(dt))
		if k.Vel.LenSq() > maxSq {
			k.Vel = k.Vel.Normalize().Scale(k.MaxSpeed)
		}
	}

	k.Pos = k.Pos.Add(k.Vel.Scale(dt))
	if !k.Vel.IsZero() {
		k.Heading = k.Vel.Angle()
	}
	return true
}
