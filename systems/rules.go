// Package systems provides the per-frame flocking computations.
package systems

import (
	"fmt"

	"github.com/pthm-cable/flock/config"
)

// Mode selects the rule family and the matching integration law.
// The two families keep independent coefficients and are never mixed.
type Mode uint8

const (
	ModeSteering Mode = iota // normalized targets through the steer transform
	ModeVelocity             // raw averages blended into acceleration
)

func (m Mode) String() string {
	switch m {
	case ModeSteering:
		return config.ModeSteering
	case ModeVelocity:
		return config.ModeVelocity
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode maps a config mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case config.ModeSteering:
		return ModeSteering, nil
	case config.ModeVelocity:
		return ModeVelocity, nil
	}
	return 0, fmt.Errorf("unknown simulation mode %q", s)
}

// Steering mode force weights.
const (
	AlignmentForce  float32 = 5.6
	CohesionForce   float32 = 0.6
	SeparationForce float32 = 0.6
	SteerForce      float32 = 5.0
)

// Velocity mode coefficients.
const (
	AlignmentCoef  float32 = 0.5
	CohesionCoef   float32 = 0.7
	SeparationCoef float32 = 1.0
	AccelBlend     float32 = 0.1
)

// Rules holds the coefficients for one mode.
type Rules struct {
	Mode             Mode
	AlignmentWeight  float32
	CohesionWeight   float32
	SeparationWeight float32
	SteerForce       float32 // steering mode only
	AccelBlend       float32 // velocity mode only
}

// DefaultRules returns the built-in coefficients for mode.
func DefaultRules(mode Mode) Rules {
	if mode == ModeVelocity {
		return Rules{
			Mode:             ModeVelocity,
			AlignmentWeight:  AlignmentCoef,
			CohesionWeight:   CohesionCoef,
			SeparationWeight: SeparationCoef,
			AccelBlend:       AccelBlend,
		}
	}
	return Rules{
		Mode:             ModeSteering,
		AlignmentWeight:  AlignmentForce,
		CohesionWeight:   CohesionForce,
		SeparationWeight: SeparationForce,
		SteerForce:       SteerForce,
	}
}

// RulesFromConfig builds the rule set for the configured mode.
func RulesFromConfig(cfg *config.Config) (Rules, error) {
	mode, err := ParseMode(cfg.Flock.Mode)
	if err != nil {
		return Rules{}, err
	}
	if mode == ModeVelocity {
		v := cfg.Velocity
		return Rules{
			Mode:             ModeVelocity,
			AlignmentWeight:  float32(v.AlignmentCoef),
			CohesionWeight:   float32(v.CohesionCoef),
			SeparationWeight: float32(v.SeparationCoef),
			AccelBlend:       float32(v.AccelBlend),
		}, nil
	}
	s := cfg.Steering
	return Rules{
		Mode:             ModeSteering,
		AlignmentWeight:  float32(s.AlignmentForce),
		CohesionWeight:   float32(s.CohesionForce),
		SeparationWeight: float32(s.SeparationForce),
		SteerForce:       float32(s.SteerForce),
	}, nil
}

// Agent is the read-only state of the querying agent.
type Agent struct {
	Pos                Vec2
	Vel                Vec2
	MaxSpeed           float32
	PerceptionRadius   float32
	SeparationDistance float32
}

// Neighbor is a nearby agent with its precomputed distance to the querying agent.
type Neighbor struct {
	Pos  Vec2
	Vel  Vec2
	Dist float32
}

// Steer turns a target velocity into a bounded correction relative to the
// current velocity.
func Steer(target, current Vec2, force float32) Vec2 {
	return target.Sub(current).Normalize().Scale(force)
}

// Alignment matches heading to the neighbors' average velocity.
// An empty neighborhood contributes exactly zero.
func Alignment(self Agent, neighbors []Neighbor, r Rules) Vec2 {
	if len(neighbors) == 0 {
		return Vec2{}
	}

	var sum Vec2
	for i := range neighbors {
		sum = sum.Add(neighbors[i].Vel)
	}
	avg := sum.Scale(1 / float32(len(neighbors)))

	if r.Mode == ModeVelocity {
		return avg.Scale(r.AlignmentWeight)
	}
	target := avg.Normalize().Scale(self.MaxSpeed)
	return Steer(target, self.Vel, r.SteerForce).Scale(r.AlignmentWeight)
}

// Cohesion moves towards the neighbors' centroid.
// An empty neighborhood contributes exactly zero.
func Cohesion(self Agent, neighbors []Neighbor, r Rules) Vec2 {
	if len(neighbors) == 0 {
		return Vec2{}
	}

	var sum Vec2
	for i := range neighbors {
		sum = sum.Add(neighbors[i].Pos)
	}
	toCenter := sum.Scale(1 / float32(len(neighbors))).Sub(self.Pos)

	if r.Mode == ModeVelocity {
		return toCenter.Scale(r.CohesionWeight)
	}
	target := toCenter.Normalize().Scale(self.MaxSpeed)
	return Steer(target, self.Vel, r.SteerForce).Scale(r.CohesionWeight)
}

// Separation pushes away from neighbors that are too close. The push is
// averaged over the neighbors that passed the distance test, not the whole
// neighborhood. No qualifying neighbor contributes exactly zero.
//
// Velocity mode repels from neighbors within SeparationDistance with the raw
// offset. Steering mode repels from neighbors closer than half the perception
// radius with the offset divided by distance; a coincident neighbor is counted
// but adds nothing since it has no direction.
func Separation(self Agent, neighbors []Neighbor, r Rules) Vec2 {
	var sum Vec2
	count := 0

	if r.Mode == ModeVelocity {
		for i := range neighbors {
			n := &neighbors[i]
			if n.Dist <= self.SeparationDistance {
				sum = sum.Add(self.Pos.Sub(n.Pos))
				count++
			}
		}
		if count == 0 {
			return Vec2{}
		}
		return sum.Scale(1 / float32(count)).Scale(r.SeparationWeight)
	}

	limit := self.PerceptionRadius / 2
	for i := range neighbors {
		n := &neighbors[i]
		if n.Dist >= limit {
			continue
		}
		count++
		if n.Dist > 0 {
			sum = sum.Add(self.Pos.Sub(n.Pos).Scale(1 / n.Dist))
		}
	}
	if count == 0 {
		return Vec2{}
	}
	target := sum.Scale(1 / float32(count)).Normalize().Scale(self.MaxSpeed)
	return Steer(target, self.Vel, r.SteerForce).Scale(r.SeparationWeight)
}

// Desired sums the three rule contributions into one desired-motion vector.
func Desired(self Agent, neighbors []Neighbor, r Rules) Vec2 {
	return Alignment(self, neighbors, r).
		Add(Cohesion(self, neighbors, r)).
		Add(Separation(self, neighbors, r))
}
