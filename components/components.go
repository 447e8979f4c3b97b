// Package components defines ECS components for the simulation.
package components

// Position represents an agent's world position.
type Position struct {
	X, Y float32
}

// Velocity represents an agent's velocity in world units per second.
type Velocity struct {
	X, Y float32
}

// Acceleration is the steering influence carried between frames.
type Acceleration struct {
	X, Y float32
}

// Rotation holds the agent's heading, derived from velocity each frame.
type Rotation struct {
	Heading float32 // radians
}

// Body holds the visual footprint of an agent.
// Boundary wrap uses it so an agent leaves the bounds fully before it reappears.
type Body struct {
	Scale float32
}

// Boid holds identity and per-agent tunables.
type Boid struct {
	ID                 uint32  // stable for the whole run
	MaxSpeed           float32 // velocity magnitude bound
	PerceptionRadius   float32 // neighbor radius for alignment/cohesion
	SeparationDistance float32 // repulsion radius (velocity mode)
}
