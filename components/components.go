// Package components defines ECS components for the swarm.
package components

import "gonum.org/v1/gonum/spatial/r2"

// Position represents an agent's canvas position in pixels.
type Position struct {
	X, Y float64
}

// Vec returns the position as a vector.
func (p Position) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// Velocity represents an agent's velocity in pixels per second.
type Velocity struct {
	X, Y float64
}

// Vec returns the velocity as a vector.
func (v Velocity) Vec() r2.Vec {
	return r2.Vec{X: v.X, Y: v.Y}
}

// Bird holds per-agent state that is fixed at spawn or tracked across ticks.
// All fields are set when the agent is created.
type Bird struct {
	ID   uint32
	Wave uint32 // Spawn wave the agent belongs to

	Phase            float64 // Offset into noise and palette cycles
	SpeedMult        float64 // Cruise speed as a fraction of max speed
	SeparationRadius float64 // Personal space in pixels

	// Stuck detection: anchor is where the agent was when the window opened
	AnchorX, AnchorY float64
	AnchorAge        int // Ticks since the anchor was placed
	StuckTicks       int

	Slot int // Sprite pool slot
}
