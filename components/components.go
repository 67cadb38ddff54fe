// Package components defines ECS components for spawned city entities.
package components

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/cityloop/assets"
)

// ChunkRef is the grid cell that owns an entity.
type ChunkRef struct {
	X, Y int
}

// Tag identifies the entity variant.
type Tag struct {
	Kind assets.Kind
}

// Transform is an entity's placement in its chunk's local frame.
type Transform struct {
	Position  r3.Vec
	RotationY float64
}

// Model is the renderable mesh of an entity. Placement comes from Transform.
type Model struct {
	Name string
	Mesh *assets.Mesh
}

// Car holds the controller state of a car bound to one lane slot.
type Car struct {
	Lane     int     // Lane slot 0..3 within the owning chunk
	Anchor   r3.Vec  // Lane centre in chunk-local space
	Heading  r3.Vec  // Unit travel direction
	Length   float64 // Lane length
	Progress float64 // Distance travelled along the lane, [0, Length)
	Speed    float64 // Current speed
	Cruise   float64 // Preferred speed
	Braking  bool    // Set while a car ahead is inside braking distance
}

// Cloud holds the drift state of a cloud.
type Cloud struct {
	Drift r3.Vec // Velocity in units per second
	Span  float64
}
