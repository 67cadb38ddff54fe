// Package systems provides the per-frame ECS systems for spawned city entities.
package systems

import "gonum.org/v1/gonum/spatial/r3"

// Frame is the per-frame input handed to every updater.
type Frame struct {
	Tick  uint64
	DT    float64 // Seconds since the previous frame
	Focus r3.Vec  // World-space point of interest, usually the camera
}

// Updater is a system advanced once per external frame.
type Updater interface {
	Name() string
	Update(f Frame)
}
