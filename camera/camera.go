// Package camera provides the fly-through focus point that frames are built around.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera glides across the toroidal city at a fixed heading and height.
type Camera struct {
	// Position is the camera location in world coordinates
	X, Z float64
	// Height above the ground plane
	Y float64

	// Yaw in radians; 0 faces -Z
	Yaw float64
	// Speed in world units per second
	Speed float64

	// World dimensions (for toroidal wrapping)
	WorldSpan, ChunkSpan float64
}

// New creates a camera over the centre of chunk (0, 0).
func New(worldSpan, chunkSpan, height, yaw, speed float64) *Camera {
	return &Camera{
		Y:         height,
		Yaw:       yaw,
		Speed:     speed,
		WorldSpan: worldSpan,
		ChunkSpan: chunkSpan,
	}
}

// Advance moves the camera forward by dt seconds.
// Automatically wraps around world boundaries.
func (c *Camera) Advance(dt float64) {
	d := c.Speed * dt
	c.X = wrap(c.X-math.Sin(c.Yaw)*d, c.WorldSpan)
	c.Z = wrap(c.Z-math.Cos(c.Yaw)*d, c.WorldSpan)
}

// Focus returns the camera position as a world-space vector.
func (c *Camera) Focus() r3.Vec {
	return r3.Vec{X: c.X, Y: c.Y, Z: c.Z}
}

// Chunk returns the grid cell the camera is over.
// Chunk (x, y) covers world X in [x*span - span/2, x*span + span/2).
func (c *Camera) Chunk() (x, y int) {
	if c.ChunkSpan <= 0 {
		return 0, 0
	}
	n := int(math.Round(c.WorldSpan / c.ChunkSpan))
	x = int(math.Floor(c.X/c.ChunkSpan + 0.5))
	y = int(math.Floor(c.Z/c.ChunkSpan + 0.5))
	if n > 0 {
		x = ((x % n) + n) % n
		y = ((y % n) + n) % n
	}
	return x, y
}

// IsVisible returns true if a sphere at (wx, wz) with given radius lies
// within viewDist of the camera on the ground plane.
func (c *Camera) IsVisible(wx, wz, radius, viewDist float64) bool {
	dx := toroidalDelta(wx, c.X, c.WorldSpan)
	dz := toroidalDelta(wz, c.Z, c.WorldSpan)
	return math.Hypot(dx, dz) <= viewDist+radius
}

// toroidalDelta computes the shortest signed distance from 'from' to 'to'
// in a toroidal space of the given size.
func toroidalDelta(to, from, size float64) float64 {
	d := to - from
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}

// wrap computes the positive modulo (Go's % can return negative).
func wrap(x, m float64) float64 {
	if m <= 0 {
		return x
	}
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}
