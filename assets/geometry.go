// Package assets holds the prototype meshes the generator draws from.
//
// Prototypes are immutable once built. Every per-chunk use goes through
// Instantiate, which copies the mutable parts (material, transform) and shares
// geometry. Geometry transforms always return a new Geometry.
package assets

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

// Up is the vertical axis used for yaw rotations.
var Up = r3.Vec{Y: 1}

// Geometry is a vertex buffer with a triangle index list.
type Geometry struct {
	Positions []r3.Vec
	Indices   []uint32
}

// Clone returns a deep copy of g.
func (g *Geometry) Clone() *Geometry {
	out := &Geometry{
		Positions: make([]r3.Vec, len(g.Positions)),
		Indices:   make([]uint32, len(g.Indices)),
	}
	copy(out.Positions, g.Positions)
	copy(out.Indices, g.Indices)
	return out
}

// Translated returns a copy of g moved by d.
func (g *Geometry) Translated(d r3.Vec) *Geometry {
	out := g.Clone()
	for i, p := range out.Positions {
		out.Positions[i] = r3.Add(p, d)
	}
	return out
}

// RotatedY returns a copy of g rotated by angle radians about the vertical axis.
func (g *Geometry) RotatedY(angle float64) *Geometry {
	out := g.Clone()
	rot := r3.NewRotation(angle, Up)
	for i, p := range out.Positions {
		out.Positions[i] = rot.Rotate(p)
	}
	return out
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions)
}

// Bounds returns the axis-aligned bounding box of g.
func (g *Geometry) Bounds() (min, max r3.Vec) {
	if len(g.Positions) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	min, max = g.Positions[0], g.Positions[0]
	for _, p := range g.Positions[1:] {
		min = r3.Vec{X: minf(min.X, p.X), Y: minf(min.Y, p.Y), Z: minf(min.Z, p.Z)}
		max = r3.Vec{X: maxf(max.X, p.X), Y: maxf(max.Y, p.Y), Z: maxf(max.Z, p.Z)}
	}
	return min, max
}

// MergeGeometries concatenates geometries into one buffer, rebasing indices.
func MergeGeometries(gs ...*Geometry) (*Geometry, error) {
	if len(gs) == 0 {
		return nil, errors.New("assets: no geometries to merge")
	}
	var nv, ni int
	for _, g := range gs {
		if g == nil {
			return nil, errors.New("assets: nil geometry in merge")
		}
		nv += len(g.Positions)
		ni += len(g.Indices)
	}
	out := &Geometry{
		Positions: make([]r3.Vec, 0, nv),
		Indices:   make([]uint32, 0, ni),
	}
	for _, g := range gs {
		base := uint32(len(out.Positions))
		out.Positions = append(out.Positions, g.Positions...)
		for _, idx := range g.Indices {
			out.Indices = append(out.Indices, base+idx)
		}
	}
	return out, nil
}

// BoxGeometry builds an axis-aligned box centred on the origin at ground level.
// It stands in for decoded meshes when no asset loader is attached.
func BoxGeometry(sx, sy, sz float64) *Geometry {
	hx, hz := sx/2, sz/2
	g := &Geometry{
		Positions: []r3.Vec{
			{X: -hx, Y: 0, Z: -hz}, {X: hx, Y: 0, Z: -hz}, {X: hx, Y: 0, Z: hz}, {X: -hx, Y: 0, Z: hz},
			{X: -hx, Y: sy, Z: -hz}, {X: hx, Y: sy, Z: -hz}, {X: hx, Y: sy, Z: hz}, {X: -hx, Y: sy, Z: hz},
		},
		Indices: []uint32{
			0, 2, 1, 0, 3, 2, // bottom
			4, 5, 6, 4, 6, 7, // top
			0, 1, 5, 0, 5, 4,
			1, 2, 6, 1, 6, 5,
			2, 3, 7, 2, 7, 6,
			3, 0, 4, 3, 4, 7,
		},
	}
	return g
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
