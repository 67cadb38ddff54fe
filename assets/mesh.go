package assets

import (
	"maps"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kind tags what a prototype or spawned entity is.
type Kind uint8

const (
	KindBlock Kind = iota
	KindLane
	KindIntersection
	KindCar
	KindCloud
)

// String returns the tag name used in logs and exports.
func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindLane:
		return "lane"
	case KindIntersection:
		return "intersection"
	case KindCar:
		return "car"
	case KindCloud:
		return "cloud"
	}
	return "unknown"
}

// Material carries the shader defines the renderer compiles against.
type Material struct {
	Name    string
	PBR     bool
	Defines map[string]bool
}

// Clone returns a copy of m with its own define set.
func (m *Material) Clone() *Material {
	out := *m
	out.Defines = maps.Clone(m.Defines)
	if out.Defines == nil {
		out.Defines = make(map[string]bool)
	}
	return &out
}

// Mesh pairs a geometry with a material.
type Mesh struct {
	Geometry      *Geometry
	Material      *Material
	ReceiveShadow bool
}

// Prototype is an immutable pool entry.
type Prototype struct {
	Name string
	Kind Kind
	Mesh Mesh
}

// Instance is one placed copy of a prototype.
type Instance struct {
	Name      string
	Kind      Kind
	Position  r3.Vec
	RotationY float64
	Mesh      *Mesh // nil when the instance only serves as a transform anchor
}

// Instantiate returns a placed copy of p at the origin.
// Geometry is shared with the prototype; the material is copied so render
// flags can be set per instance.
func (p *Prototype) Instantiate() *Instance {
	mesh := &Mesh{
		Geometry:      p.Mesh.Geometry,
		ReceiveShadow: p.Mesh.ReceiveShadow,
	}
	if p.Mesh.Material != nil {
		mesh.Material = p.Mesh.Material.Clone()
	}
	return &Instance{
		Name: p.Name,
		Kind: p.Kind,
		Mesh: mesh,
	}
}

// Heading returns the unit forward vector for the instance's yaw.
// Yaw 0 faces -Z.
func (in *Instance) Heading() r3.Vec {
	return r3.NewRotation(in.RotationY, Up).Rotate(r3.Vec{Z: -1})
}
