package city

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/cityloop/assets"
)

// Chunk is one cell of the city grid. Chunks are built once and never regenerated.
type Chunk struct {
	X, Y int

	Block        *assets.Instance
	BlockQuarter int // Block yaw in quarter turns, 0..3

	// Lanes[0] carries the merged geometry of all four slots.
	// Slots 1..3 have no mesh and only anchor cars.
	Lanes        [4]*assets.Instance
	Intersection *assets.Instance

	// Mobs lists the owned car and cloud entities in spawn order.
	Mobs []ecs.Entity

	// Relaxed is set when the block had to be picked despite matching a neighbour.
	Relaxed  bool
	Attempts int
}

// meshes returns the static meshes of the chunk: block, merged lanes and intersection.
func (c *Chunk) meshes() []*assets.Mesh {
	out := make([]*assets.Mesh, 0, 3)
	if c.Block != nil && c.Block.Mesh != nil {
		out = append(out, c.Block.Mesh)
	}
	for _, lane := range c.Lanes {
		if lane != nil && lane.Mesh != nil {
			out = append(out, lane.Mesh)
		}
	}
	if c.Intersection != nil && c.Intersection.Mesh != nil {
		out = append(out, c.Intersection.Mesh)
	}
	return out
}

// laneNames returns the prototype name of each lane slot.
func (c *Chunk) laneNames() [4]string {
	var names [4]string
	for i, lane := range c.Lanes {
		if lane != nil {
			names[i] = lane.Name
		}
	}
	return names
}
