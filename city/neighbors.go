package city

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/cityloop/assets"
)

// NeighboringCars appends to dst every car sharing e's chunk or a neighbouring
// chunk, and returns the extended slice. e itself is never included.
// Pass dst[:0] to reuse a buffer. Entities that are not live cars leave dst unchanged.
func (c *City) NeighboringCars(dst []ecs.Entity, e ecs.Entity) []ecs.Entity {
	if !c.world.Alive(e) || !c.carMap.HasAll(e) {
		return dst
	}
	ref := c.refMap.Get(e)

	if home, ok := c.grid.At(ref.X, ref.Y); ok {
		dst = c.appendCars(dst, home, e)
	}
	c.grid.ForEachNeighbor(ref.X, ref.Y, func(_, _ int, n *Chunk) {
		dst = c.appendCars(dst, n, e)
	})
	return dst
}

func (c *City) appendCars(dst []ecs.Entity, chunk *Chunk, skip ecs.Entity) []ecs.Entity {
	for _, m := range chunk.Mobs {
		if m == skip {
			continue
		}
		if c.tagMap.Get(m).Kind == assets.KindCar {
			dst = append(dst, m)
		}
	}
	return dst
}
