package city

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/cityloop/assets"
)

// laneSlot is the fixed placement of one lane segment in the chunk cross.
// Geometry is rotated by yaw then shifted into slot 0's frame before merging.
type laneSlot struct {
	pos   r3.Vec
	yaw   float64
	shift r3.Vec
}

var laneSlots = [4]laneSlot{
	{pos: r3.Vec{X: -30, Z: 10}},
	{pos: r3.Vec{X: -30, Z: -10}, shift: r3.Vec{Z: -20}},
	{pos: r3.Vec{X: -10, Z: -30}, yaw: math.Pi / 2, shift: r3.Vec{X: 20, Z: -40}},
	{pos: r3.Vec{X: 10, Z: -30}, yaw: math.Pi / 2, shift: r3.Vec{X: 40, Z: -40}},
}

var intersectionPos = r3.Vec{X: -30, Z: 30}

// frame maps lane geometry into slot 0's local frame.
func (s laneSlot) frame(g *assets.Geometry) *assets.Geometry {
	if s.yaw != 0 {
		g = g.RotatedY(s.yaw)
	}
	return g.Translated(s.shift)
}

// assembleLanes draws the four lane segments and the intersection for chunk.
func (c *City) assembleLanes(chunk *Chunk) error {
	var geoms [4]*assets.Geometry
	for i, slot := range laneSlots {
		proto, err := c.catalog.Lanes.Draw(c.rng)
		if err != nil {
			return err
		}
		inst := proto.Instantiate()
		inst.Position = slot.pos
		inst.RotationY = slot.yaw
		if inst.Mesh.Geometry == nil {
			return fmt.Errorf("lane %q has no geometry", proto.Name)
		}
		geoms[i] = slot.frame(inst.Mesh.Geometry)
		chunk.Lanes[i] = inst
	}

	merged, err := assets.MergeGeometries(geoms[:]...)
	if err != nil {
		return fmt.Errorf("merging lanes: %w", err)
	}
	chunk.Lanes[0].Mesh.Geometry = merged
	for _, lane := range chunk.Lanes[1:] {
		lane.Mesh = nil
	}

	proto, err := c.catalog.Intersections.Draw(c.rng)
	if err != nil {
		return err
	}
	chunk.Intersection = proto.Instantiate()
	chunk.Intersection.Position = intersectionPos
	return nil
}
