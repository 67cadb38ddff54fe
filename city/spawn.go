package city

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/cityloop/assets"
	"github.com/pthm-cable/cityloop/components"
	"github.com/pthm-cable/cityloop/systems"
)

// Material defines toggled by the render-flag pass.
const (
	DefineFog       = "USE_FOG"
	DefineShadowMap = "USE_SHADOWMAP"
)

// spawnMobs rolls a car for every lane slot and one cloud for the chunk.
func (c *City) spawnMobs(chunk *Chunk) error {
	for i, lane := range chunk.Lanes {
		if c.rng.Float64() >= c.cfg.Derived.CarChance {
			continue
		}
		if err := c.spawnCar(chunk, i, lane); err != nil {
			return err
		}
	}
	if c.rng.Float64() > c.cfg.Spawn.CloudThreshold {
		if err := c.spawnCloud(chunk); err != nil {
			return err
		}
	}
	return nil
}

// spawnCar places a car on lane slot i, somewhere along its length.
func (c *City) spawnCar(chunk *Chunk, i int, lane *assets.Instance) error {
	proto, err := c.catalog.Cars.Draw(c.rng)
	if err != nil {
		return err
	}
	tc := c.cfg.Traffic
	cruise := tc.CruiseSpeed * (1 + tc.SpeedJitter*(2*c.rng.Float64()-1))

	car := components.Car{
		Lane:     i,
		Anchor:   lane.Position,
		Heading:  lane.Heading(),
		Length:   tc.LaneLength,
		Progress: c.rng.Float64() * tc.LaneLength,
		Speed:    cruise,
		Cruise:   cruise,
	}
	ref := components.ChunkRef{X: chunk.X, Y: chunk.Y}
	tag := components.Tag{Kind: assets.KindCar}
	tr := components.Transform{Position: systems.LanePosition(car), RotationY: lane.RotationY}
	inst := proto.Instantiate()
	model := components.Model{Name: inst.Name, Mesh: inst.Mesh}

	e := c.carMapper.NewEntity(&ref, &tag, &tr, &model, &car)
	c.register(chunk, e)
	return nil
}

// spawnCloud places a cloud at a random point above the chunk with a random wind.
func (c *City) spawnCloud(chunk *Chunk) error {
	proto, err := c.catalog.Clouds.Draw(c.rng)
	if err != nil {
		return err
	}
	span := c.cfg.Grid.ChunkSpan
	angle := c.rng.Float64() * 2 * math.Pi

	cloud := components.Cloud{
		Drift: r3.Vec{
			X: math.Cos(angle) * c.cfg.Clouds.DriftSpeed,
			Z: math.Sin(angle) * c.cfg.Clouds.DriftSpeed,
		},
		Span: span,
	}
	ref := components.ChunkRef{X: chunk.X, Y: chunk.Y}
	tag := components.Tag{Kind: assets.KindCloud}
	tr := components.Transform{Position: r3.Vec{
		X: (c.rng.Float64() - 0.5) * span,
		Y: c.cfg.Clouds.Altitude,
		Z: (c.rng.Float64() - 0.5) * span,
	}}
	inst := proto.Instantiate()
	model := components.Model{Name: inst.Name, Mesh: inst.Mesh}

	e := c.cloudMapper.NewEntity(&ref, &tag, &tr, &model, &cloud)
	c.register(chunk, e)
	return nil
}

// register records e as owned by chunk and in the flat registry.
func (c *City) register(chunk *Chunk, e ecs.Entity) {
	chunk.Mobs = append(chunk.Mobs, e)
	c.mobs = append(c.mobs, e)
}

// applyRenderFlags sets fog and shadow defines on every mesh of chunk,
// including the models of its mobs.
func (c *City) applyRenderFlags(chunk *Chunk) {
	for _, m := range chunk.meshes() {
		c.applyMeshFlags(m, false)
	}
	for _, e := range chunk.Mobs {
		model := c.modelMap.Get(e)
		tag := c.tagMap.Get(e)
		c.applyMeshFlags(model.Mesh, tag.Kind == assets.KindCloud)
	}
}

// applyMeshFlags enables fog on PBR materials, and shadows unless the mesh is a cloud.
func (c *City) applyMeshFlags(m *assets.Mesh, cloud bool) {
	if m == nil || m.Material == nil || !m.Material.PBR {
		return
	}
	if m.Material.Defines == nil {
		m.Material.Defines = make(map[string]bool)
	}
	m.Material.Defines[DefineFog] = true
	if cloud {
		return
	}
	m.ReceiveShadow = true
	m.Material.Defines[DefineShadowMap] = true
	if t := c.cfg.Render.ShadowMapType; t != "" {
		m.Material.Defines[t] = true
	}
}
