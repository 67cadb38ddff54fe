// Package city builds the toroidal chunk grid and drives its cars and clouds.
package city

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/cityloop/assets"
	"github.com/pthm-cable/cityloop/components"
	"github.com/pthm-cable/cityloop/config"
	"github.com/pthm-cable/cityloop/grid"
	"github.com/pthm-cable/cityloop/systems"
	"github.com/pthm-cable/cityloop/telemetry"
)

// ErrInvalidTableSize is returned by New when the grid would have no cells.
var ErrInvalidTableSize = errors.New("city: table size must be at least 1")

// City holds the generated grid and the mob registry.
type City struct {
	cfg     *config.Config
	catalog *assets.Catalog
	rng     assets.RandSource
	grid    *grid.Grid[*Chunk]

	world *ecs.World

	// Entity mappers
	carMapper *ecs.Map5[
		components.ChunkRef,
		components.Tag,
		components.Transform,
		components.Model,
		components.Car,
	]
	cloudMapper *ecs.Map5[
		components.ChunkRef,
		components.Tag,
		components.Transform,
		components.Model,
		components.Cloud,
	]

	// Individual component mappers for lookups
	refMap   *ecs.Map1[components.ChunkRef]
	tagMap   *ecs.Map1[components.Tag]
	trMap    *ecs.Map1[components.Transform]
	modelMap *ecs.Map1[components.Model]
	carMap   *ecs.Map1[components.Car]

	mobs     []ecs.Entity
	updaters []systems.Updater

	perf  *telemetry.PerfCollector
	stats *telemetry.GenerationStats
	tick  uint64
}

// New validates the catalog and generates the full grid before returning.
func New(cfg *config.Config, catalog *assets.Catalog, rng assets.RandSource) (*City, error) {
	if cfg.Grid.TableSize < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidTableSize, cfg.Grid.TableSize)
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	offsets, err := grid.Neighborhood(cfg.Grid.Neighborhood)
	if err != nil {
		return nil, err
	}

	world := ecs.NewWorld()
	c := &City{
		cfg:     cfg,
		catalog: catalog,
		rng:     rng,
		grid:    grid.New[*Chunk](cfg.Grid.TableSize, offsets),
		world:   world,
		carMapper: ecs.NewMap5[
			components.ChunkRef,
			components.Tag,
			components.Transform,
			components.Model,
			components.Car,
		](world),
		cloudMapper: ecs.NewMap5[
			components.ChunkRef,
			components.Tag,
			components.Transform,
			components.Model,
			components.Cloud,
		](world),
		refMap:   ecs.NewMap1[components.ChunkRef](world),
		tagMap:   ecs.NewMap1[components.Tag](world),
		trMap:    ecs.NewMap1[components.Transform](world),
		modelMap: ecs.NewMap1[components.Model](world),
		carMap:   ecs.NewMap1[components.Car](world),
		perf:     telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		stats:    telemetry.NewGenerationStats(cfg.Grid.TableSize),
	}
	c.updaters = []systems.Updater{
		systems.NewCarSystem(world, c.NeighboringCars, cfg),
		systems.NewCloudSystem(world, cfg.Grid.ChunkSpan, cfg.Derived.WorldSpan),
	}

	if err := c.generate(); err != nil {
		return nil, err
	}
	return c, nil
}

// generate builds every chunk in row-major order.
func (c *City) generate() error {
	start := time.Now()
	sess := &session{}
	n := c.grid.Size()

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			chunk, err := c.buildChunk(sess, x, y)
			if err != nil {
				return fmt.Errorf("chunk (%d,%d): %w", x, y, err)
			}
			c.grid.Set(x, y, chunk)
			c.stats.RecordChunk(c.record(chunk))
		}
	}

	c.stats.StadiumPlaced = sess.stadiumPlaced
	c.stats.Finish(time.Since(start), assets.Probabilities(c.catalog.Lanes))
	c.stats.LogStats()
	if sess.relaxed > 0 {
		slog.Warn("adjacency relaxed", "chunks", sess.relaxed, "table_size", n)
	}
	return nil
}

// buildChunk assembles one chunk: block, lane cross, intersection, mobs, render flags.
func (c *City) buildChunk(sess *session, x, y int) (*Chunk, error) {
	before := sess.attempts
	block, relaxed, err := c.pickBlock(sess, x, y)
	if err != nil {
		return nil, err
	}
	chunk := &Chunk{
		X:            x,
		Y:            y,
		Block:        block,
		BlockQuarter: quarterTurns(block.RotationY),
		Relaxed:      relaxed,
		Attempts:     sess.attempts - before,
	}
	if err := c.assembleLanes(chunk); err != nil {
		return nil, err
	}
	if err := c.spawnMobs(chunk); err != nil {
		return nil, err
	}
	c.applyRenderFlags(chunk)
	return chunk, nil
}

// record converts a chunk into its telemetry row.
func (c *City) record(chunk *Chunk) telemetry.ChunkRecord {
	names := chunk.laneNames()
	r := telemetry.ChunkRecord{
		X:            chunk.X,
		Y:            chunk.Y,
		Block:        chunk.Block.Name,
		BlockQuarter: chunk.BlockQuarter,
		Lanes:        strings.Join(names[:], "|"),
		Attempts:     chunk.Attempts,
		Relaxed:      chunk.Relaxed,
	}
	if chunk.Intersection != nil {
		r.Intersection = chunk.Intersection.Name
	}
	for _, e := range chunk.Mobs {
		switch c.tagMap.Get(e).Kind {
		case assets.KindCar:
			r.Cars++
		case assets.KindCloud:
			r.Clouds++
		}
	}
	return r
}

// Update advances every mob system by one frame.
func (c *City) Update(f systems.Frame) {
	c.perf.StartTick()
	for _, u := range c.updaters {
		c.perf.StartPhase(u.Name())
		u.Update(f)
	}
	c.perf.EndTick()
	c.tick++
}

// ChunkAt returns the chunk at (x, y); coordinates wrap around the grid.
func (c *City) ChunkAt(x, y int) (*Chunk, bool) {
	return c.grid.At(x, y)
}

// TableSize returns the number of chunks per side.
func (c *City) TableSize() int {
	return c.grid.Size()
}

// Mobs returns every spawned entity in spawn order. The slice must not be modified.
func (c *City) Mobs() []ecs.Entity {
	return c.mobs
}

// Kind returns the tag of a mob.
func (c *City) Kind(e ecs.Entity) (assets.Kind, bool) {
	if !c.world.Alive(e) || !c.tagMap.HasAll(e) {
		return 0, false
	}
	return c.tagMap.Get(e).Kind, true
}

// Transform returns the chunk-local placement of a mob.
func (c *City) Transform(e ecs.Entity) (components.ChunkRef, components.Transform, bool) {
	if !c.world.Alive(e) || !c.trMap.HasAll(e) {
		return components.ChunkRef{}, components.Transform{}, false
	}
	return *c.refMap.Get(e), *c.trMap.Get(e), true
}

// Stats returns the generation summary.
func (c *City) Stats() *telemetry.GenerationStats {
	return c.stats
}

// Perf returns frame timing over the configured window.
func (c *City) Perf() telemetry.PerfStats {
	return c.perf.Stats()
}

// Tick returns the number of frames run so far.
func (c *City) Tick() uint64 {
	return c.tick
}

// Layout captures the grid and the current mob state for a snapshot.
func (c *City) Layout() *telemetry.Layout {
	l := &telemetry.Layout{
		Header: telemetry.LayoutHeader{
			Version:      telemetry.SnapshotVersion,
			Seed:         c.cfg.Seed,
			TableSize:    c.grid.Size(),
			ChunkSpan:    c.cfg.Grid.ChunkSpan,
			Neighborhood: c.cfg.Grid.Neighborhood,
			Tick:         c.tick,
		},
		Chunks: make([]telemetry.ChunkState, 0, c.grid.Filled()),
	}
	c.grid.ForEach(func(_, _ int, chunk *Chunk) {
		state := telemetry.ChunkState{
			X:            chunk.X,
			Y:            chunk.Y,
			Block:        chunk.Block.Name,
			BlockQuarter: chunk.BlockQuarter,
			Lanes:        chunk.laneNames(),
			Relaxed:      chunk.Relaxed,
			Mobs:         make([]telemetry.MobState, 0, len(chunk.Mobs)),
		}
		if chunk.Intersection != nil {
			state.Intersection = chunk.Intersection.Name
		}
		for _, e := range chunk.Mobs {
			tr := c.trMap.Get(e)
			mob := telemetry.MobState{
				Kind:      c.tagMap.Get(e).Kind.String(),
				Model:     c.modelMap.Get(e).Name,
				X:         tr.Position.X,
				Y:         tr.Position.Y,
				Z:         tr.Position.Z,
				RotationY: tr.RotationY,
				Lane:      -1,
			}
			if c.carMap.HasAll(e) {
				car := c.carMap.Get(e)
				mob.Lane = car.Lane
				mob.Speed = car.Speed
			}
			state.Mobs = append(state.Mobs, mob)
		}
		l.Chunks = append(l.Chunks, state)
	})
	return l
}
