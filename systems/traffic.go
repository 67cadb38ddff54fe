package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/cityloop/components"
	"github.com/pthm-cable/cityloop/config"
)

// NeighborFunc appends the cars near e to dst and returns the extended slice.
type NeighborFunc func(dst []ecs.Entity, e ecs.Entity) []ecs.Entity

// CarSystem drives every car along its lane and brakes behind slower traffic.
type CarSystem struct {
	filter *ecs.Filter3[components.ChunkRef, components.Transform, components.Car]
	refMap *ecs.Map1[components.ChunkRef]
	trMap  *ecs.Map1[components.Transform]

	neighbors NeighborFunc
	cfg       config.TrafficConfig
	chunkSpan float64
	worldSpan float64

	// Reused across cars; consumed fully before the next query.
	buf []ecs.Entity
}

// NewCarSystem creates the car controller system.
func NewCarSystem(world *ecs.World, neighbors NeighborFunc, cfg *config.Config) *CarSystem {
	return &CarSystem{
		filter:    ecs.NewFilter3[components.ChunkRef, components.Transform, components.Car](world),
		refMap:    ecs.NewMap1[components.ChunkRef](world),
		trMap:     ecs.NewMap1[components.Transform](world),
		neighbors: neighbors,
		cfg:       cfg.Traffic,
		chunkSpan: cfg.Grid.ChunkSpan,
		worldSpan: cfg.Derived.WorldSpan,
		buf:       make([]ecs.Entity, 0, 32),
	}
}

// Name returns the system ID used for perf phases.
func (s *CarSystem) Name() string { return "cars" }

// Update advances all cars by one frame.
func (s *CarSystem) Update(f Frame) {
	query := s.filter.Query()
	for query.Next() {
		e := query.Entity()
		ref, tr, car := query.Get()

		car.Braking = s.carAhead(e, *ref, tr.Position, car.Heading)

		target := car.Cruise
		if car.Braking {
			target *= s.cfg.BrakeFactor
		}
		car.Speed = approach(car.Speed, target, s.cfg.Accel*f.DT)

		car.Progress += car.Speed * f.DT
		if car.Length > 0 {
			car.Progress = math.Mod(car.Progress, car.Length)
		}
		tr.Position = LanePosition(*car)
	}
}

// LanePosition returns where a car sits on its lane for its current progress.
func LanePosition(car components.Car) r3.Vec {
	return r3.Add(car.Anchor, r3.Scale(car.Progress-car.Length/2, car.Heading))
}

// carAhead reports whether another car is in front of e, in its lane, inside
// braking distance.
func (s *CarSystem) carAhead(e ecs.Entity, ref components.ChunkRef, local, heading r3.Vec) bool {
	if s.neighbors == nil {
		return false
	}
	s.buf = s.neighbors(s.buf[:0], e)
	if len(s.buf) == 0 {
		return false
	}

	me := WorldPosition(ref, local, s.chunkSpan)
	for _, n := range s.buf {
		nref := s.refMap.Get(n)
		ntr := s.trMap.Get(n)
		if nref == nil || ntr == nil {
			continue
		}
		other := WorldPosition(*nref, ntr.Position, s.chunkSpan)
		dx, dz := ToroidalDelta(me.X, me.Z, other.X, other.Z, s.worldSpan, s.worldSpan)
		d := r3.Vec{X: dx, Z: dz}

		ahead := r3.Dot(d, heading)
		if ahead <= 0 || ahead > s.cfg.BrakeDistance {
			continue
		}
		lateral := r3.Norm(r3.Sub(d, r3.Scale(ahead, heading)))
		if lateral <= s.cfg.LaneTolerance {
			return true
		}
	}
	return false
}

// approach moves v towards target by at most step.
func approach(v, target, step float64) float64 {
	if v < target {
		return math.Min(v+step, target)
	}
	return math.Max(v-step, target)
}
