package systems

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/cityloop/components"
	"github.com/pthm-cable/cityloop/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func northCar(progress float64) components.Car {
	return components.Car{
		Heading:  r3.Vec{Z: -1},
		Length:   20,
		Progress: progress,
		Speed:    8,
		Cruise:   8,
	}
}

func TestCarSystem_BrakesBehindCarAhead(t *testing.T) {
	cfg := testConfig(t)
	world := ecs.NewWorld()
	mapper := ecs.NewMap3[components.ChunkRef, components.Transform, components.Car](world)
	carMap := ecs.NewMap1[components.Car](world)

	ref := components.ChunkRef{}
	behind, ahead := northCar(10), northCar(14)
	trBehind := components.Transform{Position: LanePosition(behind)}
	trAhead := components.Transform{Position: LanePosition(ahead)}
	eBehind := mapper.NewEntity(&ref, &trBehind, &behind)
	eAhead := mapper.NewEntity(&ref, &trAhead, &ahead)

	neighbors := func(dst []ecs.Entity, e ecs.Entity) []ecs.Entity {
		if e == eBehind {
			return append(dst, eAhead)
		}
		return append(dst, eBehind)
	}
	sys := NewCarSystem(world, neighbors, cfg)
	sys.Update(Frame{DT: 0.1})

	b := carMap.Get(eBehind)
	a := carMap.Get(eAhead)
	if !b.Braking {
		t.Error("car behind: Braking = false, want true")
	}
	if a.Braking {
		t.Error("car ahead: Braking = true, want false")
	}
	// 8 towards 8*0.2 by at most accel*dt = 0.6.
	if math.Abs(b.Speed-7.4) > 1e-9 {
		t.Errorf("car behind Speed = %v, want 7.4", b.Speed)
	}
	if a.Speed != 8 {
		t.Errorf("car ahead Speed = %v, want 8", a.Speed)
	}
}

func TestCarSystem_IgnoresCarInOtherLane(t *testing.T) {
	cfg := testConfig(t)
	world := ecs.NewWorld()
	mapper := ecs.NewMap3[components.ChunkRef, components.Transform, components.Car](world)
	carMap := ecs.NewMap1[components.Car](world)

	ref := components.ChunkRef{}
	me := northCar(10)
	other := northCar(13)
	other.Anchor = r3.Vec{X: 20} // parallel lane, well outside tolerance
	trMe := components.Transform{Position: LanePosition(me)}
	trOther := components.Transform{Position: LanePosition(other)}
	eMe := mapper.NewEntity(&ref, &trMe, &me)
	eOther := mapper.NewEntity(&ref, &trOther, &other)

	neighbors := func(dst []ecs.Entity, e ecs.Entity) []ecs.Entity {
		if e == eMe {
			return append(dst, eOther)
		}
		return append(dst, eMe)
	}
	NewCarSystem(world, neighbors, cfg).Update(Frame{DT: 0.1})

	if carMap.Get(eMe).Braking {
		t.Error("Braking = true for a car in a parallel lane")
	}
}

func TestCarSystem_BrakesAcrossChunkSeam(t *testing.T) {
	cfg := testConfig(t)
	world := ecs.NewWorld()
	mapper := ecs.NewMap3[components.ChunkRef, components.Transform, components.Car](world)
	carMap := ecs.NewMap1[components.Car](world)

	// Heading +X. The last column of chunks wraps onto column 0.
	n := cfg.Grid.TableSize
	span := cfg.Grid.ChunkSpan
	east := func(anchorX float64) components.Car {
		return components.Car{Anchor: r3.Vec{X: anchorX}, Heading: r3.Vec{X: 1}, Length: 20, Progress: 10, Speed: 8, Cruise: 8}
	}
	refBehind := components.ChunkRef{X: n - 1}
	refAhead := components.ChunkRef{X: 0}
	behind := east(span/2 - 2)
	ahead := east(-span/2 + 1)
	trBehind := components.Transform{Position: LanePosition(behind)}
	trAhead := components.Transform{Position: LanePosition(ahead)}
	eBehind := mapper.NewEntity(&refBehind, &trBehind, &behind)
	eAhead := mapper.NewEntity(&refAhead, &trAhead, &ahead)

	neighbors := func(dst []ecs.Entity, e ecs.Entity) []ecs.Entity {
		if e == eBehind {
			return append(dst, eAhead)
		}
		return append(dst, eBehind)
	}
	NewCarSystem(world, neighbors, cfg).Update(Frame{DT: 0.1})

	if !carMap.Get(eBehind).Braking {
		t.Error("car behind the seam: Braking = false, want true")
	}
	if carMap.Get(eAhead).Braking {
		t.Error("car ahead of the seam: Braking = true, want false")
	}
}

func TestCarSystem_ProgressWraps(t *testing.T) {
	cfg := testConfig(t)
	world := ecs.NewWorld()
	mapper := ecs.NewMap3[components.ChunkRef, components.Transform, components.Car](world)
	carMap := ecs.NewMap1[components.Car](world)
	trMap := ecs.NewMap1[components.Transform](world)

	ref := components.ChunkRef{}
	car := northCar(19.5)
	tr := components.Transform{Position: LanePosition(car)}
	e := mapper.NewEntity(&ref, &tr, &car)

	NewCarSystem(world, nil, cfg).Update(Frame{DT: 0.1})

	got := carMap.Get(e)
	if math.Abs(got.Progress-0.3) > 1e-9 {
		t.Errorf("Progress = %v, want 0.3", got.Progress)
	}
	want := r3.Vec{Z: 9.7}
	if p := trMap.Get(e).Position; math.Abs(p.Z-want.Z) > 1e-9 || p.X != 0 {
		t.Errorf("Position = %v, want %v", p, want)
	}
}

func TestApproach(t *testing.T) {
	tests := []struct {
		v, target, step, want float64
	}{
		{0, 8, 1, 1},
		{7.5, 8, 1, 8},
		{8, 1.6, 0.6, 7.4},
		{2, 1.6, 0.6, 1.6},
		{5, 5, 1, 5},
	}
	for _, tt := range tests {
		if got := approach(tt.v, tt.target, tt.step); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("approach(%v, %v, %v) = %v, want %v", tt.v, tt.target, tt.step, got, tt.want)
		}
	}
}
