package assets

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func proto(name string, kind Kind) *Prototype {
	return &Prototype{
		Name: name,
		Kind: kind,
		Mesh: Mesh{
			Geometry: BoxGeometry(1, 1, 1),
			Material: &Material{Name: name, PBR: true, Defines: map[string]bool{}},
		},
	}
}

// fixedRand returns the same value on every call.
type fixedRand float64

func (f fixedRand) Float64() float64 { return float64(f) }

func TestPoolDrawEmpty(t *testing.T) {
	p := NewPool(KindCar)
	_, err := p.Draw(fixedRand(0.5))
	if !errors.Is(err, ErrEmptyPool) {
		t.Errorf("Draw on empty pool error = %v, want %v", err, ErrEmptyPool)
	}
}

func TestPoolDrawIndex(t *testing.T) {
	p := NewPool(KindBlock, proto("a", KindBlock), proto("b", KindBlock), proto("c", KindBlock))
	tests := []struct {
		r    float64
		want string
	}{
		{0, "a"},
		{0.33, "a"},
		{0.34, "b"},
		{0.67, "c"},
		{0.999999, "c"},
		{1, "c"}, // out-of-range sources clamp to the last entry
	}
	for _, tt := range tests {
		got, err := p.Draw(fixedRand(tt.r))
		if err != nil {
			t.Fatalf("Draw(%v): %v", tt.r, err)
		}
		if got.Name != tt.want {
			t.Errorf("Draw(%v) = %q, want %q", tt.r, got.Name, tt.want)
		}
	}
}

func TestNewPoolCopiesSlice(t *testing.T) {
	protos := []*Prototype{proto("a", KindCar), proto("b", KindCar)}
	p := NewPool(KindCar, protos...)
	protos[0] = proto("z", KindCar)
	if got := p.At(0).Name; got != "a" {
		t.Errorf("At(0) = %q after caller mutation, want %q", got, "a")
	}
}

func TestWeightedPoolRatio(t *testing.T) {
	p, err := NewWeightedPool(KindLane, []Weighted{
		{Proto: proto("Road_Lane_01_fixed", KindLane), Weight: 10},
		{Proto: proto("Road_Lane_03_fixed", KindLane), Weight: 5},
	})
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewSource(7))
	counts := map[string]int{}
	const draws = 10000
	for i := 0; i < draws; i++ {
		got, err := p.Draw(rng)
		if err != nil {
			t.Fatal(err)
		}
		counts[got.Name]++
	}

	frac := float64(counts["Road_Lane_01_fixed"]) / draws
	if math.Abs(frac-2.0/3.0) > 0.03 {
		t.Errorf("Road_Lane_01_fixed fraction = %.3f, want ~0.667", frac)
	}
	if counts["Road_Lane_01_fixed"]+counts["Road_Lane_03_fixed"] != draws {
		t.Errorf("counts = %v, want only the two weighted lanes", counts)
	}
}

func TestWeightedPoolMatchesPaddedPool(t *testing.T) {
	l1, l3 := proto("Road_Lane_01_fixed", KindLane), proto("Road_Lane_03_fixed", KindLane)
	weighted, err := NewWeightedPool(KindLane, []Weighted{{l1, 2}, {l3, 1}})
	if err != nil {
		t.Fatal(err)
	}
	padded := NewPool(KindLane, l1, l1, l3)

	for _, r := range []float64{0, 0.2, 0.5, 0.66, 0.67, 0.9, 0.99} {
		w, _ := weighted.Draw(fixedRand(r))
		p, _ := padded.Draw(fixedRand(r))
		if w.Name != p.Name {
			t.Errorf("r=%v: weighted = %q, padded = %q", r, w.Name, p.Name)
		}
	}
}

func TestNewWeightedPool(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		wantLen int
		wantErr bool
	}{
		{"all positive", []float64{10, 5}, 2, false},
		{"zero dropped", []float64{10, 0, 5}, 2, false},
		{"negative dropped", []float64{-1, 5}, 1, false},
		{"all zero", []float64{0, 0}, 0, false},
		{"nan", []float64{1, math.NaN()}, 0, true},
		{"inf", []float64{math.Inf(1)}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := make([]Weighted, len(tt.weights))
			for i, w := range tt.weights {
				entries[i] = Weighted{Proto: proto("lane", KindLane), Weight: w}
			}
			p, err := NewWeightedPool(KindLane, entries)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewWeightedPool error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && p.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", p.Len(), tt.wantLen)
			}
		})
	}
}

func TestWeightedPoolDrawEmpty(t *testing.T) {
	p, _ := NewWeightedPool(KindLane, []Weighted{{Proto: proto("a", KindLane), Weight: 0}})
	if _, err := p.Draw(fixedRand(0.1)); !errors.Is(err, ErrEmptyPool) {
		t.Errorf("Draw error = %v, want %v", err, ErrEmptyPool)
	}
}

func TestProbabilities(t *testing.T) {
	a, b := proto("a", KindLane), proto("b", KindLane)
	weighted, _ := NewWeightedPool(KindLane, []Weighted{{a, 10}, {b, 5}})
	padded := NewPool(KindLane, a, a, b)

	for name, d := range map[string]Drawer{"weighted": weighted, "padded": padded} {
		got := Probabilities(d)
		if math.Abs(got["a"]-2.0/3.0) > 1e-9 || math.Abs(got["b"]-1.0/3.0) > 1e-9 {
			t.Errorf("%s: Probabilities() = %v, want a:0.667 b:0.333", name, got)
		}
	}
}
