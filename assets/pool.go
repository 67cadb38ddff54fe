package assets

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrEmptyPool is returned when a draw is made from a pool with no entries.
var ErrEmptyPool = errors.New("assets: empty pool")

// RandSource supplies uniform draws in [0, 1). *rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
}

// Drawer picks one prototype per call.
type Drawer interface {
	Draw(r RandSource) (*Prototype, error)
	Len() int
}

// Pool is a uniform selection over prototypes.
// Duplicate entries raise an entry's share, which is how padded pools weight lanes.
type Pool struct {
	kind   Kind
	protos []*Prototype
}

// NewPool creates a uniform pool. The slice is copied.
func NewPool(kind Kind, protos ...*Prototype) *Pool {
	p := &Pool{kind: kind, protos: make([]*Prototype, len(protos))}
	copy(p.protos, protos)
	return p
}

// Draw returns a uniformly chosen prototype.
func (p *Pool) Draw(r RandSource) (*Prototype, error) {
	if len(p.protos) == 0 {
		return nil, fmt.Errorf("%s pool: %w", p.kind, ErrEmptyPool)
	}
	return p.protos[pickIndex(r, len(p.protos))], nil
}

// Len returns the number of entries, duplicates included.
func (p *Pool) Len() int {
	return len(p.protos)
}

// At returns the i-th entry.
func (p *Pool) At(i int) *Prototype {
	return p.protos[i]
}

// Kind returns the kind of prototypes the pool holds.
func (p *Pool) Kind() Kind {
	return p.kind
}

// Weighted is one weight table entry.
type Weighted struct {
	Proto  *Prototype
	Weight float64
}

// WeightedPool selects prototypes by cumulative distribution over explicit weights.
type WeightedPool struct {
	kind   Kind
	protos []*Prototype
	cdf    []float64
	total  float64
}

// NewWeightedPool builds a weight table. Entries with weight <= 0 are dropped.
func NewWeightedPool(kind Kind, entries []Weighted) (*WeightedPool, error) {
	p := &WeightedPool{kind: kind}
	for _, e := range entries {
		if math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
			return nil, fmt.Errorf("%s pool: invalid weight %v for %q", kind, e.Weight, e.Proto.Name)
		}
		if e.Weight <= 0 {
			continue
		}
		p.total += e.Weight
		p.protos = append(p.protos, e.Proto)
		p.cdf = append(p.cdf, p.total)
	}
	return p, nil
}

// Draw returns a prototype with probability proportional to its weight.
func (p *WeightedPool) Draw(r RandSource) (*Prototype, error) {
	if len(p.protos) == 0 {
		return nil, fmt.Errorf("%s pool: %w", p.kind, ErrEmptyPool)
	}
	target := r.Float64() * p.total
	// First entry whose cumulative weight exceeds the target.
	i := sort.Search(len(p.cdf), func(i int) bool { return p.cdf[i] > target })
	if i == len(p.cdf) {
		i = len(p.cdf) - 1
	}
	return p.protos[i], nil
}

// Len returns the number of entries with positive weight.
func (p *WeightedPool) Len() int {
	return len(p.protos)
}

// Probability returns the selection probability of the named prototype.
func (p *WeightedPool) Probability(name string) float64 {
	if p.total == 0 {
		return 0
	}
	var prev, sum float64
	for i, proto := range p.protos {
		if proto.Name == name {
			sum += p.cdf[i] - prev
		}
		prev = p.cdf[i]
	}
	return sum / p.total
}

func pickIndex(r RandSource, n int) int {
	i := int(math.Floor(r.Float64() * float64(n)))
	if i >= n {
		i = n - 1
	}
	return i
}

// Probabilities returns the selection probability of each distinct prototype name in d.
func Probabilities(d Drawer) map[string]float64 {
	out := make(map[string]float64)
	switch p := d.(type) {
	case *WeightedPool:
		if p == nil {
			return out
		}
		for _, proto := range p.protos {
			out[proto.Name] = p.Probability(proto.Name)
		}
	case *Pool:
		if p == nil || len(p.protos) == 0 {
			return out
		}
		share := 1 / float64(len(p.protos))
		for _, proto := range p.protos {
			out[proto.Name] += share
		}
	}
	return out
}
