// Package grid provides a toroidal 2D cell store with neighbour iteration.
package grid

import "fmt"

// Offset is a relative cell displacement.
type Offset struct {
	DX, DY int
}

// Moore is the full eight-cell ring around a cell, walked clockwise from (-1,-1).
var Moore = []Offset{
	{-1, -1}, {0, -1}, {1, -1},
	{1, 0}, {1, 1}, {0, 1},
	{-1, 1}, {-1, 0},
}

// Sparse covers up, down, left, right and the (-1,-1) diagonal only.
// Worlds generated against this neighbourhood keep their adjacency when it is selected.
var Sparse = []Offset{
	{-1, -1}, {1, 0}, {0, 1}, {-1, 0}, {0, -1},
}

// Neighborhood returns the offset list for a configured mode name.
func Neighborhood(mode string) ([]Offset, error) {
	switch mode {
	case "moore", "":
		return Moore, nil
	case "sparse":
		return Sparse, nil
	}
	return nil, fmt.Errorf("grid: unknown neighborhood %q", mode)
}

// Grid is a size x size toroidal array of optional cells.
type Grid[T any] struct {
	size    int
	cells   []T
	filled  []bool
	count   int
	offsets []Offset
}

// New creates an empty grid. Size must be positive.
func New[T any](size int, offsets []Offset) *Grid[T] {
	if size < 1 {
		panic(fmt.Sprintf("grid: size must be positive, got %d", size))
	}
	if offsets == nil {
		offsets = Moore
	}
	return &Grid[T]{
		size:    size,
		cells:   make([]T, size*size),
		filled:  make([]bool, size*size),
		offsets: offsets,
	}
}

// Size returns the number of cells per side.
func (g *Grid[T]) Size() int {
	return g.size
}

// Filled returns the number of occupied cells.
func (g *Grid[T]) Filled() int {
	return g.count
}

// Wrap normalises a coordinate into [0, size).
func (g *Grid[T]) Wrap(v int) int {
	return ((v % g.size) + g.size) % g.size
}

// At returns the cell at (x, y) after wrapping, and whether it is occupied.
func (g *Grid[T]) At(x, y int) (T, bool) {
	i := g.index(x, y)
	return g.cells[i], g.filled[i]
}

// Set stores v at (x, y) after wrapping.
func (g *Grid[T]) Set(x, y int, v T) {
	i := g.index(x, y)
	if !g.filled[i] {
		g.count++
	}
	g.cells[i] = v
	g.filled[i] = true
}

// ForEachNeighbor calls visit for every occupied neighbour of (x, y).
// Each distinct cell is visited once and the centre cell is never visited,
// which matters on grids small enough for offsets to wrap onto each other.
func (g *Grid[T]) ForEachNeighbor(x, y int, visit func(cx, cy int, v T)) {
	cx, cy := g.Wrap(x), g.Wrap(y)
	center := cy*g.size + cx

	var seen [8]int
	n := 0
outer:
	for _, o := range g.offsets {
		nx, ny := g.Wrap(cx+o.DX), g.Wrap(cy+o.DY)
		i := ny*g.size + nx
		if i == center || !g.filled[i] {
			continue
		}
		for _, s := range seen[:n] {
			if s == i {
				continue outer
			}
		}
		if n < len(seen) {
			seen[n] = i
			n++
		}
		visit(nx, ny, g.cells[i])
	}
}

// ForEach calls visit for every occupied cell in row-major order.
func (g *Grid[T]) ForEach(visit func(x, y int, v T)) {
	for y := 0; y < g.size; y++ {
		for x := 0; x < g.size; x++ {
			i := y*g.size + x
			if g.filled[i] {
				visit(x, y, g.cells[i])
			}
		}
	}
}

func (g *Grid[T]) index(x, y int) int {
	return g.Wrap(y)*g.size + g.Wrap(x)
}
