package grid

import (
	"slices"
	"testing"
)

func TestWrap(t *testing.T) {
	g := New[int](9, nil)
	tests := []struct {
		in, want int
	}{
		{0, 0}, {8, 8}, {9, 0}, {10, 1}, {-1, 8}, {-9, 0}, {-10, 8}, {27, 0},
	}
	for _, tt := range tests {
		if got := g.Wrap(tt.in); got != tt.want {
			t.Errorf("Wrap(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAtSet(t *testing.T) {
	g := New[string](3, nil)

	if _, ok := g.At(1, 1); ok {
		t.Error("At(1, 1) on empty grid: ok = true, want false")
	}

	g.Set(2, 2, "corner")
	if v, ok := g.At(-1, -1); !ok || v != "corner" {
		t.Errorf("At(-1, -1) = %q, %v, want %q, true", v, ok, "corner")
	}
	if v, ok := g.At(5, 5); !ok || v != "corner" {
		t.Errorf("At(5, 5) = %q, %v, want %q, true", v, ok, "corner")
	}

	g.Set(-1, -1, "again")
	if g.Filled() != 1 {
		t.Errorf("Filled() = %d after overwrite, want 1", g.Filled())
	}
}

func TestNewPanicsOnBadSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(0) did not panic")
		}
	}()
	New[int](0, nil)
}

func TestNeighborhood(t *testing.T) {
	tests := []struct {
		mode    string
		want    int
		wantErr bool
	}{
		{"moore", 8, false},
		{"", 8, false},
		{"sparse", 5, false},
		{"hex", 0, true},
	}
	for _, tt := range tests {
		got, err := Neighborhood(tt.mode)
		if (err != nil) != tt.wantErr {
			t.Errorf("Neighborhood(%q) error = %v, wantErr %v", tt.mode, err, tt.wantErr)
			continue
		}
		if len(got) != tt.want {
			t.Errorf("len(Neighborhood(%q)) = %d, want %d", tt.mode, len(got), tt.want)
		}
	}
}

func collect(g *Grid[int], x, y int) []int {
	var out []int
	g.ForEachNeighbor(x, y, func(_, _ int, v int) {
		out = append(out, v)
	})
	slices.Sort(out)
	return out
}

func fill(g *Grid[int]) {
	n := g.Size()
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			g.Set(x, y, y*n+x)
		}
	}
}

func TestForEachNeighbor(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		offsets []Offset
		x, y    int
		want    []int
	}{
		{"moore interior", 5, Moore, 2, 2, []int{6, 7, 8, 11, 13, 16, 17, 18}},
		{"moore wraps at origin", 5, Moore, 0, 0, []int{1, 4, 5, 6, 9, 20, 21, 24}},
		{"sparse interior", 5, Sparse, 2, 2, []int{6, 7, 11, 13, 17}},
		{"moore 2x2 dedupes", 2, Moore, 0, 0, []int{1, 2, 3}},
		{"moore 1x1 has no neighbours", 1, Moore, 0, 0, nil},
		{"sparse 1x1 has no neighbours", 1, Sparse, 0, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New[int](tt.size, tt.offsets)
			fill(g)
			got := collect(g, tt.x, tt.y)
			if !slices.Equal(got, tt.want) {
				t.Errorf("neighbours of (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestForEachNeighborSkipsEmpty(t *testing.T) {
	g := New[int](5, Moore)
	g.Set(1, 1, 10)
	g.Set(3, 3, 30)
	g.Set(0, 0, 99) // not adjacent to (2,2)

	got := collect(g, 2, 2)
	if !slices.Equal(got, []int{10, 30}) {
		t.Errorf("neighbours = %v, want [10 30]", got)
	}
}

func TestForEachRowMajor(t *testing.T) {
	g := New[int](3, nil)
	fill(g)
	var got []int
	g.ForEach(func(x, y, v int) {
		if v != y*3+x {
			t.Errorf("ForEach(%d, %d) = %d, want %d", x, y, v, y*3+x)
		}
		got = append(got, v)
	})
	if !slices.Equal(got, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Errorf("ForEach order = %v", got)
	}
}
