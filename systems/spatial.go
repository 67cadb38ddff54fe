package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/cityloop/components"
)

// ToroidalDelta returns the shortest path delta from (x1,z1) to (x2,z2) on a
// w x h torus.
func ToroidalDelta(x1, z1, x2, z2, w, h float64) (dx, dz float64) {
	dx = x2 - x1
	dz = z2 - z1

	if dx > w/2 {
		dx -= w
	} else if dx < -w/2 {
		dx += w
	}
	if dz > h/2 {
		dz -= h
	} else if dz < -h/2 {
		dz += h
	}

	return dx, dz
}

// WorldPosition maps a chunk-local position to world space.
// Grid x runs along world X, grid y along world Z.
func WorldPosition(ref components.ChunkRef, local r3.Vec, chunkSpan float64) r3.Vec {
	return r3.Vec{
		X: float64(ref.X)*chunkSpan + local.X,
		Y: local.Y,
		Z: float64(ref.Y)*chunkSpan + local.Z,
	}
}

// wrapCentered wraps v into [-span/2, span/2).
func wrapCentered(v, span float64) float64 {
	if span <= 0 {
		return v
	}
	v = math.Mod(v+span/2, span)
	if v < 0 {
		v += span
	}
	return v - span/2
}
