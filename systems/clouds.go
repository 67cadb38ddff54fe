package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/cityloop/components"
)

// CloudSystem drifts clouds inside their chunk and turns them towards the focus point.
type CloudSystem struct {
	filter    *ecs.Filter3[components.ChunkRef, components.Transform, components.Cloud]
	chunkSpan float64
	worldSpan float64
}

// NewCloudSystem creates the cloud drift system.
func NewCloudSystem(world *ecs.World, chunkSpan, worldSpan float64) *CloudSystem {
	return &CloudSystem{
		filter:    ecs.NewFilter3[components.ChunkRef, components.Transform, components.Cloud](world),
		chunkSpan: chunkSpan,
		worldSpan: worldSpan,
	}
}

// Name returns the system ID used for perf phases.
func (s *CloudSystem) Name() string { return "clouds" }

// Update advances all clouds by one frame.
func (s *CloudSystem) Update(f Frame) {
	query := s.filter.Query()
	for query.Next() {
		ref, tr, cloud := query.Get()

		p := r3.Add(tr.Position, r3.Scale(f.DT, cloud.Drift))
		p.X = wrapCentered(p.X, cloud.Span)
		p.Z = wrapCentered(p.Z, cloud.Span)
		tr.Position = p

		w := WorldPosition(*ref, p, s.chunkSpan)
		dx, dz := ToroidalDelta(w.X, w.Z, f.Focus.X, f.Focus.Z, s.worldSpan, s.worldSpan)
		if dx != 0 || dz != 0 {
			tr.RotationY = YawTowards(dx, dz)
		}
	}
}

// YawTowards returns the yaw that faces the direction (dx, dz).
// Yaw 0 faces -Z, matching assets.Instance.Heading.
func YawTowards(dx, dz float64) float64 {
	return math.Atan2(-dx, -dz)
}
