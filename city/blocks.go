package city

import (
	"errors"
	"log/slog"
	"math"
	"slices"

	"github.com/pthm-cable/cityloop/assets"
)

// ErrNoEligibleBlock is returned when the block pool holds nothing but the stadium
// and the stadium has already been placed.
var ErrNoEligibleBlock = errors.New("city: no eligible block")

// session is the state of one generation run.
type session struct {
	stadiumPlaced bool
	attempts      int // Block draws across the run
	relaxed       int // Chunks that fell back to the least conflicting block
}

// neighborBlockNames returns the block names of the already built neighbours of (x, y).
func (c *City) neighborBlockNames(x, y int) []string {
	var names []string
	c.grid.ForEachNeighbor(x, y, func(_, _ int, n *Chunk) {
		if n.Block != nil {
			names = append(names, n.Block.Name)
		}
	})
	return names
}

// pickBlock draws a block for (x, y) that differs from every built neighbour.
// The stadium block is accepted at most once per session regardless of neighbours.
// After RetryLimit rejected draws the least conflicting non-stadium block is used
// and the second return value is true.
func (c *City) pickBlock(sess *session, x, y int) (*assets.Instance, bool, error) {
	taken := c.neighborBlockNames(x, y)
	stadium := c.cfg.Grid.StadiumBlock

	for range c.cfg.Grid.RetryLimit {
		sess.attempts++
		proto, err := c.catalog.Blocks.Draw(c.rng)
		if err != nil {
			return nil, false, err
		}
		if stadium != "" && proto.Name == stadium {
			if sess.stadiumPlaced {
				continue
			}
			sess.stadiumPlaced = true
			return c.placeBlock(proto), false, nil
		}
		if slices.Contains(taken, proto.Name) {
			continue
		}
		return c.placeBlock(proto), false, nil
	}

	proto := c.leastConflicting(taken)
	if proto == nil {
		return nil, false, ErrNoEligibleBlock
	}
	sess.relaxed++
	slog.Warn("block retry limit reached",
		"x", x, "y", y,
		"limit", c.cfg.Grid.RetryLimit,
		"block", proto.Name,
		"neighbors", taken,
	)
	return c.placeBlock(proto), true, nil
}

// leastConflicting returns the non-stadium block that matches the fewest
// neighbour names. Ties go to the earlier pool entry.
func (c *City) leastConflicting(taken []string) *assets.Prototype {
	var best *assets.Prototype
	bestCount := math.MaxInt
	for i := range c.catalog.Blocks.Len() {
		proto := c.catalog.Blocks.At(i)
		if c.cfg.Grid.StadiumBlock != "" && proto.Name == c.cfg.Grid.StadiumBlock {
			continue
		}
		n := 0
		for _, name := range taken {
			if name == proto.Name {
				n++
			}
		}
		if n < bestCount {
			best, bestCount = proto, n
		}
	}
	return best
}

// placeBlock instantiates proto with a random quarter-turn yaw when enabled.
func (c *City) placeBlock(proto *assets.Prototype) *assets.Instance {
	inst := proto.Instantiate()
	if c.cfg.Grid.RandomBlockRotation {
		q := int(math.Floor(c.rng.Float64() * 4))
		inst.RotationY = float64(min(q, 3)) * math.Pi / 2
	}
	return inst
}

// quarterTurns converts a yaw produced by placeBlock back to 0..3.
func quarterTurns(yaw float64) int {
	q := int(math.Round(yaw / (math.Pi / 2)))
	return ((q % 4) + 4) % 4
}
