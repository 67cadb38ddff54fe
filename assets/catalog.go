package assets

import (
	"fmt"

	"github.com/pthm-cable/cityloop/config"
)

// Catalog bundles the five prototype pools the generator consumes.
type Catalog struct {
	Blocks        *Pool
	Lanes         Drawer
	Intersections *Pool
	Cars          *Pool
	Clouds        *Pool
}

// Validate fails fast when any pool is empty.
func (c *Catalog) Validate() error {
	pools := []struct {
		kind Kind
		d    Drawer
	}{
		{KindBlock, c.Blocks},
		{KindLane, c.Lanes},
		{KindIntersection, c.Intersections},
		{KindCar, c.Cars},
		{KindCloud, c.Clouds},
	}
	for _, p := range pools {
		if isNilDrawer(p.d) || p.d.Len() == 0 {
			return fmt.Errorf("%s pool: %w", p.kind, ErrEmptyPool)
		}
	}
	return nil
}

func isNilDrawer(d Drawer) bool {
	switch v := d.(type) {
	case nil:
		return true
	case *Pool:
		return v == nil
	case *WeightedPool:
		return v == nil
	}
	return false
}

// NewCatalog builds placeholder prototypes from the asset manifest.
// Each entry becomes a box of the configured size; real decoded meshes are
// supplied by the loading layer through the same Catalog type.
func NewCatalog(cfg config.AssetsConfig) (*Catalog, error) {
	lanes := make([]Weighted, 0, len(cfg.Lanes))
	for _, e := range cfg.Lanes {
		lanes = append(lanes, Weighted{Proto: prototypeFromEntry(KindLane, e), Weight: e.Weight})
	}
	lanePool, err := NewWeightedPool(KindLane, lanes)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		Blocks:        poolFromEntries(KindBlock, cfg.Blocks),
		Lanes:         lanePool,
		Intersections: poolFromEntries(KindIntersection, cfg.Intersections),
		Cars:          poolFromEntries(KindCar, cfg.Cars),
		Clouds:        poolFromEntries(KindCloud, cfg.Clouds),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func poolFromEntries(kind Kind, entries []config.AssetEntry) *Pool {
	protos := make([]*Prototype, 0, len(entries))
	for _, e := range entries {
		protos = append(protos, prototypeFromEntry(kind, e))
	}
	return NewPool(kind, protos...)
}

func prototypeFromEntry(kind Kind, e config.AssetEntry) *Prototype {
	size := [3]float64{1, 1, 1}
	copy(size[:], e.Size)
	return &Prototype{
		Name: e.Name,
		Kind: kind,
		Mesh: Mesh{
			Geometry: BoxGeometry(size[0], size[1], size[2]),
			Material: &Material{Name: e.Name, PBR: e.PBR, Defines: map[string]bool{}},
		},
	}
}
