package stimulus

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/sarchlab/flashdv/flash"
)

// ErrConstraintUnsatisfiable reports that a generator cannot produce a
// value that meets all invariants within the policy bounds. It is fatal to
// the run.
var ErrConstraintUnsatisfiable = errors.New(
	"stimulus: constraints cannot be satisfied")

// regionPlaceAttempts bounds the rejection sampling of one region when
// overlap is disallowed. Packing failures past this budget surface as
// ErrConstraintUnsatisfiable instead of spinning forever.
const regionPlaceAttempts = 1000

// A RegionGenerator produces protection-region sets that honor the
// enable-count, bounds, and non-overlap invariants.
type RegionGenerator struct {
	spec flash.Spec
	cfg  DistributionConfig
	rng  *rand.Rand
}

// NewRegionGenerator creates a RegionGenerator drawing from rng.
func NewRegionGenerator(
	spec flash.Spec,
	cfg DistributionConfig,
	rng *rand.Rand,
) *RegionGenerator {
	return &RegionGenerator{spec: spec, cfg: cfg, rng: rng}
}

// Generate returns a full region set with exactly NumEnabledRegions slots
// enabled. When overlap is disallowed, the enabled page ranges are pairwise
// disjoint.
func (g *RegionGenerator) Generate() (flash.RegionSet, error) {
	if g.cfg.NumEnabledRegions > g.spec.NumRegionSlots {
		return nil, fmt.Errorf(
			"%w: %d regions requested with only %d slots",
			ErrConstraintUnsatisfiable,
			g.cfg.NumEnabledRegions, g.spec.NumRegionSlots)
	}

	slots := g.rng.Perm(g.spec.NumRegionSlots)[:g.cfg.NumEnabledRegions]
	sort.Ints(slots)

	placed := make([]flash.MPRegion, 0, len(slots))
	for range slots {
		region, err := g.place(placed)
		if err != nil {
			return nil, err
		}
		placed = append(placed, region)
	}

	// Placing each region around the ones already placed skews early
	// regions toward low pages. Shuffling the placements across the
	// enabled slots removes the positional bias.
	g.rng.Shuffle(len(placed), func(i, j int) {
		placed[i], placed[j] = placed[j], placed[i]
	})

	set := make(flash.RegionSet, g.spec.NumRegionSlots)
	for i, slot := range slots {
		set[slot] = placed[i]
	}

	return set, nil
}

func (g *RegionGenerator) place(
	placed []flash.MPRegion,
) (flash.MPRegion, error) {
	for attempt := 0; attempt < regionPlaceAttempts; attempt++ {
		region := g.sampleRegion()
		if g.cfg.AllowRegionOverlap || disjointFromAll(region, placed) {
			return region, nil
		}
	}

	return flash.MPRegion{}, fmt.Errorf(
		"%w: no overlap-free placement found in %d attempts",
		ErrConstraintUnsatisfiable, regionPlaceAttempts)
}

func (g *RegionGenerator) sampleRegion() flash.MPRegion {
	startPage := g.rng.Intn(g.spec.TotalPages())
	maxPages := min(g.cfg.RegionMaxPages, g.spec.TotalPages()-startPage)

	region := flash.MPRegion{
		Enabled:   true,
		ReadEn:    Chance(g.rng, g.cfg.RegionReadEnPct),
		ProgramEn: Chance(g.rng, g.cfg.RegionProgramEnPct),
		EraseEn:   Chance(g.rng, g.cfg.RegionEraseEnPct),
		Partition: flash.PartitionData,
		StartPage: startPage,
		NumPages:  1 + g.rng.Intn(maxPages),
	}

	if Chance(g.rng, g.cfg.RegionInfoPartitionPct) {
		region.Partition = flash.PartitionInfo
	}

	return region
}

func disjointFromAll(region flash.MPRegion, placed []flash.MPRegion) bool {
	for _, other := range placed {
		if region.Overlaps(other) {
			return false
		}
	}
	return true
}
