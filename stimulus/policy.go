package stimulus

import (
	"math/rand"

	"github.com/sarchlab/flashdv/flash"
)

// A PolicyGenerator samples the default-region permissions and the per-bank
// erase enables. Every field is an independent Bernoulli draw.
type PolicyGenerator struct {
	spec flash.Spec
	cfg  DistributionConfig
	rng  *rand.Rand
}

// NewPolicyGenerator creates a PolicyGenerator drawing from rng.
func NewPolicyGenerator(
	spec flash.Spec,
	cfg DistributionConfig,
	rng *rand.Rand,
) *PolicyGenerator {
	return &PolicyGenerator{spec: spec, cfg: cfg, rng: rng}
}

// Generate samples one default-region policy and one bank-erase policy.
func (g *PolicyGenerator) Generate() (
	flash.DefaultRegionPolicy,
	flash.BankErasePolicy,
) {
	defaults := flash.DefaultRegionPolicy{
		ReadEn:    Chance(g.rng, g.cfg.DefaultReadEnPct),
		ProgramEn: Chance(g.rng, g.cfg.DefaultProgramEnPct),
		EraseEn:   Chance(g.rng, g.cfg.DefaultEraseEnPct),
	}

	banks := flash.BankErasePolicy{
		EraseEn: make([]bool, g.spec.NumBanks),
	}
	for i := range banks.EraseEn {
		banks.EraseEn[i] = !Chance(g.rng, g.cfg.BankEraseDisablePct)
	}

	return defaults, banks
}
