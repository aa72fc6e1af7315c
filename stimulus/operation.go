package stimulus

import (
	"fmt"
	"math/rand"

	"github.com/rs/xid"

	"github.com/sarchlab/flashdv/flash"
)

// An OperationGenerator produces one legal flash operation at a time. The
// operation kind is chosen by the enclosing run policy and passed in.
type OperationGenerator struct {
	spec flash.Spec
	cfg  DistributionConfig
	rng  *rand.Rand
}

// NewOperationGenerator creates an OperationGenerator drawing from rng.
func NewOperationGenerator(
	spec flash.Spec,
	cfg DistributionConfig,
	rng *rand.Rand,
) *OperationGenerator {
	return &OperationGenerator{spec: spec, cfg: cfg, rng: rng}
}

// Generate samples one operation of the given kind. The address is uniform
// over the flash; word counts always fit between the word-aligned address
// and the end of the flash, capped at MaxWordsPerOp.
func (g *OperationGenerator) Generate(
	kind flash.OpKind,
) (flash.Operation, error) {
	op := flash.Operation{
		ID:        xid.New().String(),
		Kind:      kind,
		Partition: flash.PartitionData,
		Address:   uint64(g.rng.Int63n(int64(g.spec.SizeBytes))),
	}

	if Chance(g.rng, g.cfg.OpInfoPartitionPct) {
		op.Partition = flash.PartitionInfo
	}

	switch kind {
	case flash.OpRead, flash.OpProgram:
		remaining := g.spec.WordsFrom(op.Address)
		maxWords := min(uint64(g.cfg.MaxWordsPerOp), remaining)
		op.NumWords = 1 + g.rng.Intn(int(maxWords))
	case flash.OpErase:
		op.Granularity = flash.ErasePage
		if Chance(g.rng, g.cfg.EraseBankPct) {
			op.Granularity = flash.EraseBank
		}
	default:
		return flash.Operation{}, fmt.Errorf(
			"stimulus: unsupported operation kind %s", kind)
	}

	return op, nil
}
