package stimulus

import (
	"math/rand"

	"github.com/sarchlab/flashdv/flash"
)

// FifoLevels holds randomized interrupt thresholds for the controller's
// program and read FIFOs. The sequencing core does not consume them; they
// are sampled for tests that program the FIFO watermark registers.
type FifoLevels struct {
	Program int
	Read    int
}

// SampleFifoLevels draws both thresholds uniformly from [1, FIFODepth].
func SampleFifoLevels(rng *rand.Rand, spec flash.Spec) FifoLevels {
	return FifoLevels{
		Program: 1 + rng.Intn(spec.FIFODepth),
		Read:    1 + rng.Intn(spec.FIFODepth),
	}
}
