package stimulus

import (
	"math/rand"

	"github.com/sarchlab/flashdv/flash"
)

// RandomPayload returns n bus words of fresh pseudo-random data.
func RandomPayload(rng *rand.Rand, n int) flash.Payload {
	p := make(flash.Payload, n)
	for i := range p {
		p[i] = rng.Uint32()
	}
	return p
}

// PayloadFor builds the payload matching op: random words for a program,
// a pre-sized buffer for a read to be filled by the controller, and an
// empty payload for an erase.
func PayloadFor(rng *rand.Rand, op flash.Operation) flash.Payload {
	switch op.Kind {
	case flash.OpProgram:
		return RandomPayload(rng, op.NumWords)
	case flash.OpRead:
		return make(flash.Payload, op.NumWords)
	default:
		return nil
	}
}
