package stimulus

import "math/rand"

// A Choice pairs a sampler outcome with its relative weight.
type Choice struct {
	Value  int
	Weight int
}

// A Sampler draws from a discrete weighted distribution with a single
// cumulative-weight dice roll. Zero-weight choices are never drawn.
type Sampler struct {
	choices []Choice
	total   int
}

// NewSampler builds a sampler over the given choices. At least one choice
// must carry positive weight.
func NewSampler(choices ...Choice) *Sampler {
	s := &Sampler{}
	for _, c := range choices {
		if c.Weight < 0 {
			panic("stimulus: negative sampler weight")
		}
		s.choices = append(s.choices, c)
		s.total += c.Weight
	}

	if s.total == 0 {
		panic("stimulus: sampler has no weight")
	}

	return s
}

// Draw returns one value according to the weights.
func (s *Sampler) Draw(rng *rand.Rand) int {
	dice := rng.Intn(s.total)
	for _, c := range s.choices {
		if dice < c.Weight {
			return c.Value
		}
		dice -= c.Weight
	}

	// Unreachable: the cumulative weights cover [0, total).
	return s.choices[len(s.choices)-1].Value
}

// Chance performs a Bernoulli draw that succeeds pct percent of the time.
func Chance(rng *rand.Rand, pct int) bool {
	if pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}

	s := NewSampler(
		Choice{Value: 1, Weight: pct},
		Choice{Value: 0, Weight: 100 - pct},
	)

	return s.Draw(rng) == 1
}
