package stimulus_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/flashdv/flash"
	"github.com/sarchlab/flashdv/stimulus"
)

var _ = Describe("Sampler", func() {
	var rng *rand.Rand

	BeforeEach(func() {
		rng = rand.New(rand.NewSource(1))
	})

	It("should never draw a zero-weight choice", func() {
		s := stimulus.NewSampler(
			stimulus.Choice{Value: 1, Weight: 0},
			stimulus.Choice{Value: 2, Weight: 10},
		)

		for i := 0; i < 100; i++ {
			Expect(s.Draw(rng)).To(Equal(2))
		}
	})

	It("should roughly follow the weights", func() {
		s := stimulus.NewSampler(
			stimulus.Choice{Value: 0, Weight: 90},
			stimulus.Choice{Value: 1, Weight: 10},
		)

		hits := 0
		for i := 0; i < 10000; i++ {
			hits += s.Draw(rng)
		}

		Expect(hits).To(BeNumerically(">", 500))
		Expect(hits).To(BeNumerically("<", 1500))
	})

	It("should panic when no choice carries weight", func() {
		Expect(func() {
			stimulus.NewSampler(stimulus.Choice{Value: 1, Weight: 0})
		}).To(Panic())
	})

	It("should treat 0 and 100 percent as certain", func() {
		for i := 0; i < 50; i++ {
			Expect(stimulus.Chance(rng, 0)).To(BeFalse())
			Expect(stimulus.Chance(rng, 100)).To(BeTrue())
		}
	})

	It("should approximate the requested percentage", func() {
		hits := 0
		for i := 0; i < 10000; i++ {
			if stimulus.Chance(rng, 25) {
				hits++
			}
		}

		Expect(hits).To(BeNumerically(">", 2000))
		Expect(hits).To(BeNumerically("<", 3000))
	})
})

var _ = Describe("PolicyGenerator", func() {
	It("should size the bank policy to the bank count", func() {
		spec := flash.DefaultSpec()
		cfg := stimulus.DefaultDistributionConfig()
		rng := rand.New(rand.NewSource(1))
		gen := stimulus.NewPolicyGenerator(spec, cfg, rng)

		_, banks := gen.Generate()

		Expect(banks.EraseEn).To(HaveLen(spec.NumBanks))
	})

	It("should honor degenerate percentages", func() {
		spec := flash.DefaultSpec()
		cfg := stimulus.DefaultDistributionConfig()
		cfg.DefaultReadEnPct = 100
		cfg.DefaultProgramEnPct = 0
		cfg.BankEraseDisablePct = 100
		rng := rand.New(rand.NewSource(1))
		gen := stimulus.NewPolicyGenerator(spec, cfg, rng)

		for i := 0; i < 20; i++ {
			defaults, banks := gen.Generate()

			Expect(defaults.ReadEn).To(BeTrue())
			Expect(defaults.ProgramEn).To(BeFalse())
			for _, en := range banks.EraseEn {
				Expect(en).To(BeFalse())
			}
		}
	})
})
