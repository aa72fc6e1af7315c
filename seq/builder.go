package seq

import (
	"math/rand"

	"github.com/sarchlab/flashdv/flash"
	"github.com/sarchlab/flashdv/stimulus"
)

// A Builder assembles Sequencers.
type Builder struct {
	spec     flash.Spec
	cfg      stimulus.DistributionConfig
	rng      *rand.Rand
	ctrl     Controller
	bkdr     Backdoor
	kinds    []stimulus.Choice
	initMode InitMode
	recorder Recorder
	progress Progress
}

// MakeBuilder returns a Builder with the default geometry, a permissive
// distribution profile, and an even operation-kind mix.
func MakeBuilder() *Builder {
	return &Builder{
		spec: flash.DefaultSpec(),
		cfg:  stimulus.DefaultDistributionConfig(),
		kinds: []stimulus.Choice{
			{Value: int(flash.OpRead), Weight: 1},
			{Value: int(flash.OpProgram), Weight: 1},
			{Value: int(flash.OpErase), Weight: 1},
		},
		initMode: InitRandomize,
	}
}

// WithSpec sets the flash geometry.
func (b *Builder) WithSpec(spec flash.Spec) *Builder {
	b.spec = spec
	return b
}

// WithConfig sets the distribution knobs.
func (b *Builder) WithConfig(cfg stimulus.DistributionConfig) *Builder {
	b.cfg = cfg
	return b
}

// WithRand sets the random source. Reusing a source with the same seed
// reproduces the run.
func (b *Builder) WithRand(rng *rand.Rand) *Builder {
	b.rng = rng
	return b
}

// WithController sets the controller collaborator.
func (b *Builder) WithController(ctrl Controller) *Builder {
	b.ctrl = ctrl
	return b
}

// WithBackdoor sets the backdoor collaborator.
func (b *Builder) WithBackdoor(bkdr Backdoor) *Builder {
	b.bkdr = bkdr
	return b
}

// WithOpKindWeights sets the run policy that picks operation kinds. The
// choice values must be OpKind values.
func (b *Builder) WithOpKindWeights(kinds []stimulus.Choice) *Builder {
	b.kinds = kinds
	return b
}

// WithInitMode sets how the backdoor partitions are initialized before
// the run.
func (b *Builder) WithInitMode(mode InitMode) *Builder {
	b.initMode = mode
	return b
}

// WithRecorder attaches a trace recorder.
func (b *Builder) WithRecorder(r Recorder) *Builder {
	b.recorder = r
	return b
}

// WithProgress attaches a progress reporter.
func (b *Builder) WithProgress(p Progress) *Builder {
	b.progress = p
	return b
}

// Build creates the Sequencer.
func (b *Builder) Build(name string) *Sequencer {
	if b.ctrl == nil {
		panic("seq: a Sequencer needs a Controller")
	}
	if b.bkdr == nil {
		panic("seq: a Sequencer needs a Backdoor")
	}
	if b.rng == nil {
		panic("seq: a Sequencer needs a rand source")
	}
	if err := b.spec.Validate(); err != nil {
		panic(err)
	}
	if err := b.cfg.Validate(); err != nil {
		panic(err)
	}

	return &Sequencer{
		name:      name,
		spec:      b.spec,
		cfg:       b.cfg,
		rng:       b.rng,
		ctrl:      b.ctrl,
		bkdr:      b.bkdr,
		regionGen: stimulus.NewRegionGenerator(b.spec, b.cfg, b.rng),
		policyGen: stimulus.NewPolicyGenerator(b.spec, b.cfg, b.rng),
		opGen:     stimulus.NewOperationGenerator(b.spec, b.cfg, b.rng),
		kinds:     stimulus.NewSampler(b.kinds...),
		initMode:  b.initMode,
		recorder:  b.recorder,
		progress:  b.progress,
		state:     StateIdle,
	}
}
