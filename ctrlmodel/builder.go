package ctrlmodel

import (
	"time"

	"github.com/sarchlab/flashdv/backdoor"
	"github.com/sarchlab/flashdv/flash"
)

// A Builder assembles controller models.
type Builder struct {
	spec    flash.Spec
	mem     *backdoor.Mem
	latency time.Duration
	timeout time.Duration
}

// MakeBuilder returns a Builder with the default geometry, no operation
// latency, and a 1-second completion timeout.
func MakeBuilder() *Builder {
	return &Builder{
		spec:    flash.DefaultSpec(),
		timeout: time.Second,
	}
}

// WithSpec sets the flash geometry.
func (b *Builder) WithSpec(spec flash.Spec) *Builder {
	b.spec = spec
	return b
}

// WithMem sets the backdoor array the model executes against.
func (b *Builder) WithMem(mem *backdoor.Mem) *Builder {
	b.mem = mem
	return b
}

// WithLatency sets the simulated completion delay per operation.
func (b *Builder) WithLatency(latency time.Duration) *Builder {
	b.latency = latency
	return b
}

// WithTimeout sets how long WaitDone blocks before giving up.
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.timeout = timeout
	return b
}

// Build creates the controller model.
func (b *Builder) Build(name string) *Comp {
	if b.mem == nil {
		panic("ctrlmodel: a controller model needs a backdoor Mem")
	}

	return &Comp{
		name:    name,
		spec:    b.spec,
		mem:     b.mem,
		latency: b.latency,
		timeout: b.timeout,
		regions: make(map[int]flash.MPRegion),
		done:    make(chan error, 1),
	}
}
