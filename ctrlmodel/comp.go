// Package ctrlmodel is a golden model of the flash controller. It executes
// operations against the backdoor reference array with flash semantics, so
// the sequencer can run end-to-end without hardware attached.
package ctrlmodel

import (
	"fmt"
	"log"
	"time"

	"github.com/sarchlab/flashdv/backdoor"
	"github.com/sarchlab/flashdv/flash"
	"github.com/sarchlab/flashdv/seq"
)

// A Comp accepts configuration and operations like the real controller and
// completes each operation asynchronously after a fixed latency.
type Comp struct {
	name    string
	spec    flash.Spec
	mem     *backdoor.Mem
	latency time.Duration
	timeout time.Duration

	regions   map[int]flash.MPRegion
	defaults  flash.DefaultRegionPolicy
	bankErase flash.BankErasePolicy

	done chan error
	busy bool
}

// Name returns the name of the component.
func (c *Comp) Name() string {
	return c.name
}

// ApplyRegionConfig stores the content of one protection-region slot.
func (c *Comp) ApplyRegionConfig(slot int, region flash.MPRegion) error {
	if c.busy {
		return fmt.Errorf("ctrlmodel: config change while op outstanding")
	}
	if slot < 0 || slot >= c.spec.NumRegionSlots {
		return fmt.Errorf("ctrlmodel: region slot %d out of range", slot)
	}

	c.regions[slot] = region
	return nil
}

// ApplyDefaultRegionConfig stores the default-region permissions.
func (c *Comp) ApplyDefaultRegionConfig(
	policy flash.DefaultRegionPolicy,
) error {
	if c.busy {
		return fmt.Errorf("ctrlmodel: config change while op outstanding")
	}

	c.defaults = policy
	return nil
}

// ApplyBankEraseConfig stores the per-bank erase enables.
func (c *Comp) ApplyBankEraseConfig(policy flash.BankErasePolicy) error {
	if c.busy {
		return fmt.Errorf("ctrlmodel: config change while op outstanding")
	}
	if len(policy.EraseEn) != c.spec.NumBanks {
		return fmt.Errorf("ctrlmodel: bank policy covers %d of %d banks",
			len(policy.EraseEn), c.spec.NumBanks)
	}

	c.bankErase = policy
	return nil
}

// StartOperation begins executing op. For a read, data is filled in place
// by the time WaitDone returns.
func (c *Comp) StartOperation(op flash.Operation, data flash.Payload) error {
	if c.busy {
		return fmt.Errorf("ctrlmodel: operation %s already outstanding", op.ID)
	}

	c.busy = true
	go func() {
		time.Sleep(c.latency)
		c.done <- c.execute(op, data)
	}()

	return nil
}

// WaitDone blocks until the outstanding operation completes, or fails with
// seq.ErrOperationTimeout.
func (c *Comp) WaitDone() error {
	if !c.busy {
		return fmt.Errorf("ctrlmodel: no operation outstanding")
	}

	select {
	case err := <-c.done:
		c.busy = false
		return err
	case <-time.After(c.timeout):
		return seq.ErrOperationTimeout
	}
}

func (c *Comp) execute(op flash.Operation, data flash.Payload) error {
	addr := c.spec.WordAlign(op.Address)

	switch op.Kind {
	case flash.OpRead:
		words, err := c.mem.ReadWords(op.Partition, addr, op.NumWords)
		if err != nil {
			return err
		}
		copy(data, words)
		return nil
	case flash.OpProgram:
		return c.mem.ProgramWords(op.Partition, addr, data)
	case flash.OpErase:
		return c.mem.EraseRange(op)
	default:
		log.Panicf("cannot execute operation of kind %s", op.Kind)
	}

	return nil
}

// Region returns the stored content of a protection-region slot.
func (c *Comp) Region(slot int) (flash.MPRegion, bool) {
	region, ok := c.regions[slot]
	return region, ok
}

// Defaults returns the stored default-region permissions.
func (c *Comp) Defaults() flash.DefaultRegionPolicy {
	return c.defaults
}

// BankErase returns the stored per-bank erase enables.
func (c *Comp) BankErase() flash.BankErasePolicy {
	return c.bankErase
}
