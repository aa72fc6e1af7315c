package seq

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/sarchlab/flashdv/flash"
	"github.com/sarchlab/flashdv/stimulus"
)

var dumpLog = false

// A State names the phase the sequencer is in.
type State int

// The sequencer walks Idle -> Configuring -> Operating -> Checking and
// back, ending in Done.
const (
	StateIdle State = iota
	StateConfiguring
	StateOperating
	StateChecking
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateConfiguring:
		return "Configuring"
	case StateOperating:
		return "Operating"
	case StateChecking:
		return "Checking"
	case StateDone:
		return "Done"
	}
	return "State(?)"
}

// A Sequencer runs the outer configure loop and the inner operate/check
// loop. It is single threaded; the only suspension point is the blocking
// wait for operation completion.
type Sequencer struct {
	name string
	spec flash.Spec
	cfg  stimulus.DistributionConfig
	rng  *rand.Rand

	ctrl Controller
	bkdr Backdoor

	regionGen *stimulus.RegionGenerator
	policyGen *stimulus.PolicyGenerator
	opGen     *stimulus.OperationGenerator
	kinds     *stimulus.Sampler
	initMode  InitMode

	recorder Recorder
	progress Progress

	state State

	ConfigsApplied int
	OpsChecked     int
}

// State returns the phase the sequencer is currently in.
func (s *Sequencer) State() State {
	return s.state
}

// Name returns the name of the sequencer.
func (s *Sequencer) Name() string {
	return s.name
}

// Run executes one full randomized session. The first error aborts the
// run; nothing is retried.
func (s *Sequencer) Run() error {
	for _, p := range []flash.Partition{
		flash.PartitionData, flash.PartitionInfo,
	} {
		if err := s.bkdr.Init(p, s.initMode); err != nil {
			return fmt.Errorf("seq: initializing %s partition: %w", p, err)
		}
	}

	numConfigs := 1 + s.rng.Intn(s.cfg.MaxConfigs)
	for c := 0; c < numConfigs; c++ {
		if err := s.applyConfig(c); err != nil {
			return err
		}

		numOps := 1 + s.rng.Intn(s.cfg.MaxOpsPerConfig)
		for o := 0; o < numOps; o++ {
			if err := s.runOperation(c, o); err != nil {
				return err
			}
		}
	}

	s.state = StateDone
	return nil
}

// applyConfig generates a fresh region set and policies and applies them
// to the controller. No operation is outstanding while this runs.
func (s *Sequencer) applyConfig(config int) error {
	s.state = StateConfiguring

	set, err := s.regionGen.Generate()
	if err != nil {
		return err
	}

	for _, slot := range set.EnabledSlots() {
		if err := s.ctrl.ApplyRegionConfig(slot, set[slot]); err != nil {
			return fmt.Errorf("seq: applying region %d: %w", slot, err)
		}
		if s.recorder != nil {
			s.recorder.RecordRegion(config, slot, set[slot])
		}
	}

	defaults, banks := s.policyGen.Generate()
	if err := s.ctrl.ApplyDefaultRegionConfig(defaults); err != nil {
		return fmt.Errorf("seq: applying default region config: %w", err)
	}
	if err := s.ctrl.ApplyBankEraseConfig(banks); err != nil {
		return fmt.Errorf("seq: applying bank erase config: %w", err)
	}

	s.ConfigsApplied++

	if dumpLog {
		log.Printf("%s, config %d, %d regions enabled\n",
			s.name, config, len(set.EnabledSlots()))
	}

	return nil
}

func (s *Sequencer) runOperation(config, index int) error {
	kind := flash.OpKind(s.kinds.Draw(s.rng))

	op, err := s.opGen.Generate(kind)
	if err != nil {
		return err
	}
	payload := stimulus.PayloadFor(s.rng, op)

	if err := s.prepareMemory(op); err != nil {
		return err
	}

	s.state = StateOperating
	if err := s.ctrl.StartOperation(op, payload); err != nil {
		return fmt.Errorf("seq: starting %s op %s: %w", op.Kind, op.ID, err)
	}
	if err := s.ctrl.WaitDone(); err != nil {
		return fmt.Errorf("seq: waiting for %s op %s: %w",
			op.Kind, op.ID, err)
	}

	s.state = StateChecking
	if err := s.check(op, payload); err != nil {
		return err
	}

	s.OpsChecked++
	if s.recorder != nil {
		s.recorder.RecordOp(config, index, op)
	}
	if s.progress != nil {
		s.progress.IncrementFinished(1)
	}

	if dumpLog {
		log.Printf("%s, config %d, op %d, %s, %s, 0x%X, %d words\n",
			s.name, config, index, op.Kind, op.Partition,
			op.Address, op.NumWords)
	}

	return nil
}

// prepareMemory sets up the reference memory for one operation: fresh
// random data for a read, the erased baseline for a program, nothing for
// an erase.
func (s *Sequencer) prepareMemory(op flash.Operation) error {
	switch op.Kind {
	case flash.OpRead:
		ref := stimulus.RandomPayload(s.rng, op.NumWords)
		if err := s.bkdr.Write(op, ref); err != nil {
			return fmt.Errorf("seq: preparing read reference: %w", err)
		}
	case flash.OpProgram:
		blank := flash.BlankPayload(op.NumWords)
		if err := s.bkdr.Write(op, blank); err != nil {
			return fmt.Errorf("seq: blanking program target: %w", err)
		}
	}

	return nil
}

func (s *Sequencer) check(op flash.Operation, payload flash.Payload) error {
	var err error
	switch op.Kind {
	case flash.OpRead, flash.OpProgram:
		// For a read, payload now holds what the controller returned;
		// both it and the reference memory must agree.
		err = s.bkdr.ReadCheck(op, payload)
	case flash.OpErase:
		err = s.bkdr.EraseCheck(op)
	}

	if err != nil {
		return &CheckMismatchError{Op: op, Cause: err}
	}

	return nil
}
