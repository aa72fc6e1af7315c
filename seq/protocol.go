// Package seq drives randomized flash operations against a controller and
// cross-checks every result against a backdoor reference memory.
package seq

import "github.com/sarchlab/flashdv/flash"

// An InitMode selects how a backdoor partition is initialized before a run.
type InitMode int

// Invalidate fills the partition with a poison pattern, Randomize with
// pseudo-random data, SetBlank with the erased all-ones pattern.
const (
	InitInvalidate InitMode = iota
	InitRandomize
	InitSetBlank
)

func (m InitMode) String() string {
	switch m {
	case InitInvalidate:
		return "Invalidate"
	case InitRandomize:
		return "Randomize"
	case InitSetBlank:
		return "SetBlank"
	}
	return "InitMode(?)"
}

// A Controller is the driver-side collaborator that applies configurations
// and executes operations on the flash controller under test.
type Controller interface {
	ApplyRegionConfig(slot int, region flash.MPRegion) error
	ApplyDefaultRegionConfig(policy flash.DefaultRegionPolicy) error
	ApplyBankEraseConfig(policy flash.BankErasePolicy) error

	// StartOperation issues one operation. For a read, the controller
	// fills data in place. WaitDone blocks until the operation started
	// last has completed.
	StartOperation(op flash.Operation, data flash.Payload) error
	WaitDone() error
}

// A Backdoor inspects and mutates the reference flash array directly,
// bypassing the controller. It is used only for test setup and checking.
type Backdoor interface {
	Init(partition flash.Partition, mode InitMode) error
	Write(op flash.Operation, data flash.Payload) error
	ReadCheck(op flash.Operation, expected flash.Payload) error
	EraseCheck(op flash.Operation) error
}

// A Recorder receives every applied region configuration and executed
// operation, for offline analysis of a run.
type Recorder interface {
	RecordRegion(config int, slot int, region flash.MPRegion)
	RecordOp(config int, index int, op flash.Operation)
}

// Progress receives completion updates while a run executes.
type Progress interface {
	IncrementFinished(amount uint64)
}
