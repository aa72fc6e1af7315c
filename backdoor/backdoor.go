// Package backdoor models the flash array with direct access that bypasses
// the controller protocol. The sequencer uses it to prepare reference data
// and to check operation results; the controller model executes against the
// same array.
package backdoor

import (
	"fmt"
	"math/rand"

	"github.com/sarchlab/flashdv/flash"
	"github.com/sarchlab/flashdv/seq"
)

// invalidatePattern is the poison byte written by InitInvalidate.
const invalidatePattern = 0xA5

// A Mem holds the reference arrays of both partitions.
type Mem struct {
	spec  flash.Spec
	rng   *rand.Rand
	parts map[flash.Partition]*array
}

// New creates a blank reference memory for the given geometry. rng feeds
// the Randomize init mode.
func New(spec flash.Spec, rng *rand.Rand) *Mem {
	return &Mem{
		spec: spec,
		rng:  rng,
		parts: map[flash.Partition]*array{
			flash.PartitionData: newArray(spec.SizeBytes, spec.PageBytes),
			flash.PartitionInfo: newArray(spec.SizeBytes, spec.PageBytes),
		},
	}
}

func (m *Mem) part(p flash.Partition) (*array, error) {
	a, ok := m.parts[p]
	if !ok {
		return nil, fmt.Errorf("backdoor: unknown partition %s", p)
	}
	return a, nil
}

// Init overwrites a whole partition according to mode.
func (m *Mem) Init(p flash.Partition, mode seq.InitMode) error {
	a, err := m.part(p)
	if err != nil {
		return err
	}

	switch mode {
	case seq.InitSetBlank:
		return a.fill(0, m.spec.SizeBytes, 0xFF)
	case seq.InitInvalidate:
		return a.fill(0, m.spec.SizeBytes, invalidatePattern)
	case seq.InitRandomize:
		buf := make([]byte, m.spec.PageBytes)
		for addr := uint64(0); addr < m.spec.SizeBytes; addr += m.spec.PageBytes {
			m.rng.Read(buf)
			if err := a.write(addr, buf); err != nil {
				return err
			}
		}
		return nil
	}

	return fmt.Errorf("backdoor: unknown init mode %s", mode)
}

// Write stores data at the word-aligned address of op, bypassing program
// semantics.
func (m *Mem) Write(op flash.Operation, data flash.Payload) error {
	a, err := m.part(op.Partition)
	if err != nil {
		return err
	}

	return a.write(m.spec.WordAlign(op.Address), data.Bytes())
}

// ReadCheck compares the memory covered by op against expected, word by
// word.
func (m *Mem) ReadCheck(op flash.Operation, expected flash.Payload) error {
	words, err := m.ReadWords(
		op.Partition, m.spec.WordAlign(op.Address), len(expected))
	if err != nil {
		return err
	}

	for i, w := range words {
		if w != expected[i] {
			return fmt.Errorf(
				"word %d at 0x%X reads 0x%08X, expected 0x%08X",
				i, m.spec.WordAlign(op.Address)+uint64(i)*m.spec.WordBytes,
				w, expected[i])
		}
	}

	return nil
}

// EraseCheck verifies that the page or bank covered by op reads as erased.
func (m *Mem) EraseCheck(op flash.Operation) error {
	start, size := m.eraseRange(op)

	words, err := m.ReadWords(op.Partition, start, int(size/m.spec.WordBytes))
	if err != nil {
		return err
	}

	for i, w := range words {
		if w != flash.BlankWord {
			return fmt.Errorf(
				"word at 0x%X reads 0x%08X after %s erase, expected 0x%08X",
				start+uint64(i)*m.spec.WordBytes, w,
				op.Granularity, flash.BlankWord)
		}
	}

	return nil
}

// ReadWords returns n bus words starting at the given byte address.
func (m *Mem) ReadWords(
	p flash.Partition,
	addr uint64,
	n int,
) (flash.Payload, error) {
	a, err := m.part(p)
	if err != nil {
		return nil, err
	}

	data, err := a.read(addr, uint64(n)*m.spec.WordBytes)
	if err != nil {
		return nil, err
	}

	return flash.PayloadFromBytes(data), nil
}

// ProgramWords applies program semantics at the word-aligned address:
// programming can only clear bits, so each stored word is ANDed with the
// incoming word.
func (m *Mem) ProgramWords(
	p flash.Partition,
	addr uint64,
	data flash.Payload,
) error {
	a, err := m.part(p)
	if err != nil {
		return err
	}

	old, err := m.ReadWords(p, addr, len(data))
	if err != nil {
		return err
	}

	programmed := make(flash.Payload, len(data))
	for i := range data {
		programmed[i] = old[i] & data[i]
	}

	return a.write(addr, programmed.Bytes())
}

// EraseRange blanks the page or bank that op addresses.
func (m *Mem) EraseRange(op flash.Operation) error {
	a, err := m.part(op.Partition)
	if err != nil {
		return err
	}

	start, size := m.eraseRange(op)
	return a.fill(start, size, 0xFF)
}

func (m *Mem) eraseRange(op flash.Operation) (start, size uint64) {
	if op.Granularity == flash.EraseBank {
		return m.spec.BankStart(m.spec.BankOf(op.Address)), m.spec.BankBytes()
	}
	return m.spec.PageStart(m.spec.PageOf(op.Address)), m.spec.PageBytes
}
