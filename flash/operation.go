package flash

import (
	"encoding/binary"
	"fmt"
)

// An OpKind identifies the type of a flash operation.
type OpKind int

// The controller supports read, program, and erase operations.
const (
	OpRead OpKind = iota
	OpProgram
	OpErase
)

func (k OpKind) String() string {
	switch k {
	case OpRead:
		return "Read"
	case OpProgram:
		return "Program"
	case OpErase:
		return "Erase"
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// An EraseGranularity is the unit an erase operation clears.
type EraseGranularity int

// Erase works on a single page or on an entire bank.
const (
	ErasePage EraseGranularity = iota
	EraseBank
)

func (g EraseGranularity) String() string {
	switch g {
	case ErasePage:
		return "Page"
	case EraseBank:
		return "Bank"
	}
	return fmt.Sprintf("EraseGranularity(%d)", int(g))
}

// An Operation is one read, program, or erase transaction issued to the
// controller. Granularity is meaningful for erase only; NumWords for read
// and program only.
type Operation struct {
	ID          string
	Kind        OpKind
	Partition   Partition
	Granularity EraseGranularity
	Address     uint64
	NumWords    int
}

// BlankWord is the value of an erased bus word.
const BlankWord uint32 = 0xFFFFFFFF

// A Payload is the data moved by one read or program operation, one bus
// word per element. Erase operations carry an empty payload.
type Payload []uint32

// BlankPayload returns n erased words, the baseline a program operation
// expects.
func BlankPayload(n int) Payload {
	p := make(Payload, n)
	for i := range p {
		p[i] = BlankWord
	}
	return p
}

// Bytes serializes the payload in bus order (little endian).
func (p Payload) Bytes() []byte {
	buf := make([]byte, len(p)*4)
	for i, w := range p {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf
}

// PayloadFromBytes deserializes bus-order bytes into words. The length of
// data must be a multiple of the word size.
func PayloadFromBytes(data []byte) Payload {
	p := make(Payload, len(data)/4)
	for i := range p {
		p[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return p
}
