package record

import "github.com/sarchlab/flashdv/flash"

const (
	regionTable = "region_configs"
	opTable     = "operations"
)

// A RegionEntry is one applied protection-region configuration.
type RegionEntry struct {
	Config    int
	Slot      int
	ReadEn    bool
	ProgramEn bool
	EraseEn   bool
	Partition string
	StartPage int
	NumPages  int
}

// An OpEntry is one executed operation.
type OpEntry struct {
	Config      int
	OpIndex     int
	OpID        string
	Kind        string
	Partition   string
	Granularity string
	Address     int64
	NumWords    int
}

// A RunRecorder traces a sequencer run into a SQLite database. It
// implements seq.Recorder.
type RunRecorder struct {
	backend DataRecorder
}

// NewRunRecorder creates a RunRecorder writing to the database at path.
func NewRunRecorder(path string) *RunRecorder {
	r := &RunRecorder{backend: NewDataRecorder(path)}

	r.backend.CreateTable(regionTable, RegionEntry{})
	r.backend.CreateTable(opTable, OpEntry{})

	return r
}

// RecordRegion traces one applied region configuration.
func (r *RunRecorder) RecordRegion(
	config int,
	slot int,
	region flash.MPRegion,
) {
	r.backend.InsertData(regionTable, RegionEntry{
		Config:    config,
		Slot:      slot,
		ReadEn:    region.ReadEn,
		ProgramEn: region.ProgramEn,
		EraseEn:   region.EraseEn,
		Partition: region.Partition.String(),
		StartPage: region.StartPage,
		NumPages:  region.NumPages,
	})
}

// RecordOp traces one executed operation.
func (r *RunRecorder) RecordOp(config int, index int, op flash.Operation) {
	entry := OpEntry{
		Config:    config,
		OpIndex:   index,
		OpID:      op.ID,
		Kind:      op.Kind.String(),
		Partition: op.Partition.String(),
		Address:   int64(op.Address),
		NumWords:  op.NumWords,
	}
	if op.Kind == flash.OpErase {
		entry.Granularity = op.Granularity.String()
	}

	r.backend.InsertData(opTable, entry)
}

// Flush writes all buffered trace entries to the database.
func (r *RunRecorder) Flush() {
	r.backend.Flush()
}
