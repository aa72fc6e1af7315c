package flash

import "fmt"

// A Partition selects one of the two independent flash address spaces.
type Partition int

// The data partition holds bulk storage. The info partition holds metadata.
const (
	PartitionData Partition = iota
	PartitionInfo
)

func (p Partition) String() string {
	switch p {
	case PartitionData:
		return "Data"
	case PartitionInfo:
		return "Info"
	}
	return fmt.Sprintf("Partition(%d)", int(p))
}

// An MPRegion is a memory-protection region: a page-range-scoped permission
// record controlling whether read, program, and erase are allowed.
type MPRegion struct {
	Enabled   bool
	ReadEn    bool
	ProgramEn bool
	EraseEn   bool
	Partition Partition
	StartPage int
	NumPages  int
}

// Overlaps reports whether the page ranges of two regions intersect.
func (r MPRegion) Overlaps(other MPRegion) bool {
	return r.StartPage < other.StartPage+other.NumPages &&
		other.StartPage < r.StartPage+r.NumPages
}

// ContainsPage reports whether the region covers the given page.
func (r MPRegion) ContainsPage(page int) bool {
	return page >= r.StartPage && page < r.StartPage+r.NumPages
}

// A RegionSet holds the content of all protection-region slots of the
// controller, enabled or not, in slot order.
type RegionSet []MPRegion

// EnabledSlots returns the indices of the enabled slots in ascending order.
func (s RegionSet) EnabledSlots() []int {
	var slots []int
	for i, r := range s {
		if r.Enabled {
			slots = append(slots, i)
		}
	}
	return slots
}

// A DefaultRegionPolicy holds the permissions applied to addresses that no
// enabled region covers.
type DefaultRegionPolicy struct {
	ReadEn    bool
	ProgramEn bool
	EraseEn   bool
}

// A BankErasePolicy records, per bank, whether whole-bank erase is
// permitted.
type BankErasePolicy struct {
	EraseEn []bool
}
