// Package flash defines the hardware parameters and the core data types of
// the flash controller under verification.
package flash

import "fmt"

// A Spec describes the geometry of the flash macro. All generators and
// models take a Spec value instead of relying on hard-coded constants.
type Spec struct {
	SizeBytes      uint64
	NumBanks       int
	PagesPerBank   int
	PageBytes      uint64
	WordBytes      uint64
	NumRegionSlots int
	FIFODepth      int
}

// DefaultSpec returns the geometry of the reference controller: 2 banks of
// 256 pages, 2 KiB pages, a 32-bit bus, 8 protection-region slots, and
// 16-entry program/read FIFOs.
func DefaultSpec() Spec {
	return Spec{
		SizeBytes:      2 * 256 * 2048,
		NumBanks:       2,
		PagesPerBank:   256,
		PageBytes:      2048,
		WordBytes:      4,
		NumRegionSlots: 8,
		FIFODepth:      16,
	}
}

// Validate checks that the geometry is internally consistent.
func (s Spec) Validate() error {
	if s.NumBanks <= 0 || s.PagesPerBank <= 0 || s.PageBytes == 0 {
		return fmt.Errorf("flash: bank/page geometry must be positive")
	}

	if s.WordBytes != 4 {
		return fmt.Errorf("flash: only a 4-byte bus word is supported, got %d",
			s.WordBytes)
	}

	if s.PageBytes%s.WordBytes != 0 {
		return fmt.Errorf("flash: page size %d is not a whole number of words",
			s.PageBytes)
	}

	expected := uint64(s.NumBanks) * uint64(s.PagesPerBank) * s.PageBytes
	if s.SizeBytes != expected {
		return fmt.Errorf("flash: size %d does not match %d banks x %d pages x %d bytes",
			s.SizeBytes, s.NumBanks, s.PagesPerBank, s.PageBytes)
	}

	if s.NumRegionSlots <= 0 {
		return fmt.Errorf("flash: at least one protection-region slot is required")
	}

	if s.FIFODepth <= 0 {
		return fmt.Errorf("flash: FIFO depth must be positive")
	}

	return nil
}

// TotalPages returns the number of pages across all banks.
func (s Spec) TotalPages() int {
	return s.NumBanks * s.PagesPerBank
}

// TotalWords returns the number of bus words in the flash.
func (s Spec) TotalWords() uint64 {
	return s.SizeBytes / s.WordBytes
}

// WordsPerPage returns the number of bus words in one page.
func (s Spec) WordsPerPage() int {
	return int(s.PageBytes / s.WordBytes)
}

// WordsPerBank returns the number of bus words in one bank.
func (s Spec) WordsPerBank() int {
	return s.PagesPerBank * s.WordsPerPage()
}

// BankBytes returns the number of bytes in one bank.
func (s Spec) BankBytes() uint64 {
	return uint64(s.PagesPerBank) * s.PageBytes
}

// WordAlign rounds addr down to a bus-word boundary.
func (s Spec) WordAlign(addr uint64) uint64 {
	return addr / s.WordBytes * s.WordBytes
}

// WordIndex returns the index of the bus word that contains addr.
func (s Spec) WordIndex(addr uint64) uint64 {
	return addr / s.WordBytes
}

// WordsFrom returns the number of whole bus words between the word that
// contains addr and the end of the flash.
func (s Spec) WordsFrom(addr uint64) uint64 {
	return s.TotalWords() - s.WordIndex(addr)
}

// PageOf returns the index of the page that contains addr, counted across
// all banks.
func (s Spec) PageOf(addr uint64) int {
	return int(addr / s.PageBytes)
}

// BankOf returns the index of the bank that contains addr.
func (s Spec) BankOf(addr uint64) int {
	return int(addr / s.BankBytes())
}

// PageStart returns the byte address of the first word of the given page.
func (s Spec) PageStart(page int) uint64 {
	return uint64(page) * s.PageBytes
}

// BankStart returns the byte address of the first word of the given bank.
func (s Spec) BankStart(bank int) uint64 {
	return uint64(bank) * s.BankBytes()
}
