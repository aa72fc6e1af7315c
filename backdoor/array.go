package backdoor

import "fmt"

// An array is a sparse byte store for one flash partition. Data is kept in
// page-sized units allocated on first touch; an untouched page reads as
// erased (all ones), matching flash behavior.
type array struct {
	pageBytes uint64
	capacity  uint64
	pages     map[uint64][]byte
}

func newArray(capacity, pageBytes uint64) *array {
	return &array{
		pageBytes: pageBytes,
		capacity:  capacity,
		pages:     make(map[uint64][]byte),
	}
}

func (a *array) page(addr uint64) ([]byte, error) {
	if addr >= a.capacity {
		return nil, fmt.Errorf(
			"backdoor: address 0x%X beyond partition capacity 0x%X",
			addr, a.capacity)
	}

	base := addr - addr%a.pageBytes
	page, ok := a.pages[base]
	if !ok {
		page = make([]byte, a.pageBytes)
		for i := range page {
			page[i] = 0xFF
		}
		a.pages[base] = page
	}

	return page, nil
}

func (a *array) read(addr, n uint64) ([]byte, error) {
	res := make([]byte, n)
	offset := uint64(0)

	for offset < n {
		page, err := a.page(addr + offset)
		if err != nil {
			return nil, err
		}

		inPage := (addr + offset) % a.pageBytes
		chunk := min(n-offset, a.pageBytes-inPage)
		copy(res[offset:offset+chunk], page[inPage:inPage+chunk])
		offset += chunk
	}

	return res, nil
}

func (a *array) write(addr uint64, data []byte) error {
	offset := uint64(0)

	for offset < uint64(len(data)) {
		page, err := a.page(addr + offset)
		if err != nil {
			return err
		}

		inPage := (addr + offset) % a.pageBytes
		chunk := min(uint64(len(data))-offset, a.pageBytes-inPage)
		copy(page[inPage:inPage+chunk], data[offset:offset+chunk])
		offset += chunk
	}

	return nil
}

func (a *array) fill(addr, n uint64, value byte) error {
	offset := uint64(0)

	for offset < n {
		page, err := a.page(addr + offset)
		if err != nil {
			return err
		}

		inPage := (addr + offset) % a.pageBytes
		chunk := min(n-offset, a.pageBytes-inPage)
		for i := inPage; i < inPage+chunk; i++ {
			page[i] = value
		}
		offset += chunk
	}

	return nil
}
