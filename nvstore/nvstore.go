// Package nvstore provides an in-memory stand-in for a slave's
// non-volatile store, for tests and the bundled examples. A real
// deployment backs slave.NVReader/NVWriter with EEPROM, flash, or a file;
// this one backs them with a plain byte slice so examples and tests don't
// need real hardware.
package nvstore

import (
	"log"
	"sync"

	"github.com/rholderried/sci/internal/bo"
)

// Store is a fixed-size, cell-addressed memory region. CellWidth is the
// number of bytes one address unit spans (1, 2, or 4, matching
// sci.Options.NVCellWidth); multi-byte cells are packed in the host's
// native byte order via internal/bo, mirroring how a real memory-mapped
// NV part would be addressed on this architecture.
type Store struct {
	mu        sync.Mutex
	cellWidth int
	mem       []byte
}

// New returns a Store with room for cells addresses of cellWidth bytes
// each. cellWidth must be 1, 2, or 4; anything else is treated as 1.
func New(cells int, cellWidth int) *Store {
	switch cellWidth {
	case 1, 2, 4:
	default:
		cellWidth = 1
	}
	return &Store{cellWidth: cellWidth, mem: make([]byte, cells*cellWidth)}
}

// Read implements slave.NVReader.
func (s *Store) Read(address uint16) (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	off := int(address) * s.cellWidth
	if off < 0 || off+s.cellWidth > len(s.mem) {
		log.Printf("sci/nvstore: read out of range at address %d", address)
		return 0, false
	}
	switch s.cellWidth {
	case 1:
		return uint32(s.mem[off]), true
	case 2:
		return uint32(bo.Native().Uint16(s.mem[off : off+2])), true
	default:
		return bo.Native().Uint32(s.mem[off : off+4]), true
	}
}

// Write implements slave.NVWriter.
func (s *Store) Write(address uint16, value uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	off := int(address) * s.cellWidth
	if off < 0 || off+s.cellWidth > len(s.mem) {
		log.Printf("sci/nvstore: write out of range at address %d", address)
		return false
	}
	switch s.cellWidth {
	case 1:
		s.mem[off] = byte(value)
	case 2:
		bo.Native().PutUint16(s.mem[off:off+2], uint16(value))
	default:
		bo.Native().PutUint32(s.mem[off:off+4], value)
	}
	return true
}
