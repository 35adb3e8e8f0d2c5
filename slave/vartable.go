package slave

import "github.com/rholderried/sci"

// StorageClass selects whether a variable table entry survives a reset,
// §3.
type StorageClass uint8

const (
	Volatile StorageClass = iota
	Persistent
)

// PostWriteHook runs after a successful set-var, §3.
type PostWriteHook func(num int16, wire uint32)

// VarEntry is one row of the variable table, §3.
type VarEntry struct {
	Cell      Cell
	Storage   StorageClass
	PostWrite PostWriteHook
}

// Table is the slave's variable-table access layer, §4.4. It owns the
// persistent partition table and mediates every read/write against the
// user-supplied entries and NV callbacks.
type Table struct {
	entries   []VarEntry
	partition []partitionEntry // index into entries -> NV base address
	nvIndex   map[int]uint16   // entries-index -> NV base address, O(1) lookup
	nvRead    NVReader
	nvWrite   NVWriter
	opts      sci.Options
}

// NewTable builds the partition table over entries (a single linear scan,
// §3 "Persistent partition table") and warm-starts every persistent
// entry's in-memory value from NV. NV read failures at init are
// non-fatal — the entry keeps its Go zero value / caller-supplied default.
// Exceeding opts.MaxNVVars is the one fatal init error, §7.
func NewTable(entries []VarEntry, nvRead NVReader, nvWrite NVWriter, opts sci.Options) (*Table, sci.Code) {
	t := &Table{
		entries: entries,
		nvRead:  nvRead,
		nvWrite: nvWrite,
		opts:    opts,
	}
	partition, nvIndex, code := buildPartitionTable(entries, opts.NVCellWidth, opts.NVBaseAddress, opts.MaxNVVars)
	if code != sci.ErrNone {
		return nil, code
	}
	t.partition = partition
	t.nvIndex = nvIndex

	for i := range entries {
		if entries[i].Storage != Persistent {
			continue
		}
		_ = t.refreshFromNV(i) // non-fatal: keep default on failure
	}
	return t, sci.ErrNone
}

// index converts a 1-origin wire variable number to a 0-origin slice
// index, validating range.
func (t *Table) index(num int16) (int, sci.Code) {
	if num <= 0 || int(num) > len(t.entries) {
		return 0, sci.ErrVarNumberInvalid
	}
	return int(num) - 1, sci.ErrNone
}

// Entry returns a copy of the table row for num, §4.5 get_var.
func (t *Table) Entry(num int16) (VarEntry, sci.Code) {
	i, code := t.index(num)
	if code != sci.ErrNone {
		return VarEntry{}, code
	}
	return t.entries[i], sci.ErrNone
}

// cellWidthBytes returns the configured NV cell width, clamped to the
// supported {1,2,4}.
func (t *Table) cellWidthBytes() int {
	switch t.opts.NVCellWidth {
	case 1, 2, 4:
		return t.opts.NVCellWidth
	default:
		return 1
	}
}

func ceilDivCells(widthBytes uint8, cellWidthBytes int) int {
	n := (int(widthBytes) + cellWidthBytes - 1) / cellWidthBytes
	if n < 1 {
		return 1
	}
	return n
}

// refreshFromNV reads every NV cell backing entries[i] and ORs them into
// the in-memory value, §4.4 "Non-volatile multi-cell access".
func (t *Table) refreshFromNV(i int) sci.Code {
	base, ok := t.nvIndex[i]
	if !ok {
		return sci.ErrNvAddressUnknown
	}
	if t.nvRead == nil {
		return sci.ErrNvReadFailed
	}
	cell := t.entries[i].Cell
	cellWidth := t.cellWidthBytes()
	cells := ceilDivCells(cell.Type().Width(), cellWidth)
	cellBits := uint(cellWidth * 8)
	mask := cellMask(cellBits)

	var value uint32
	for c := 0; c < cells; c++ {
		cv, ok := t.nvRead(base + uint16(c))
		if !ok {
			return sci.ErrNvReadFailed
		}
		shift := uint(c) * cellBits
		if shift < 32 {
			value |= (cv & mask) << shift
		}
	}
	cell.WriteWire(value, t.opts.Encoding)
	return sci.ErrNone
}

// syncToNV writes the in-memory value of entries[i] out across its NV
// cells.
func (t *Table) syncToNV(i int) sci.Code {
	base, ok := t.nvIndex[i]
	if !ok {
		return sci.ErrNvAddressUnknown
	}
	if t.nvWrite == nil {
		return sci.ErrNvWriteFailed
	}
	cell := t.entries[i].Cell
	cellWidth := t.cellWidthBytes()
	cells := ceilDivCells(cell.Type().Width(), cellWidth)
	cellBits := uint(cellWidth * 8)
	mask := cellMask(cellBits)
	value := cell.ReadWire(t.opts.Encoding)

	for c := 0; c < cells; c++ {
		shift := uint(c) * cellBits
		var cv uint32
		if shift < 32 {
			cv = (value >> shift) & mask
		}
		if !t.nvWrite(base+uint16(c), cv) {
			return sci.ErrNvWriteFailed
		}
	}
	return sci.ErrNone
}

func cellMask(bits uint) uint32 {
	if bits >= 32 {
		return 0xFFFFFFFF
	}
	return uint32(1)<<bits - 1
}

// Read returns the 32-bit wire value of num, refreshing from NV first if
// the entry is persistent (§4.5 get-var dispatch: "if persistent, refresh
// from NV; read typed value").
func (t *Table) Read(num int16) (uint32, sci.Code) {
	i, code := t.index(num)
	if code != sci.ErrNone {
		return 0, code
	}
	if t.entries[i].Storage == Persistent {
		if rc := t.refreshFromNV(i); rc != sci.ErrNone {
			// NV refresh failures on read are surfaced; the in-memory
			// value is left untouched (stale) for the caller to decide.
			return t.entries[i].Cell.ReadWire(t.opts.Encoding), rc
		}
	}
	return t.entries[i].Cell.ReadWire(t.opts.Encoding), sci.ErrNone
}

// Write performs the full set-var sequence, §4.4:
//  1. read old value, 2. write new value into memory, 3. if persistent,
//     sync to NV — on failure, restore the old value and report
//     sci.ErrNvWriteFailed, 4. invoke the optional post-write hook.
//
// It returns the value now held in memory (the new value on success, the
// restored old value on NV failure).
func (t *Table) Write(num int16, wire uint32) (uint32, sci.Code) {
	i, code := t.index(num)
	if code != sci.ErrNone {
		return 0, code
	}
	entry := t.entries[i]
	old := entry.Cell.ReadWire(t.opts.Encoding)
	entry.Cell.WriteWire(wire, t.opts.Encoding)

	if entry.Storage == Persistent {
		if rc := t.syncToNV(i); rc != sci.ErrNone {
			entry.Cell.WriteWire(old, t.opts.Encoding)
			return old, rc
		}
	}
	if entry.PostWrite != nil {
		entry.PostWrite(num, wire)
	}
	return wire, sci.ErrNone
}
