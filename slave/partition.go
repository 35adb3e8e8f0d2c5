package slave

import "github.com/rholderried/sci"

// partitionEntry maps one persistent variable's table index to its NV
// base address, §3 "Persistent partition table".
type partitionEntry struct {
	VarIndex int
	Address  uint16
}

// buildPartitionTable performs the single linear scan of InitVarstruct
// (original_source/C/Slave/Src/VarAccess.c): for each persistent entry, in
// table order, assign successive NV cells. The stride for each entry is
// its byte width divided by the NV cell width, clamped to >=1 — which,
// for the supported {1,2,4}-byte widths and {1,2,4}-byte cells, is always
// exactly ceil(width/cellWidth) (see ceilDivCells).
//
// Running this twice over the same table is pure and produces an
// identical partition assignment (§8 "Partition stability"): the function
// has no side effects beyond building the returned slice and map.
func buildPartitionTable(entries []VarEntry, cellWidthBytes int, baseAddress uint16, maxVars int) ([]partitionEntry, map[int]uint16, sci.Code) {
	if cellWidthBytes != 1 && cellWidthBytes != 2 && cellWidthBytes != 4 {
		cellWidthBytes = 1
	}

	partition := make([]partitionEntry, 0, maxVars)
	index := make(map[int]uint16, maxVars)
	addr := baseAddress

	for i, e := range entries {
		if e.Storage != Persistent {
			continue
		}
		if len(partition) == maxVars {
			return nil, nil, sci.ErrNvPartitionTableExhausted
		}
		partition = append(partition, partitionEntry{VarIndex: i, Address: addr})
		index[i] = addr

		stride := ceilDivCells(e.Cell.Type().Width(), cellWidthBytes)
		addr += uint16(stride)
	}
	return partition, index, sci.ErrNone
}
