package slave_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rholderried/sci"
	"github.com/rholderried/sci/slave"
)

func buildMixedTable() []slave.VarEntry {
	var u8 uint8
	var u32 uint32
	var i16 int16
	return []slave.VarEntry{
		{Cell: slave.NewU8Cell(&u8), Storage: slave.Volatile},
		{Cell: slave.NewU32Cell(&u32), Storage: slave.Persistent},
		{Cell: slave.NewI16Cell(&i16), Storage: slave.Persistent},
	}
}

func TestNewTable_PartitionStability(t *testing.T) {
	// Each NV cell reads back as its own address plus one, so the value
	// loaded into a persistent entry depends on the addresses it was given.
	nvRead := func(addr uint16) (uint32, bool) { return uint32(addr) + 1, true }
	nvWrite := func(uint16, uint32) bool { return true }

	t1, code1 := slave.NewTable(buildMixedTable(), nvRead, nvWrite, sci.NewOptions())
	require.Equal(t, sci.ErrNone, code1)
	t2, code2 := slave.NewTable(buildMixedTable(), nvRead, nvWrite, sci.NewOptions())
	require.Equal(t, sci.ErrNone, code2)

	e1, _ := t1.Entry(2)
	e2, _ := t2.Entry(2)
	assert.Equal(t, e1.Storage, e2.Storage)

	// Re-running NewTable over an identical table must yield an
	// identical Read result for every persistent entry (same NV
	// addresses assigned both times), §8 "Partition stability".
	v1, c1 := t1.Read(2)
	v2, c2 := t2.Read(2)
	assert.Equal(t, c1, c2)
	assert.Equal(t, v1, v2)
}

func TestNewTable_ExhaustedPartitionTableIsFatal(t *testing.T) {
	var a, b uint8
	entries := []slave.VarEntry{
		{Cell: slave.NewU8Cell(&a), Storage: slave.Persistent},
		{Cell: slave.NewU8Cell(&b), Storage: slave.Persistent},
	}
	nvRead := func(uint16) (uint32, bool) { return 0, true }
	nvWrite := func(uint16, uint32) bool { return true }

	_, code := slave.NewTable(entries, nvRead, nvWrite, sci.NewOptions(sci.WithMaxNVVars(1)))
	assert.Equal(t, sci.ErrNvPartitionTableExhausted, code)
}
