package slave_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rholderried/sci"
	"github.com/rholderried/sci/slave"
)

// txCapture collects everything offered to Tx, standing in for a
// transport that always accepts everything immediately.
type txCapture struct{ out []byte }

func (c *txCapture) send(p []byte) (int, error) {
	c.out = append(c.out, p...)
	return len(p), nil
}

func runToIdle(t *testing.T, s *slave.Slave, tx *txCapture, maxTicks int) {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		s.Tick()
		if s.State() == slave.TopIdle && len(tx.out) > 0 {
			return
		}
	}
	t.Fatalf("slave never reached Idle with output after %d ticks (state=%v)", maxTicks, s.State())
}

func feedFrame(s *slave.Slave, body string) {
	s.OnByte(sci.STX)
	for i := 0; i < len(body); i++ {
		s.OnByte(body[i])
	}
	s.OnByte(sci.ETX)
}

func newScenarioSlave(t *testing.T) (*slave.Slave, *txCapture) {
	t.Helper()
	var f32 float32 = 2.356  // #1
	var spare uint8          // #2, unused by any scenario below
	var u8 uint8 = 0xF5      // #3
	var u16 uint16 = 0x86E6  // #4
	var i32 int32 = -87344381 // #5, == 0xFACB3B03

	entries := []slave.VarEntry{
		{Cell: slave.NewF32Cell(&f32), Storage: slave.Volatile},
		{Cell: slave.NewU8Cell(&spare), Storage: slave.Volatile},
		{Cell: slave.NewU8Cell(&u8), Storage: slave.Volatile},
		{Cell: slave.NewU16Cell(&u16), Storage: slave.Volatile},
		{Cell: slave.NewI32Cell(&i32), Storage: slave.Volatile},
	}

	commands := slave.CommandTable{
		func(values []uint32, out *slave.TransferDescriptor) sci.Ack {
			out.Values = []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
			return sci.AckSuccessData
		},
	}

	tx := &txCapture{}
	s, err := slave.New(entries, commands, slave.Callbacks{Tx: tx.send})
	require.NoError(t, err)
	return s, tx
}

func TestSlave_Scenario1_GetU8(t *testing.T) {
	s, tx := newScenarioSlave(t)
	feedFrame(s, "3?")
	runToIdle(t, s, tx, 50)
	assert.Equal(t, "\x023?ACK;F5\x03", string(tx.out))
}

func TestSlave_Scenario2_GetU16(t *testing.T) {
	s, tx := newScenarioSlave(t)
	feedFrame(s, "4?")
	runToIdle(t, s, tx, 50)
	assert.Equal(t, "\x024?ACK;86E6\x03", string(tx.out))
}

func TestSlave_Scenario3_GetI32(t *testing.T) {
	s, tx := newScenarioSlave(t)
	feedFrame(s, "5?")
	runToIdle(t, s, tx, 50)
	assert.Equal(t, "\x025?ACK;FACB3B03\x03", string(tx.out))
}

func TestSlave_Scenario4_GetF32(t *testing.T) {
	s, tx := newScenarioSlave(t)
	feedFrame(s, "1?")
	runToIdle(t, s, tx, 50)
	assert.Equal(t, "\x021?ACK;4016C8B4\x03", string(tx.out))
}

func TestSlave_Scenario6_SetU8(t *testing.T) {
	s, tx := newScenarioSlave(t)
	feedFrame(s, "3!42")
	runToIdle(t, s, tx, 50)
	assert.Equal(t, "\x023!ACK\x03", string(tx.out))
}

func TestSlave_Scenario7_MalformedRequest(t *testing.T) {
	s, tx := newScenarioSlave(t)
	feedFrame(s, "123")
	runToIdle(t, s, tx, 50)
	assert.Equal(t, "\x020#ERR;7\x03", string(tx.out))
}

func TestSlave_Scenario5_CommandSinglePacket(t *testing.T) {
	s, tx := newScenarioSlave(t)
	feedFrame(s, "1:")
	runToIdle(t, s, tx, 50)
	assert.Equal(t, "\x021:DAT;A;1,2,3,4,5,6,7,8,9,A\x03", string(tx.out))
}

// A small TX capacity forces the first packet to page only part of the
// result list; a continuation ':' request for the same command number
// must pick up where the first packet left off, without repeating the
// DAT/total-length header, §4.3.
func TestSlave_CommandPaging_SplitsAcrossContinuationRequests(t *testing.T) {
	commands := slave.CommandTable{
		func(values []uint32, out *slave.TransferDescriptor) sci.Ack {
			out.Values = []uint32{1, 2, 3, 4, 5}
			return sci.AckSuccessData
		},
	}
	tx := &txCapture{}
	s, err := slave.New(nil, commands, slave.Callbacks{Tx: tx.send}, sci.WithTxCapacity(12))
	require.NoError(t, err)

	feedFrame(s, "1:")
	runToIdle(t, s, tx, 50)
	first := string(tx.out)
	assert.Contains(t, first, "1:DAT;5;")
	assert.NotContains(t, first, "1,2,3,4,5", "first page must not fit every value at this capacity")

	tx.out = nil
	feedFrame(s, "1:")
	runToIdle(t, s, tx, 50)
	second := string(tx.out)
	assert.True(t, len(second) > 0)
	assert.NotContains(t, second, "DAT", "continuation packets omit the ACK3 header")
}

func TestSlave_ReleaseProtocolIsIdempotent(t *testing.T) {
	s, _ := newScenarioSlave(t)
	s.ReleaseProtocol()
	assert.Equal(t, slave.TopIdle, s.State())
	s.ReleaseProtocol()
	assert.Equal(t, slave.TopIdle, s.State())
}
