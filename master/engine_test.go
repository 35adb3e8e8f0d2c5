package master_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rholderried/sci"
	"github.com/rholderried/sci/master"
	"github.com/rholderried/sci/slave"
)

// link is a minimal in-memory transport: everything written to send is
// immediately available to drain, with no capacity limit.
type link struct{ buf []byte }

func (l *link) send(p []byte) (int, error) {
	l.buf = append(l.buf, p...)
	return len(p), nil
}

func (l *link) drain() []byte {
	b := l.buf
	l.buf = nil
	return b
}

// pumpUntilIdle alternates ticking/draining m and s until m reports Idle
// or the tick budget is exhausted.
func pumpUntilIdle(t *testing.T, m *master.Master, s *slave.Slave, toSlave, toMaster *link, budget int) {
	t.Helper()
	for i := 0; i < budget; i++ {
		m.Tick()
		s.Tick()
		for _, b := range toSlave.drain() {
			s.OnByte(b)
		}
		for _, b := range toMaster.drain() {
			_ = m.OnBytes([]byte{b})
		}
		if m.GetState() == master.StateIdle {
			return
		}
	}
	t.Fatalf("master never reached Idle after %d ticks (state=%v)", budget, m.GetState())
}

func newLinkedPair(t *testing.T, entries []slave.VarEntry, commands slave.CommandTable, cb master.Callbacks, opts ...sci.Option) (*master.Master, *slave.Slave, *link, *link) {
	t.Helper()
	toSlave := &link{}
	toMaster := &link{}
	cb.Tx = toSlave.send
	m := master.New(cb, opts...)
	s, err := slave.New(entries, commands, slave.Callbacks{Tx: toMaster.send}, opts...)
	require.NoError(t, err)
	return m, s, toSlave, toMaster
}

func TestMaster_GetVarRoundTrip(t *testing.T) {
	var speed uint32 = 0x2A
	entries := []slave.VarEntry{{Cell: slave.NewU32Cell(&speed), Storage: slave.Volatile}}

	var gotAck sci.Ack
	var gotValue uint32
	m, s, toSlave, toMaster := newLinkedPair(t, entries, nil, master.Callbacks{
		OnGetVar: func(ack sci.Ack, num int16, value uint32, errCode uint16) master.Decision {
			gotAck, gotValue = ack, value
			return master.DecisionRelease
		},
	})

	ok, err := m.SubmitGetVar(1)
	require.True(t, ok)
	require.NoError(t, err)

	pumpUntilIdle(t, m, s, toSlave, toMaster, 50)
	assert.Equal(t, sci.AckSuccess, gotAck)
	assert.Equal(t, uint32(0x2A), gotValue)
}

func TestMaster_SetVarRoundTrip(t *testing.T) {
	var mode uint8
	entries := []slave.VarEntry{{Cell: slave.NewU8Cell(&mode), Storage: slave.Volatile}}

	var gotAck sci.Ack
	var gotErr uint16
	m, s, toSlave, toMaster := newLinkedPair(t, entries, nil, master.Callbacks{
		OnSetVar: func(ack sci.Ack, num int16, errCode uint16) master.Decision {
			gotAck, gotErr = ack, errCode
			return master.DecisionRelease
		},
	})

	ok, err := m.SubmitSetVar(1, 0x55)
	require.True(t, ok)
	require.NoError(t, err)

	pumpUntilIdle(t, m, s, toSlave, toMaster, 50)
	assert.Equal(t, sci.AckSuccess, gotAck)
	assert.Equal(t, uint16(0), gotErr)
	assert.Equal(t, uint8(0x55), mode)
}

func TestMaster_GetVarInvalidNumberReportsError(t *testing.T) {
	entries := []slave.VarEntry{{Cell: slave.NewU8Cell(new(uint8)), Storage: slave.Volatile}}

	var gotAck sci.Ack
	var gotErr uint16
	m, s, toSlave, toMaster := newLinkedPair(t, entries, nil, master.Callbacks{
		OnGetVar: func(ack sci.Ack, num int16, value uint32, errCode uint16) master.Decision {
			gotAck, gotErr = ack, errCode
			return master.DecisionRelease
		},
	})

	ok, err := m.SubmitGetVar(99)
	require.True(t, ok)
	require.NoError(t, err)

	pumpUntilIdle(t, m, s, toSlave, toMaster, 50)
	assert.Equal(t, sci.AckError, gotAck)
	assert.Equal(t, sci.ErrVarNumberInvalid.WireValue(0), gotErr)
}

func TestMaster_CommandRoundTrip_MultiPacket(t *testing.T) {
	commands := slave.CommandTable{
		func(values []uint32, out *slave.TransferDescriptor) sci.Ack {
			out.Values = []uint32{1, 2, 3, 4, 5}
			return sci.AckSuccessData
		},
	}

	var gotValues []uint32
	m, s, toSlave, toMaster := newLinkedPair(t, nil, commands, master.Callbacks{
		OnCommand: func(ack sci.Ack, num int16, values []uint32, errCode uint16) {
			gotValues = values
		},
	}, sci.WithTxCapacity(12))

	ok, err := m.SubmitCommand(1, nil)
	require.True(t, ok)
	require.NoError(t, err)

	pumpUntilIdle(t, m, s, toSlave, toMaster, 200)
	assert.Equal(t, []uint32{1, 2, 3, 4, 5}, gotValues)
}

func TestMaster_SubmitFailsWhenBusy(t *testing.T) {
	m := master.New(master.Callbacks{Tx: func([]byte) (int, error) { return 0, sci.ErrWouldBlock }})
	ok, err := m.SubmitGetVar(1)
	require.True(t, ok)
	require.NoError(t, err)

	ok, err = m.SubmitGetVar(2)
	assert.False(t, ok)
	assert.ErrorIs(t, err, master.ErrProtocolBusy)
}

func TestMaster_ReleaseProtocolIsIdempotent(t *testing.T) {
	m := master.New(master.Callbacks{})
	m.ReleaseProtocol()
	assert.Equal(t, master.StateIdle, m.GetState())
	m.ReleaseProtocol()
	assert.Equal(t, master.StateIdle, m.GetState())
}
