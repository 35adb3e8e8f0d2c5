package slave

import "github.com/rholderried/sci"

// TopState is the slave's top state machine, §4.7.
type TopState uint8

const (
	TopIdle TopState = iota
	TopReceiving
	TopEvaluating
	TopSending
	TopError
)

func (s TopState) String() string {
	switch s {
	case TopIdle:
		return "Idle"
	case TopReceiving:
		return "Receiving"
	case TopEvaluating:
		return "Evaluating"
	case TopSending:
		return "Sending"
	case TopError:
		return "Error"
	default:
		return "?"
	}
}

// Callbacks collects the external collaborators a Slave needs, §6.
// NVRead/NVWrite are optional (a Slave with none set simply cannot hold
// persistent variables; NV reads/writes then report ErrNvReadFailed /
// ErrNvWriteFailed). Tx is required; TxBusy is optional.
type Callbacks struct {
	NVRead  NVReader
	NVWrite NVWriter

	// Tx sends as many bytes of p as the transport driver currently
	// accepts, returning the count (which may be less than len(p), or
	// even zero) and nil, or sci.ErrWouldBlock if it cannot accept any
	// bytes this tick, §6 tx_nonblocking.
	Tx sci.TxFunc
	// TxBusy, if non-nil, is consulted before every Tx call, §6 tx_busy?.
	TxBusy func() bool
}

// Slave drives one protocol endpoint end to end: framing, dataframe
// codec, and transfer engine, pumped by Tick and OnByte, §4.7.
type Slave struct {
	opts sci.Options

	rx    *sci.PacketBuffer
	tx    *sci.PacketBuffer
	recv  *sci.Receiver
	xmit  *sci.Transmitter
	cb    Callbacks
	state TopState

	engine *Engine
	table  *Table
}

// New builds a Slave over table and commands. It performs the variable
// table's single-pass NV partitioning (§3/§4.4); a full NV partition
// table is the one condition under which New returns a non-nil error
// (ErrNvPartitionTableExhausted), §7 "Fatal errors".
func New(entries []VarEntry, commands CommandTable, cb Callbacks, opts ...sci.Option) (*Slave, error) {
	o := sci.NewOptions(opts...)

	table, code := NewTable(entries, cb.NVRead, cb.NVWrite, o)
	if code != sci.ErrNone {
		return nil, code
	}

	rx := sci.NewPacketBuffer(o.RxCapacity)
	tx := sci.NewPacketBuffer(o.TxCapacity)

	s := &Slave{
		opts:   o,
		rx:     rx,
		tx:     tx,
		recv:   sci.NewReceiver(rx),
		xmit:   sci.NewTransmitter(tx),
		cb:     cb,
		engine: NewEngine(table, commands, o),
		table:  table,
	}
	return s, nil
}

// OnByte feeds one received byte into the framing receiver, §5: the one
// entry point safe to call from an interrupt context.
func (s *Slave) OnByte(b byte) { s.recv.OnByte(b) }

// GetVar returns the table entry for num, §6.
func (s *Slave) GetVar(num int16) (VarEntry, sci.Code) { return s.table.Entry(num) }

// Version returns the implementation's version triple, §6.
func (s *Slave) Version() sci.Version { return sci.GetVersion() }

// State returns the top state machine's current state.
func (s *Slave) State() TopState { return s.state }

// ReleaseProtocol forces the engine back to Idle and drops any saved
// response, regardless of current state. Idempotent from any state, §8.
func (s *Slave) ReleaseProtocol() {
	s.state = TopIdle
	s.recv.Reset()
	s.xmit.Acknowledge()
	s.engine.ClearResponseControl()
}

// Tick drives one step of the top state machine, §4.7:
//
//	Idle --(framing Pending)--> Evaluating --(armed)--> Sending --(Ready)--> Idle
func (s *Slave) Tick() {
	switch s.state {
	case TopIdle:
		switch s.recv.State() {
		case sci.ReceivePending:
			s.state = TopEvaluating
		case sci.ReceiveBusy:
			s.state = TopReceiving
		}
	case TopReceiving:
		if s.recv.State() == sci.ReceivePending {
			s.state = TopEvaluating
		}
	case TopEvaluating:
		s.evaluate()
	case TopSending:
		s.pumpSend()
	case TopError:
		// terminal until ReleaseProtocol
	}
}

func (s *Slave) evaluate() {
	body := s.recv.Packet()
	req, code, ok := sci.DecodeRequest(body, s.opts.MaxRequestValues)
	s.recv.Reset()

	if !ok {
		s.engine.ClearResponseControl()
		dst := sci.EncodeRequest(nil, sci.Request{Num: 0, Kind: sci.KindUnknown})
		dst = append(dst, sci.AckError.String()...)
		dst = append(dst, ';')
		dst = sci.AppendHex(dst, uint32(code.WireValue(s.opts.ErrorOffset)))
		s.stage(dst)
		return
	}

	s.engine.Process(req)
	dst := s.engine.BuildPacket(nil, s.opts.TxCapacity)
	s.stage(dst)
}

func (s *Slave) stage(body []byte) {
	s.tx.Clear()
	if buf, ok := s.tx.Reserve(len(body)); ok {
		copy(buf, body)
		s.tx.Commit(len(body))
	} else {
		n := s.tx.Remaining()
		buf, _ := s.tx.Reserve(n)
		copy(buf, body[:n])
		s.tx.Commit(n)
	}
	s.xmit.Enqueue()
	s.state = TopSending
}

func (s *Slave) pumpSend() {
	err := s.xmit.Tick(s.cb.TxBusy, s.cb.Tx)
	if err != nil && err != sci.ErrWouldBlock {
		s.state = TopError
		return
	}
	if s.xmit.State() == sci.TransmitReady {
		s.xmit.Acknowledge()
		s.state = TopIdle
	}
}
