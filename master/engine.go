package master

import "github.com/rholderried/sci"

// Master drives one protocol endpoint from the controlling-host side:
// request submission, response correlation, and multi-packet
// aggregation, §4.6.
type Master struct {
	opts sci.Options

	rx   *sci.PacketBuffer
	tx   *sci.PacketBuffer
	recv *sci.Receiver
	xmit *sci.Transmitter
	cb   Callbacks

	state   State
	pending pendingTransfer
}

// New builds a Master over cb.
func New(cb Callbacks, opts ...sci.Option) *Master {
	o := sci.NewOptions(opts...)
	rx := sci.NewPacketBuffer(o.RxCapacity)
	tx := sci.NewPacketBuffer(o.TxCapacity)
	return &Master{
		opts: o,
		rx:   rx,
		tx:   tx,
		recv: sci.NewReceiver(rx),
		xmit: sci.NewTransmitter(tx),
		cb:   cb,
	}
}

// GetState returns the current top state, §6 get_state.
func (m *Master) GetState() State { return m.state }

// ReleaseProtocol forces the engine back to Idle from any state and drops
// any in-flight aggregation buffers, §5 "Cancellation".
func (m *Master) ReleaseProtocol() {
	m.pending.clear()
	m.state = StateIdle
	m.recv.Reset()
	m.xmit.Acknowledge()
}

// SubmitGetVar submits a `?` request, §6 submit_getvar.
func (m *Master) SubmitGetVar(num int16) (bool, error) {
	return m.submit(sci.Request{Num: num, Kind: sci.KindGetVar})
}

// SubmitSetVar submits a `!` request carrying one value, §6 submit_setvar.
func (m *Master) SubmitSetVar(num int16, value uint32) (bool, error) {
	return m.submit(sci.Request{Num: num, Kind: sci.KindSetVar, Values: []uint32{value}})
}

// SubmitCommand submits a `:` request, §6 submit_command.
func (m *Master) SubmitCommand(num int16, values []uint32) (bool, error) {
	return m.submit(sci.Request{Num: num, Kind: sci.KindCommand, Values: values})
}

// submit implements §4.6 "Submission": builds the request dataframe,
// flushes it to the TX buffer, and arms the transmitter. It fails (with
// the §9 Open Question #1 resolution of always returning a value) if the
// protocol is not Idle, or if the encoded frame would not fit TxCapacity.
func (m *Master) submit(req sci.Request) (bool, error) {
	if m.state != StateIdle {
		return false, ErrProtocolBusy
	}
	body := sci.EncodeRequest(nil, req)
	if len(body) > m.opts.TxCapacity {
		return false, ErrMessageExceedsTxBufferSize
	}
	m.pending.clear()
	m.pending.active = true
	m.pending.req = req
	m.stage(body)
	return true, nil
}

// submitUpstreamContinuation submits a bare `>` request for the same
// number, §4.6 "switch to stream mode, submit an `>` upstream request
// with the same number."
func (m *Master) submitUpstreamContinuation() {
	req := sci.Request{Num: m.pending.req.Num, Kind: sci.KindUpstream}
	body := sci.EncodeRequest(nil, req)
	m.stage(body)
}

// resubmit re-sends the outstanding request verbatim, §4.6 "Repeat
// semantics" / a COMMAND continuation's empty-value-list resubmission.
func (m *Master) resubmit() {
	req := sci.Request{Num: m.pending.req.Num, Kind: m.pending.req.Kind}
	if !m.pending.cmdStarted && !m.pending.streamMode {
		req.Values = m.pending.req.Values
	}
	m.stage(sci.EncodeRequest(nil, req))
}

func (m *Master) stage(body []byte) {
	m.tx.Clear()
	if buf, ok := m.tx.Reserve(len(body)); ok {
		copy(buf, body)
		m.tx.Commit(len(body))
	}
	m.xmit.Enqueue()
	m.state = StateSending
}

func (m *Master) applyDecision(d Decision) {
	if d == DecisionRepeat {
		m.resubmit()
		return
	}
	m.release()
}

func (m *Master) release() {
	m.pending.clear()
	m.state = StateIdle
}

func (m *Master) fail() {
	m.pending.clear()
	m.state = StateError
}

// Tick drives the transmit half of the top state machine; response
// handling happens synchronously inside OnBytes as packets complete, §4.7.
func (m *Master) Tick() {
	switch m.state {
	case StateSending:
		err := m.xmit.Tick(m.cb.TxBusy, m.cb.Tx)
		if err != nil && err != sci.ErrWouldBlock {
			m.fail()
			return
		}
		if m.xmit.State() == sci.TransmitReady {
			m.xmit.Acknowledge()
			m.state = StateReceiving
		}
	case StateReceiving, StateIdle, StateEvaluating, StateError:
		// nothing to pump; OnBytes drives these.
	}
}

// OnBytes feeds received bytes into the framing receiver (or, while a
// stream-mode upstream transfer is in progress, directly into the
// upstream aggregation buffer), §4.6 "Receive". It returns sci.ErrMore
// while an upstream payload is still being accumulated across multiple
// calls, and nil once idle.
func (m *Master) OnBytes(data []byte) error {
	for _, b := range data {
		m.recv.OnByte(b)
		if m.recv.State() != sci.ReceivePending {
			continue
		}
		body := append([]byte(nil), m.recv.Packet()...)
		m.recv.Reset()

		if m.pending.streamMode {
			m.consumeUpstreamPacket(body)
			continue
		}
		m.state = StateEvaluating
		m.evaluateResponse(body)
	}
	if m.pending.streamMode {
		return sci.ErrMore
	}
	return nil
}

func (m *Master) consumeUpstreamPacket(body []byte) {
	p := &m.pending
	p.upstream = append(p.upstream, body...)
	if uint32(len(p.upstream)) < p.totalLen {
		m.submitUpstreamContinuation()
		return
	}
	p.streamMode = false
	if m.cb.OnUpstream != nil {
		m.cb.OnUpstream(p.req.Num, p.upstream)
	}
	m.release()
}

func (m *Master) evaluateResponse(body []byte) {
	hdr, rest, ackFound, ok := sci.ParseResponseHeader(body)
	if !ok {
		m.fail()
		return
	}
	if !m.pending.active || hdr.Num != m.pending.req.Num {
		// A spontaneous response is a framing error, §5.
		m.fail()
		return
	}
	if hdr.Kind != m.pending.req.Kind {
		m.fail()
		return
	}

	switch {
	case hdr.Kind == sci.KindCommand:
		m.handleCommand(hdr, rest, ackFound)
	case ackFound && (hdr.Ack == sci.AckError || hdr.Ack == sci.AckUnknown):
		m.handleGenericError(hdr)
	case hdr.Kind == sci.KindSetVar:
		m.handleSetVar(hdr)
	case hdr.Kind == sci.KindGetVar:
		m.handleGetVar(hdr, rest)
	default:
		m.fail()
	}
}

// handleGenericError dispatches an ERR/NAK response for set-var or
// get-var the same way as their success path: the result callback always
// gets the chance to decide repeat vs release.
func (m *Master) handleGenericError(hdr sci.ResponseHeader) {
	switch m.pending.req.Kind {
	case sci.KindSetVar:
		m.handleSetVar(hdr)
	case sci.KindGetVar:
		m.handleGetVar(hdr, nil)
	default:
		m.fail()
	}
}
