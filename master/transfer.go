package master

import "github.com/rholderried/sci"

// State is the master's top state machine, §4.7 (the same lattice as the
// slave's, with Evaluating meaning "a response just arrived" rather than
// "a request just arrived").
type State uint8

const (
	StateIdle State = iota
	StateSending
	StateReceiving
	StateEvaluating
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSending:
		return "Sending"
	case StateReceiving:
		return "Receiving"
	case StateEvaluating:
		return "Evaluating"
	case StateError:
		return "Error"
	default:
		return "?"
	}
}

// Decision is a result callback's verdict on how the engine should proceed
// after reporting a get-var or set-var response, §4.6 "Control routine".
type Decision uint8

const (
	// DecisionRelease returns the protocol to Idle (the normal case).
	DecisionRelease Decision = iota
	// DecisionRepeat resubmits the outstanding request verbatim.
	DecisionRepeat
	// DecisionAbort releases the protocol, same as DecisionRelease; kept
	// distinct so a callback can express intent for its own logging.
	DecisionAbort
)

// Callbacks collects the result callbacks and transport hooks a Master
// needs, §4.6/§6.
type Callbacks struct {
	// OnSetVar reports a set-var response and chooses how to proceed.
	OnSetVar func(ack sci.Ack, num int16, errCode uint16) Decision
	// OnGetVar reports a get-var response and chooses how to proceed.
	OnGetVar func(ack sci.Ack, num int16, value uint32, errCode uint16) Decision
	// OnCommand reports a completed (possibly paged) command response.
	// values is nil for any ack other than SuccessData. The protocol
	// always releases after this call, §4.6.
	OnCommand func(ack sci.Ack, num int16, values []uint32, errCode uint16)
	// OnUpstream reports a completed upstream transfer. The protocol
	// always releases after this call.
	OnUpstream func(num int16, payload []byte)

	Tx     sci.TxFunc
	TxBusy func() bool
}

// pendingTransfer is the master's per-transaction state, §3 "Master
// transfer state".
type pendingTransfer struct {
	active bool
	req    sci.Request

	cmdStarted bool
	totalLen   uint32
	received   uint32
	resultBuf  []uint32

	streamMode bool
	upstream   []byte
}

func (p *pendingTransfer) clear() { *p = pendingTransfer{} }

// handleSetVar implements §4.6's set-var control routine.
func (m *Master) handleSetVar(hdr sci.ResponseHeader) {
	if m.cb.OnSetVar == nil {
		m.release()
		return
	}
	m.applyDecision(m.cb.OnSetVar(hdr.Ack, hdr.Num, hdr.Error))
}

// handleGetVar implements §4.6's get-var control routine.
func (m *Master) handleGetVar(hdr sci.ResponseHeader, rest []byte) {
	var value uint32
	if values, ok := sci.DecodeValues(rest); ok && len(values) > 0 {
		value = values[0]
	}
	if m.cb.OnGetVar == nil {
		m.release()
		return
	}
	m.applyDecision(m.cb.OnGetVar(hdr.Ack, hdr.Num, value, hdr.Error))
}

// handleCommand implements §4.6's command control routine, including
// multi-packet DAT aggregation and the switch into UPS stream mode.
func (m *Master) handleCommand(hdr sci.ResponseHeader, rest []byte, headerPresent bool) {
	p := &m.pending

	if !headerPresent {
		// Continuation packet: no ACK3 keyword, just a ';'-prefixed page
		// of result words, §4.3.
		values, ok := sci.DecodeValues(trimLeadingSemicolon(rest))
		if !ok {
			m.fail()
			return
		}
		p.resultBuf = append(p.resultBuf, values...)
		p.received += uint32(len(values))
		if p.received >= p.totalLen {
			m.finishCommand(sci.AckSuccessData, hdr.Error)
		} else {
			m.resubmit()
		}
		return
	}

	switch hdr.Ack {
	case sci.AckSuccessData:
		total, csv, ok := splitTotalLen(rest)
		if !ok {
			m.fail()
			return
		}
		p.cmdStarted = true
		p.totalLen = total
		p.resultBuf = nil
		values, ok := sci.DecodeValues(csv)
		if !ok {
			m.fail()
			return
		}
		p.resultBuf = append(p.resultBuf, values...)
		p.received = uint32(len(values))
		if p.received >= p.totalLen {
			m.finishCommand(sci.AckSuccessData, hdr.Error)
		} else {
			m.resubmit()
		}

	case sci.AckSuccessUpstream:
		total, _, ok := splitTotalLen(rest)
		if !ok {
			m.fail()
			return
		}
		p.streamMode = true
		p.totalLen = total
		p.upstream = make([]byte, 0, total)
		m.submitUpstreamContinuation()

	default:
		if m.cb.OnCommand != nil {
			m.cb.OnCommand(hdr.Ack, hdr.Num, nil, hdr.Error)
		}
		m.release()
	}
}

func (m *Master) finishCommand(ack sci.Ack, errCode uint16) {
	p := &m.pending
	if m.cb.OnCommand != nil {
		m.cb.OnCommand(ack, p.req.Num, p.resultBuf, errCode)
	}
	m.release()
}

// trimLeadingSemicolon strips one leading ';' if present.
func trimLeadingSemicolon(b []byte) []byte {
	if len(b) > 0 && b[0] == ';' {
		return b[1:]
	}
	return b
}

// splitTotalLen parses "<hex total_len>;<csv>" (the first-packet COMMAND
// payload, after the ACK3 keyword has already been consumed), §4.3.
func splitTotalLen(b []byte) (total uint32, csv []byte, ok bool) {
	b = trimLeadingSemicolon(b)
	idx := -1
	for i, c := range b {
		if c == ';' {
			idx = i
			break
		}
	}
	var head []byte
	if idx < 0 {
		head, csv = b, nil
	} else {
		head, csv = b[:idx], b[idx+1:]
	}
	v, decOk := sci.DecodeValues(head)
	if !decOk || len(v) != 1 {
		return 0, nil, false
	}
	return v[0], csv, true
}
