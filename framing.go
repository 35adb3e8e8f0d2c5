package sci

// STX and ETX are the packet delimiters, §6.
const (
	STX byte = 0x02
	ETX byte = 0x03
)

// ReceiveState is the framing receiver's state, §3/§4.2.
type ReceiveState uint8

const (
	ReceiveIdle ReceiveState = iota
	ReceiveBusy
	ReceivePending
)

func (s ReceiveState) String() string {
	switch s {
	case ReceiveIdle:
		return "Idle"
	case ReceiveBusy:
		return "Busy"
	case ReceivePending:
		return "Pending"
	default:
		return "?"
	}
}

// debugStage tracks progress through the literal four-byte escape "Dbg<d>"
// recognized while Idle, §4.2. It is an optional side channel; it costs one
// small state field per Receiver, and a completed escape does nothing if no
// hook is installed for its digit.
type debugStage uint8

const (
	dbgIdle debugStage = iota
	dbgD
	dbgB
	dbgG
)

// Receiver is the byte-pump half of the framing layer. OnByte is the one
// entry point that is safe to call from an interrupt context: it performs
// O(1) work and only appends to the underlying PacketBuffer (§5).
type Receiver struct {
	buf   *PacketBuffer
	state ReceiveState

	dbgStage debugStage
	dbgHooks [10]func()
}

// NewReceiver returns a Receiver that accumulates into buf.
func NewReceiver(buf *PacketBuffer) *Receiver {
	return &Receiver{buf: buf}
}

// SetDebugHook installs fn as the callback invoked when the "Dbg<d>" escape
// is seen with digit d, §4.2. Passing a nil fn clears the hook. Installing
// no hooks at all (the default) makes the escape a no-op, matching "MAY
// omit it".
func (r *Receiver) SetDebugHook(d int, fn func()) {
	if d < 0 || d >= len(r.dbgHooks) {
		return
	}
	r.dbgHooks[d] = fn
}

// State returns the current receive state.
func (r *Receiver) State() ReceiveState { return r.state }

// Packet returns the filled packet body (STX/ETX stripped) once State() ==
// ReceivePending. The returned slice aliases the PacketBuffer and is
// invalidated by the next OnByte call after Reset.
func (r *Receiver) Packet() []byte { return r.buf.View() }

// Overflow reports whether the in-progress (or just-completed) packet
// exceeded the buffer's capacity and was truncated.
func (r *Receiver) Overflow() bool { return r.buf.Overflow() }

// Reset returns the receiver to Idle and clears the packet buffer, ready
// for the next STX. Call this after consuming a Pending packet.
func (r *Receiver) Reset() {
	r.state = ReceiveIdle
	r.buf.Clear()
}

// OnByte feeds one received byte through the framing state machine, §4.2:
//   - STX while Idle: clear the buffer, become Busy.
//   - STX while Busy: framing error, reset to Idle.
//   - ETX while Busy: become Pending (a full packet is ready).
//   - ETX while Idle: framing error, reset (no-op, already Idle).
//   - any other byte while Busy: append to the buffer.
//   - any other byte while Idle: ignored by framing, but still evaluated
//     against the optional debug escape sequence.
func (r *Receiver) OnByte(b byte) {
	switch b {
	case STX:
		if r.state == ReceiveIdle {
			r.buf.Clear()
			r.state = ReceiveBusy
		} else {
			r.state = ReceiveIdle
		}
	case ETX:
		if r.state == ReceiveBusy {
			r.state = ReceivePending
		} else {
			r.state = ReceiveIdle
		}
	default:
		if r.state == ReceiveBusy {
			r.buf.Push(b)
		}
	}

	if r.state == ReceiveIdle {
		r.stepDebugEscape(b)
	} else {
		r.dbgStage = dbgIdle
	}
}

func (r *Receiver) stepDebugEscape(b byte) {
	switch r.dbgStage {
	case dbgIdle:
		if b == 'D' {
			r.dbgStage = dbgD
		}
	case dbgD:
		if b == 'b' {
			r.dbgStage = dbgB
		} else {
			r.dbgStage = dbgIdle
		}
	case dbgB:
		if b == 'g' {
			r.dbgStage = dbgG
		} else {
			r.dbgStage = dbgIdle
		}
	case dbgG:
		if b >= '0' && b <= '9' {
			if fn := r.dbgHooks[b-'0']; fn != nil {
				fn()
			}
		}
		r.dbgStage = dbgIdle
	}
}

// TransmitState is the framing transmitter's state, §4.2.
type TransmitState uint8

const (
	TransmitIdle TransmitState = iota
	TransmitSendStx
	TransmitSendBody
	TransmitSendEtx
	TransmitReady
)

func (s TransmitState) String() string {
	switch s {
	case TransmitIdle:
		return "Idle"
	case TransmitSendStx:
		return "SendStx"
	case TransmitSendBody:
		return "SendBody"
	case TransmitSendEtx:
		return "SendEtx"
	case TransmitReady:
		return "Ready"
	default:
		return "?"
	}
}

// TxFunc is the transport sink consulted by Transmitter.Tick. It must
// return the number of bytes actually accepted (which may be less than
// len(p), including zero) and a nil error, or ErrWouldBlock if the
// transport cannot accept any bytes at all right now.
type TxFunc func(p []byte) (accepted int, err error)

// Transmitter is the transmit half of the framing layer: a small state
// machine fed by a PacketBuffer, §4.2. It never blocks: Tick calls the
// transport sink at most once and returns.
type Transmitter struct {
	buf   *PacketBuffer
	state TransmitState
	sent  int

	etx [1]byte
	stx [1]byte
}

// NewTransmitter returns a Transmitter staged from buf. The caller fills
// buf (via Reserve/Commit or Push) before calling Enqueue.
func NewTransmitter(buf *PacketBuffer) *Transmitter {
	t := &Transmitter{buf: buf}
	t.stx[0] = STX
	t.etx[0] = ETX
	return t
}

// State returns the current transmit state.
func (t *Transmitter) State() TransmitState { return t.state }

// Enqueue seizes the buffer for transmission if the transmitter is Idle,
// starting the SendStx state, and reports whether it did so.
func (t *Transmitter) Enqueue() bool {
	if t.state != TransmitIdle {
		return false
	}
	t.state = TransmitSendStx
	t.sent = 0
	return true
}

// Tick drains one step of the transmit state machine. busy, if non-nil, is
// consulted first; if it reports true, Tick returns ErrWouldBlock without
// calling tx. Each call to tx offers as many bytes as are left in the
// current stage; the transport MAY accept fewer, and Tick resumes from
// where it left off on the next call.
func (t *Transmitter) Tick(busy func() bool, tx TxFunc) error {
	if busy != nil && busy() {
		return ErrWouldBlock
	}

	switch t.state {
	case TransmitIdle, TransmitReady:
		return nil
	case TransmitSendStx:
		n, err := tx(t.stx[:])
		if err != nil {
			return err
		}
		if n > 0 {
			t.state = TransmitSendBody
			t.sent = 0
		}
		return nil
	case TransmitSendBody:
		body := t.buf.View()
		if t.sent >= len(body) {
			t.state = TransmitSendEtx
			return nil
		}
		n, err := tx(body[t.sent:])
		if err != nil {
			return err
		}
		t.sent += n
		if t.sent >= len(body) {
			t.state = TransmitSendEtx
		}
		return nil
	case TransmitSendEtx:
		n, err := tx(t.etx[:])
		if err != nil {
			return err
		}
		if n > 0 {
			t.state = TransmitReady
		}
		return nil
	default:
		return nil
	}
}

// Acknowledge returns the transmitter to Idle, releasing the buffer for
// reuse. Calling it from any state other than Ready simply resets it
// (idempotent, mirroring ReleaseProtocol's "from any state" contract).
func (t *Transmitter) Acknowledge() {
	t.state = TransmitIdle
	t.sent = 0
}
