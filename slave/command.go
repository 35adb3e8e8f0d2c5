package slave

import "github.com/rholderried/sci"

// TransferDescriptor carries the result of a command invocation back to
// the transfer engine, §6 "Command callback signature".
//
// Exactly one of Values or Upstream is populated, matching the command's
// returned Ack (SuccessData -> Values, SuccessUpstream -> Upstream). The
// original C flags ownership with a dataBufDynamic/upstreamBufDynamic
// bit so the engine knows whether to free the buffer at transfer end
// (§9 design note "Manually managed transfer buffers"); Go's GC makes
// that bookkeeping unnecessary, but Release is kept as an explicit,
// optional ownership-typed hook for commands that hold a pooled buffer
// and need it returned rather than merely garbage-collected.
type TransferDescriptor struct {
	Values   []uint32
	Upstream []byte
	Release  func()
}

// CommandFunc is the application-supplied command body, §6. It receives
// the request's value list, fills out with its result (if any), and
// returns the acknowledgement that governs how the engine proceeds:
// Success (no data), SuccessData (page Values), SuccessUpstream (page
// Upstream), Error, or Unknown.
type CommandFunc func(values []uint32, out *TransferDescriptor) sci.Ack

// CommandTable is the user-supplied, 1-origin command table, §3/§6.
type CommandTable []CommandFunc

// Get returns the command body for num, or RequestUnknown if num is out
// of range (§4.5: "check range 1..=CMD_TABLE_LEN").
func (t CommandTable) Get(num int16) (CommandFunc, sci.Code) {
	if num <= 0 || int(num) > len(t) {
		return nil, sci.ErrRequestUnknown
	}
	return t[num-1], sci.ErrNone
}
