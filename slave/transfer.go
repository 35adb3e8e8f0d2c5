package slave

import "github.com/rholderried/sci"

// responseControl is the slave's per-transaction response state, §3
// "Slave response-control state". It survives across the packets of a
// multi-packet COMMAND or UPSTREAM transfer and is cleared by Clear, which
// a get-var, set-var, or new command number invocation triggers
// implicitly through Engine.Process.
type responseControl struct {
	active bool
	num    int16
	kind   sci.Kind

	ack   sci.Ack
	error uint16

	firstNotSent    bool
	ongoing         bool
	upstreamPending bool
	rawUpstream     bool // this packet is a raw '>' continuation body

	dataCursor int
	totalLen   uint32
	values     []uint32
	upstream   []byte
	release    func()
}

// Valid reports whether the saved response is still live, §3: "The
// slave's saved response remains valid while ongoing || upstream_pending."
func (rc *responseControl) Valid() bool {
	return rc.active && (rc.ongoing || rc.upstreamPending)
}

// Clear releases any dynamically owned result/upstream buffer and resets
// the control block to its zero value.
func (rc *responseControl) Clear() {
	if rc.release != nil {
		rc.release()
	}
	*rc = responseControl{}
}

// Engine is the slave transfer engine, §4.5. It dispatches a parsed
// Request to the variable table or command table and builds the
// corresponding response packet, one TX-capacity-bounded page at a time.
type Engine struct {
	table    *Table
	commands CommandTable
	opts     sci.Options
	rc       responseControl
}

// NewEngine returns a slave transfer engine over table and commands.
func NewEngine(table *Table, commands CommandTable, opts sci.Options) *Engine {
	return &Engine{table: table, commands: commands, opts: opts}
}

// ClearResponseControl releases the saved response, §4.5.
func (e *Engine) ClearResponseControl() { e.rc.Clear() }

// Ongoing reports whether a multi-packet COMMAND or UPSTREAM transfer is
// still in flight.
func (e *Engine) Ongoing() bool { return e.rc.ongoing || e.rc.upstreamPending }

func wireError(opts sci.Options, code sci.Code) uint16 { return code.WireValue(opts.ErrorOffset) }

// Process dispatches req against the variable/command tables, §4.5
// "Dispatch table". It returns nothing: it records the outcome in the
// engine's response control, from which Engine.BuildPacket then emits the
// first packet of the response.
func (e *Engine) Process(req sci.Request) {
	switch req.Kind {
	case sci.KindGetVar:
		e.rc.Clear()
		value, code := e.table.Read(req.Num)
		e.rc.active, e.rc.num, e.rc.kind, e.rc.firstNotSent = true, req.Num, req.Kind, true
		if code != sci.ErrNone {
			e.rc.ack, e.rc.error = sci.AckError, wireError(e.opts, code)
			return
		}
		e.rc.ack = sci.AckSuccess
		e.rc.values = []uint32{value}

	case sci.KindSetVar:
		e.rc.Clear()
		e.rc.active, e.rc.num, e.rc.kind, e.rc.firstNotSent = true, req.Num, req.Kind, true
		var v uint32
		if len(req.Values) > 0 {
			v = req.Values[0]
		}
		newVal, code := e.table.Write(req.Num, v)
		if code != sci.ErrNone {
			e.rc.ack, e.rc.error = sci.AckError, wireError(e.opts, code)
			return
		}
		e.rc.ack = sci.AckSuccess
		e.rc.values = []uint32{newVal}

	case sci.KindCommand:
		e.processCommand(req)

	case sci.KindUpstream:
		e.processUpstream(req)

	case sci.KindDownstream:
		e.rc.Clear()
		e.rc.active, e.rc.num, e.rc.kind, e.rc.firstNotSent = true, req.Num, req.Kind, true
		e.rc.ack, e.rc.error = sci.AckError, wireError(e.opts, sci.ErrRequestUnknown)

	default: // sci.KindUnknown ('#') or anything DecodeRequest let through
		e.rc.Clear()
		e.rc.active, e.rc.num, e.rc.kind, e.rc.firstNotSent = true, req.Num, req.Kind, true
		e.rc.ack, e.rc.error = sci.AckError, wireError(e.opts, sci.ErrRequestUnknown)
	}
}

func (e *Engine) processCommand(req sci.Request) {
	isNew := !e.rc.Valid() || e.rc.num != req.Num || e.rc.kind != sci.KindCommand

	if isNew {
		cmd, code := e.commands.Get(req.Num)
		e.rc.Clear()
		e.rc.active, e.rc.num, e.rc.kind, e.rc.firstNotSent = true, req.Num, req.Kind, true
		if code != sci.ErrNone {
			e.rc.ack, e.rc.error = sci.AckError, wireError(e.opts, code)
			return
		}

		var out TransferDescriptor
		ack := cmd(req.Values, &out)
		e.rc.ack = ack
		e.rc.values = out.Values
		e.rc.upstream = out.Upstream
		e.rc.release = out.Release
		e.rc.dataCursor = 0

		switch ack {
		case sci.AckSuccessData:
			e.rc.totalLen = uint32(len(out.Values))
			e.rc.ongoing = e.rc.totalLen > 0
		case sci.AckSuccessUpstream:
			e.rc.totalLen = uint32(len(out.Upstream))
			e.rc.upstreamPending = e.rc.totalLen > 0
		}
		return
	}

	// Continuation: reuse the saved response, skip the ACK3/total_len
	// header on this packet.
	e.rc.firstNotSent = false
}

func (e *Engine) processUpstream(req sci.Request) {
	if !e.rc.upstreamPending || e.rc.num != req.Num {
		e.rc.Clear()
		e.rc.active, e.rc.num, e.rc.kind, e.rc.firstNotSent = true, req.Num, req.Kind, true
		e.rc.ack, e.rc.error = sci.AckError, wireError(e.opts, sci.ErrUpstreamNotInitiated)
		return
	}
	e.rc.rawUpstream = true
}

// BuildPacket appends one TX-capacity-bounded page of the current response
// to dst and returns the extended slice, §4.3 "Response building (slave)".
// capacity is the number of bytes still available in the TX packet body.
func (e *Engine) BuildPacket(dst []byte, capacity int) []byte {
	rc := &e.rc

	if rc.rawUpstream {
		n := len(rc.upstream) - rc.dataCursor
		if n > capacity {
			n = capacity
		}
		if n < 0 {
			n = 0
		}
		dst = append(dst, rc.upstream[rc.dataCursor:rc.dataCursor+n]...)
		rc.dataCursor += n
		if rc.dataCursor >= len(rc.upstream) {
			rc.upstreamPending = false
		}
		return dst
	}

	dst = sci.EncodeRequest(dst, sci.Request{Num: rc.num, Kind: rc.kind})

	if rc.ack == sci.AckError || rc.ack == sci.AckUnknown {
		dst = append(dst, rc.ack.String()...)
		if rc.error != 0 {
			dst = append(dst, ';')
			dst = sci.AppendHex(dst, uint32(rc.error))
		}
		rc.firstNotSent = false
		rc.ongoing = false
		rc.upstreamPending = false
		return dst
	}

	if rc.firstNotSent {
		switch rc.kind {
		case sci.KindGetVar:
			dst = append(dst, "ACK"...)
			dst = sci.EncodeValueList(dst, rc.values)
		case sci.KindSetVar:
			dst = append(dst, "ACK"...)
		case sci.KindCommand:
			dst = append(dst, rc.ack.String()...)
			if rc.ack == sci.AckSuccessData || rc.ack == sci.AckSuccessUpstream {
				dst = append(dst, ';')
				dst = sci.AppendHex(dst, rc.totalLen)
			}
		}
		rc.firstNotSent = false
	}

	if rc.kind == sci.KindCommand && rc.ongoing {
		dst = e.pageCommandValues(dst, capacity)
	}
	return dst
}

// pageCommandValues appends ';' followed by as many comma-separated hex
// result words as fit within capacity total bytes, trimming any trailing
// comma, §4.3. It advances rc.dataCursor and clears rc.ongoing once the
// saved value list is exhausted.
func (e *Engine) pageCommandValues(dst []byte, capacity int) []byte {
	rc := &e.rc
	dst = append(dst, ';')

	for rc.dataCursor < len(rc.values) {
		probe := dst
		if dst[len(dst)-1] != ';' {
			probe = append(probe, ',')
		}
		probe = sci.AppendHex(probe, rc.values[rc.dataCursor])
		if len(probe) > capacity {
			break
		}
		dst = probe
		rc.dataCursor++
	}

	if dst[len(dst)-1] == ',' {
		dst = dst[:len(dst)-1]
	}
	if rc.dataCursor >= len(rc.values) {
		rc.ongoing = false
	}
	return dst
}
