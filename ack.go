package sci

// Ack is the acknowledgement keyword carried by a Response, §3/§4.3.
type Ack uint8

const (
	AckSuccess Ack = iota
	AckSuccessData
	AckSuccessUpstream
	AckError
	AckUnknown
)

// ack3 is indexed by Ack; order matches the wire keyword table exactly
// (the original C keeps the same invariant between its enum and
// acknowledgeArr, per original_source/C/Slave/Src/SCISlaveDataframe.c).
var ack3 = [...]string{
	AckSuccess:         "ACK",
	AckSuccessData:     "DAT",
	AckSuccessUpstream: "UPS",
	AckError:           "ERR",
	AckUnknown:         "NAK",
}

func (a Ack) String() string {
	if int(a) < len(ack3) {
		return ack3[a]
	}
	return "?"
}

// parseAck matches at most 4 leading bytes of b against the ACK3 table
// (3 letters plus an optional trailing ';'), returning the matched Ack and
// the byte count consumed (3 or 4), or ok=false if nothing matches.
func parseAck(b []byte) (ack Ack, consumed int, ok bool) {
	if len(b) < 3 {
		return 0, 0, false
	}
	for i, kw := range ack3 {
		if string(b[:3]) == kw {
			n := 3
			if len(b) > 3 && b[3] == ';' {
				n = 4
			}
			return Ack(i), n, true
		}
	}
	return 0, 0, false
}
