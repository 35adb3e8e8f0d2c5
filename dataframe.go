package sci

import "bytes"

// Request is a parsed or about-to-be-encoded request dataframe, §3.
type Request struct {
	Num    int16
	Kind   Kind
	Values []uint32
}

// Response is a parsed or about-to-be-encoded response dataframe, §3.
//
// Data is carried in exactly one of Values (a result-word list, for
// get-var and command DAT responses) or Upstream (a raw byte payload, for
// UPS continuations); TotalLen carries the declared full transfer length
// for multi-packet responses.
type Response struct {
	Num      int16
	Kind     Kind
	Ack      Ack
	Error    uint16
	Values   []uint32
	Upstream []byte
	TotalLen uint32
}

// MaxRequestValues bounds how many comma-separated values DecodeRequest
// will parse out of a single request tail before silently truncating the
// rest, §4.3. DecodeRequest applies it when called with maxValues <= 0, and
// it is the default of Options.MaxRequestValues, the configurable knob the
// slave engine passes to DecodeRequest.
const MaxRequestValues = 64

// DecodeRequest parses a request dataframe body (STX/ETX already
// stripped), §4.3:
//  1. scan for the first identifier byte,
//  2. decode the prefix (possibly empty, meaning 0) as hex -> Num,
//  3. split anything after the identifier on ',' and hex-decode each,
//     capped at maxValues.
func DecodeRequest(body []byte, maxValues int) (Request, Code, bool) {
	if maxValues <= 0 {
		maxValues = MaxRequestValues
	}
	idx := -1
	for i, b := range body {
		if Kind(b).Valid() {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Request{}, ErrRequestIdentifierNotFound, false
	}

	var num uint32
	if idx > 0 {
		v, ok := decodeHex(body[:idx])
		if !ok {
			return Request{}, ErrVariableNumberConversionFailed, false
		}
		num = v
	}

	req := Request{Num: int16(num), Kind: Kind(body[idx])}

	tail := body[idx+1:]
	if len(tail) == 0 {
		return req, ErrNone, true
	}

	for _, field := range bytes.Split(tail, []byte{','}) {
		if len(req.Values) >= maxValues {
			break
		}
		v, ok := decodeHex(field)
		if !ok {
			return Request{}, ErrRequestValueConversionFailed, false
		}
		req.Values = append(req.Values, v)
	}
	return req, ErrNone, true
}

// EncodeRequest appends the wire encoding of req to dst: hex(num),
// identifier, then (unlike a response) a bare comma list of hex values
// with no leading ';' — §4.3's request grammar has no ack3 keyword ahead
// of the payload, so there is nothing for a ';' to separate.
func EncodeRequest(dst []byte, req Request) []byte {
	dst = encodeHex(dst, uint32(uint16(req.Num)))
	dst = append(dst, byte(req.Kind))
	for i, v := range req.Values {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = encodeHex(dst, v)
	}
	return dst
}

// ResponseHeader is the fixed-position prefix of every response dataframe:
// the echoed number and identifier, the acknowledgement keyword, and (for
// an ERR/NAK response carrying one) the error code.
type ResponseHeader struct {
	Num   int16
	Kind  Kind
	Ack   Ack
	Error uint16
}

// ParseResponseHeader decodes num, identifier, and (if present) ack keyword
// from the front of a response dataframe body, §4.3. ackFound is false for
// a COMMAND continuation packet, which echoes num+kind but carries no ACK3
// keyword at all (§4.3 "For each subsequent packet of the same command,
// skip the header"); callers distinguish a fresh response from a
// continuation on ackFound, not on hdr.Ack's zero value.
func ParseResponseHeader(body []byte) (hdr ResponseHeader, rest []byte, ackFound bool, ok bool) {
	idx := -1
	for i, b := range body {
		if Kind(b).Valid() {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ResponseHeader{}, nil, false, false
	}
	var num uint32
	if idx > 0 {
		v, decOk := decodeHex(body[:idx])
		if !decOk {
			return ResponseHeader{}, nil, false, false
		}
		num = v
	}
	hdr.Num = int16(num)
	hdr.Kind = Kind(body[idx])

	tail := body[idx+1:]
	ack, consumed, ackOk := parseAck(tail)
	if !ackOk {
		return hdr, tail, false, true
	}
	hdr.Ack = ack
	rest = tail[consumed:]

	if (hdr.Ack == AckError || hdr.Ack == AckUnknown) && len(rest) > 0 {
		v, decOk := decodeHex(rest)
		if decOk {
			hdr.Error = uint16(v)
		}
	}
	return hdr, rest, true, true
}

// DecodeValues splits a ';'-free comma-separated hex value list (as left
// by ParseResponseHeader, or a request tail) into its decoded words.
func DecodeValues(rest []byte) ([]uint32, bool) {
	if len(rest) == 0 {
		return nil, true
	}
	var out []uint32
	for _, field := range bytes.Split(rest, []byte{','}) {
		v, ok := decodeHex(field)
		if !ok {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

// EncodeValueList appends a ';'-prefixed, comma-separated hex rendering of
// values to dst. Apart from the leading ';', which DecodeValues does not
// accept, it is the inverse of DecodeValues. The slave's response builder
// uses it for get-var responses; command result pages are built separately
// so that they can be cut to the TX capacity.
func EncodeValueList(dst []byte, values []uint32) []byte {
	dst = append(dst, ';')
	for i, v := range values {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = encodeHex(dst, v)
	}
	return dst
}
