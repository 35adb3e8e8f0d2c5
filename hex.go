package sci

// Hex encoding rules, §4.3:
//   - uppercase only, no leading zeros beyond a single digit
//   - decode tolerates 1..8 hex digits; more than 8 is a conversion failure

const hexDigits = "0123456789ABCDEF"

// AppendHex writes the minimal uppercase hex representation of v (at least
// one digit, no leading zeroes) to the end of dst and returns the extended
// slice. Exported for use by sci/slave's response-packet builder, which
// needs to append bare hex words outside the ';'/',' framed value lists
// EncodeValueList already covers (e.g. the error code and the command
// total-length field).
func AppendHex(dst []byte, v uint32) []byte { return encodeHex(dst, v) }

// encodeHex writes the minimal uppercase hex representation of v (at least
// one digit) to the end of dst and returns the extended slice.
func encodeHex(dst []byte, v uint32) []byte {
	if v == 0 {
		return append(dst, '0')
	}
	var tmp [8]byte
	n := 0
	for v > 0 {
		tmp[n] = hexDigits[v&0xF]
		v >>= 4
		n++
	}
	for i := n - 1; i >= 0; i-- {
		dst = append(dst, tmp[i])
	}
	return dst
}

// decodeHex parses 1..8 uppercase (or lowercase, tolerated) hex digits from
// b. More than 8 digits is ErrRequestValueConversionFailed territory; the
// caller decides which specific Code applies to the call site.
func decodeHex(b []byte) (v uint32, ok bool) {
	if len(b) == 0 || len(b) > 8 {
		return 0, false
	}
	for _, c := range b {
		var d uint32
		switch {
		case c >= '0' && c <= '9':
			d = uint32(c - '0')
		case c >= 'A' && c <= 'F':
			d = uint32(c-'A') + 10
		case c >= 'a' && c <= 'f':
			d = uint32(c-'a') + 10
		default:
			return 0, false
		}
		v = v<<4 | d
	}
	return v, true
}
