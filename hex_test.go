package sci_test

import (
	"testing"

	"github.com/rholderried/sci"
)

func TestAppendHex_MinimalDigits(t *testing.T) {
	cases := []struct {
		v    uint32
		want string
	}{
		{0, "0"},
		{1, "1"},
		{0xF5, "F5"},
		{0x86E6, "86E6"},
		{0xFACB3B03, "FACB3B03"},
	}
	for _, c := range cases {
		got := string(sci.AppendHex(nil, c.v))
		if got != c.want {
			t.Fatalf("AppendHex(%#x) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestRequestRoundTrip_HexSymmetry(t *testing.T) {
	for _, v := range []uint32{0, 1, 0xFF, 0x1234, 0xFFFFFFFF, 0xABCDEF01} {
		req := sci.Request{Num: 7, Kind: sci.KindSetVar, Values: []uint32{v}}
		body := sci.EncodeRequest(nil, req)
		got, _, ok := sci.DecodeRequest(body, 0)
		if !ok {
			t.Fatalf("DecodeRequest(%q) failed to parse", body)
		}
		if len(got.Values) != 1 || got.Values[0] != v {
			t.Fatalf("round-trip %#x: got %v", v, got.Values)
		}
	}
}
