// Package slave implements the slave-side variable access layer and
// transfer engine of the Serial Command Interface (§4.4-§4.5, §4.7).
package slave

import (
	"math"

	"github.com/rholderried/sci"
)

// DataType is one of the seven scalar kinds a variable table entry can
// hold, §3.
type DataType uint8

const (
	U8 DataType = iota
	I8
	U16
	I16
	U32
	I32
	F32
)

// byteWidth mirrors the original ui8_byteLength table.
var byteWidth = [...]uint8{U8: 1, I8: 1, U16: 2, I16: 2, U32: 4, I32: 4, F32: 4}

// Width returns the in-memory byte width of the data type.
func (t DataType) Width() uint8 { return byteWidth[t] }

func (t DataType) String() string {
	switch t {
	case U8:
		return "u8"
	case I8:
		return "i8"
	case U16:
		return "u16"
	case I16:
		return "i16"
	case U32:
		return "u32"
	case I32:
		return "i32"
	case F32:
		return "f32"
	default:
		return "?"
	}
}

// Cell is a tagged-union accessor over one typed scalar living in host
// memory. It replaces the original pointer-plus-type-tag representation
// (§9 design note "Pointer-based variable table"): each concrete
// implementation below closes over a real, type-safe Go pointer, and
// dispatch is an ordinary interface call instead of a cast through a
// type tag.
type Cell interface {
	Type() DataType
	// ReadWire returns the cell's current value as a 32-bit wire word
	// under the given encoding, widened with upper bits zero (hex mode)
	// or converted through float32 (float mode), §4.4.
	ReadWire(enc sci.Encoding) uint32
	// WriteWire stores a 32-bit wire word into the cell under the given
	// encoding.
	WriteWire(v uint32, enc sci.Encoding)
}

type u8Cell struct{ p *uint8 }

func (c u8Cell) Type() DataType { return U8 }
func (c u8Cell) ReadWire(enc sci.Encoding) uint32 {
	if enc == sci.EncodingFloat {
		return math.Float32bits(float32(*c.p))
	}
	return uint32(*c.p)
}
func (c u8Cell) WriteWire(v uint32, enc sci.Encoding) {
	if enc == sci.EncodingFloat {
		*c.p = uint8(math.Float32frombits(v))
		return
	}
	*c.p = uint8(v)
}

type i8Cell struct{ p *int8 }

func (c i8Cell) Type() DataType { return I8 }
func (c i8Cell) ReadWire(enc sci.Encoding) uint32 {
	if enc == sci.EncodingFloat {
		return math.Float32bits(float32(*c.p))
	}
	return uint32(uint8(*c.p))
}
func (c i8Cell) WriteWire(v uint32, enc sci.Encoding) {
	if enc == sci.EncodingFloat {
		*c.p = int8(math.Float32frombits(v))
		return
	}
	*c.p = int8(uint8(v))
}

type u16Cell struct{ p *uint16 }

func (c u16Cell) Type() DataType { return U16 }
func (c u16Cell) ReadWire(enc sci.Encoding) uint32 {
	if enc == sci.EncodingFloat {
		return math.Float32bits(float32(*c.p))
	}
	return uint32(*c.p)
}
func (c u16Cell) WriteWire(v uint32, enc sci.Encoding) {
	if enc == sci.EncodingFloat {
		*c.p = uint16(math.Float32frombits(v))
		return
	}
	*c.p = uint16(v)
}

type i16Cell struct{ p *int16 }

func (c i16Cell) Type() DataType { return I16 }
func (c i16Cell) ReadWire(enc sci.Encoding) uint32 {
	if enc == sci.EncodingFloat {
		return math.Float32bits(float32(*c.p))
	}
	return uint32(uint16(*c.p))
}
func (c i16Cell) WriteWire(v uint32, enc sci.Encoding) {
	if enc == sci.EncodingFloat {
		*c.p = int16(math.Float32frombits(v))
		return
	}
	*c.p = int16(uint16(v))
}

type u32Cell struct{ p *uint32 }

func (c u32Cell) Type() DataType { return U32 }
func (c u32Cell) ReadWire(enc sci.Encoding) uint32 {
	if enc == sci.EncodingFloat {
		return math.Float32bits(float32(*c.p))
	}
	return *c.p
}
func (c u32Cell) WriteWire(v uint32, enc sci.Encoding) {
	if enc == sci.EncodingFloat {
		*c.p = uint32(math.Float32frombits(v))
		return
	}
	*c.p = v
}

type i32Cell struct{ p *int32 }

func (c i32Cell) Type() DataType { return I32 }
func (c i32Cell) ReadWire(enc sci.Encoding) uint32 {
	if enc == sci.EncodingFloat {
		return math.Float32bits(float32(*c.p))
	}
	return uint32(*c.p)
}
func (c i32Cell) WriteWire(v uint32, enc sci.Encoding) {
	if enc == sci.EncodingFloat {
		*c.p = int32(math.Float32frombits(v))
		return
	}
	*c.p = int32(v)
}

type f32Cell struct{ p *float32 }

func (c f32Cell) Type() DataType { return F32 }
func (c f32Cell) ReadWire(sci.Encoding) uint32   { return math.Float32bits(*c.p) }
func (c f32Cell) WriteWire(v uint32, _ sci.Encoding) { *c.p = math.Float32frombits(v) }

// NewU8Cell, NewI8Cell, ... wrap a typed Go pointer as a Cell.
func NewU8Cell(p *uint8) Cell   { return u8Cell{p} }
func NewI8Cell(p *int8) Cell    { return i8Cell{p} }
func NewU16Cell(p *uint16) Cell { return u16Cell{p} }
func NewI16Cell(p *int16) Cell  { return i16Cell{p} }
func NewU32Cell(p *uint32) Cell { return u32Cell{p} }
func NewI32Cell(p *int32) Cell  { return i32Cell{p} }
func NewF32Cell(p *float32) Cell { return f32Cell{p} }
