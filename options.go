package sci

// Encoding selects how the variable access layer marshals typed scalars to
// and from the 32-bit wire value, §4.4.
type Encoding uint8

const (
	// EncodingHex is the default, mandatory mode: the wire value is the
	// raw bit pattern of the typed field.
	EncodingHex Encoding = iota
	// EncodingFloat is the deprecated, optional mode: integer types are
	// converted via floating point, losing precision beyond 24 bits. Kept
	// only for parity with original_source variants that implement it;
	// new code should not opt into it.
	EncodingFloat
)

// Options configures one protocol endpoint (slave or master), collecting
// the configuration knobs of §6 into a single functional-options value.
type Options struct {
	RxCapacity       int
	TxCapacity       int
	MaxNVVars        int
	NVCellWidth      int
	NVBaseAddress    uint16
	MaxRequestValues int
	ErrorOffset      uint16
	Encoding         Encoding
}

// defaultOptions mirrors the original SCIconfig.h defaults.
var defaultOptions = Options{
	RxCapacity:       128,
	TxCapacity:       128,
	MaxNVVars:        32,
	NVCellWidth:      1,
	NVBaseAddress:    0,
	MaxRequestValues: MaxRequestValues,
	ErrorOffset:      0,
	Encoding:         EncodingHex,
}

// Option configures an Options value.
type Option func(*Options)

// NewOptions applies opts over a copy of the package defaults.
func NewOptions(opts ...Option) Options {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithRxCapacity sets RX_PACKET_LENGTH.
func WithRxCapacity(n int) Option { return func(o *Options) { o.RxCapacity = n } }

// WithTxCapacity sets TX_PACKET_LENGTH.
func WithTxCapacity(n int) Option { return func(o *Options) { o.TxCapacity = n } }

// WithMaxNVVars sets MAX_NUMBER_OF_NV_VARS.
func WithMaxNVVars(n int) Option { return func(o *Options) { o.MaxNVVars = n } }

// WithNVCellWidth sets NV_CELL_WIDTH (1, 2, or 4 bytes per addressable cell).
func WithNVCellWidth(n int) Option { return func(o *Options) { o.NVCellWidth = n } }

// WithNVBaseAddress sets NV_BASE_ADDRESS.
func WithNVBaseAddress(addr uint16) Option {
	return func(o *Options) { o.NVBaseAddress = addr }
}

// WithMaxRequestValues sets MAX_REQUEST_VALUES.
func WithMaxRequestValues(n int) Option {
	return func(o *Options) { o.MaxRequestValues = n }
}

// WithErrorOffset sets SCI_ERROR_OFFSET, the value added to protocol error
// codes when they are surfaced in a Response.Error field.
func WithErrorOffset(offset uint16) Option {
	return func(o *Options) { o.ErrorOffset = offset }
}

// WithEncoding selects the variable-access marshaling mode. Applications
// should not need this outside of tests: EncodingHex is mandatory,
// EncodingFloat is reserved for parity testing against legacy peers.
func WithEncoding(enc Encoding) Option { return func(o *Options) { o.Encoding = enc } }
