package sci

import "fmt"

// Code enumerates the slave-side protocol errors that can be reported in a
// Response.Error field. The numeric value is the enumeration index — the
// value actually placed on the wire is ErrorOffset + Code, per §6/§7.
type Code uint16

const (
	ErrNone Code = iota
	ErrNvPartitionTableExhausted
	ErrVarNumberInvalid
	ErrUnknownDatatype
	ErrNvAddressUnknown
	ErrNvReadFailed
	ErrNvWriteFailed
	ErrRequestIdentifierNotFound
	ErrVariableNumberConversionFailed
	ErrRequestValueConversionFailed
	ErrRequestUnknown
	ErrUpstreamNotInitiated
)

var codeNames = [...]string{
	ErrNone:                           "none",
	ErrNvPartitionTableExhausted:      "nv partition table exhausted",
	ErrVarNumberInvalid:               "variable number invalid",
	ErrUnknownDatatype:                "unknown datatype",
	ErrNvAddressUnknown:               "nv address unknown",
	ErrNvReadFailed:                   "nv read failed",
	ErrNvWriteFailed:                  "nv write failed",
	ErrRequestIdentifierNotFound:      "request identifier not found",
	ErrVariableNumberConversionFailed: "variable number conversion failed",
	ErrRequestValueConversionFailed:   "request value conversion failed",
	ErrRequestUnknown:                 "request unknown",
	ErrUpstreamNotInitiated:           "upstream not initiated",
}

// String implements fmt.Stringer.
func (c Code) String() string {
	if int(c) < len(codeNames) && codeNames[c] != "" {
		return codeNames[c]
	}
	return fmt.Sprintf("sci: unknown error code %d", uint16(c))
}

// Error lets Code satisfy the error interface so it can be returned and
// compared directly with errors.Is against the package-level sentinels below.
func (c Code) Error() string { return c.String() }

// Sentinel errors, one per Code, for errors.Is-style comparison by callers
// that only care about the class of failure and not the wire value.
var (
	ErrSentinelNvPartitionTableExhausted      error = ErrNvPartitionTableExhausted
	ErrSentinelVarNumberInvalid               error = ErrVarNumberInvalid
	ErrSentinelUnknownDatatype                error = ErrUnknownDatatype
	ErrSentinelNvAddressUnknown               error = ErrNvAddressUnknown
	ErrSentinelNvReadFailed                   error = ErrNvReadFailed
	ErrSentinelNvWriteFailed                  error = ErrNvWriteFailed
	ErrSentinelRequestIdentifierNotFound      error = ErrRequestIdentifierNotFound
	ErrSentinelVariableNumberConversionFailed error = ErrVariableNumberConversionFailed
	ErrSentinelRequestValueConversionFailed   error = ErrRequestValueConversionFailed
	ErrSentinelRequestUnknown                 error = ErrRequestUnknown
	ErrSentinelUpstreamNotInitiated           error = ErrUpstreamNotInitiated
)

// WireValue returns the numeric error value to place in a Response.Error
// field: SCI_ERROR_OFFSET + the code's enumeration index (§6).
func (c Code) WireValue(offset uint16) uint16 {
	return offset + uint16(c)
}

// ErrInvalidArgument reports a nil callback or malformed configuration
// passed to a constructor.
var ErrInvalidArgument = fmt.Errorf("sci: invalid argument")

// ErrTooLong reports that an encoded packet would exceed the transmit
// buffer's capacity.
var ErrTooLong = fmt.Errorf("sci: message too long")
