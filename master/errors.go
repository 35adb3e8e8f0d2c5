// Package master implements the master-side request submission and
// response-correlation engine of the Serial Command Interface (§4.6).
package master

import "fmt"

// Code enumerates the master-side errors of §7 "Error taxonomy (master)".
// Unlike sci.Code these never cross the wire — they are returned directly
// from Master's own API calls — so Code carries no SCI_ERROR_OFFSET and no
// WireValue method.
type Code uint16

const (
	ErrNone Code = iota
	ErrVarNumberInvalid
	ErrUnknownDatatype
	ErrRequestIdentifierNotFound
	ErrNumberConversionFailed
	ErrAcknowledgeUnknown
	ErrParameterConversionFailed
	ErrExpectedDatalengthNotMet
	ErrMessageExceedsTxBufferSize
	ErrFeatureNotImplemented
)

var codeNames = [...]string{
	ErrNone:                       "none",
	ErrVarNumberInvalid:           "variable number invalid",
	ErrUnknownDatatype:            "unknown datatype",
	ErrRequestIdentifierNotFound:  "request identifier not found",
	ErrNumberConversionFailed:     "number conversion failed",
	ErrAcknowledgeUnknown:         "acknowledge unknown",
	ErrParameterConversionFailed:  "parameter conversion failed",
	ErrExpectedDatalengthNotMet:   "expected datalength not met",
	ErrMessageExceedsTxBufferSize: "message exceeds tx buffer size",
	ErrFeatureNotImplemented:      "feature not implemented",
}

func (c Code) String() string {
	if int(c) < len(codeNames) && codeNames[c] != "" {
		return codeNames[c]
	}
	return fmt.Sprintf("master: unknown error code %d", uint16(c))
}

// Error implements the error interface, mirroring sci.Code.
func (c Code) Error() string { return "sci/master: " + c.String() }

// ErrProtocolBusy reports that a Submit* call was made while the protocol
// state was not Idle, §4.6 "Fails if state != Idle". It has no numeric
// wire representation, so it is a plain sentinel rather than a Code,
// mirroring sci.ErrInvalidArgument/sci.ErrTooLong.
var ErrProtocolBusy = fmt.Errorf("sci/master: protocol busy")

// ErrMalformedResponse reports that an incoming packet could not be parsed
// as a response dataframe, or that it answered a different request than
// the one outstanding (§5 "A spontaneous response is a framing error").
var ErrMalformedResponse = fmt.Errorf("sci/master: malformed or unexpected response")
