package sci

import "code.hybscloud.com/iox"

// ErrWouldBlock and ErrMore are the non-blocking control-flow signals used
// by Master's stream-receive mode (§4.6) and by Transmitter.Tick. They are
// re-exported from iox so callers never need to import iox themselves.
var (
	// ErrWouldBlock means "no further progress without waiting": the
	// transport sink could not accept any bytes this tick.
	ErrWouldBlock = iox.ErrWouldBlock

	// ErrMore means "this completion is usable and more completions will
	// follow": Master.OnBytes returns it while an upstream payload is
	// still being accumulated across multiple OnBytes calls.
	ErrMore = iox.ErrMore
)
