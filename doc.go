// Package sci implements the wire-format primitives of the Serial Command
// Interface: a symmetric, text-framed request/response protocol for
// querying and mutating named scalar variables, invoking application
// commands, and streaming bulk data between an embedded slave and a
// controlling host over any byte-oriented transport (UART, USB-CDC, an RF
// link, or — for testing — an in-memory pipe).
//
// Semantics and design:
//   - Framing: every packet on the wire is STX(0x02) body ETX(0x03). The
//     receiver is a byte pump safe to drive from an interrupt context; it
//     performs O(1) work per byte and only appends to a PacketBuffer.
//   - Dataframe codec: the packet body is ASCII text — a leading hex
//     number, a one-byte identifier, and (depending on identifier and
//     acknowledgement) a "ACK"/"DAT"/"UPS"/"ERR"/"NAK" keyword followed by
//     comma-separated hex values or a raw byte payload.
//   - Non-blocking first: transport sinks may accept fewer bytes than
//     offered, or none at all; the framing transmitter resumes on the next
//     tick. ErrWouldBlock and ErrMore (re-exported from iox) are the
//     control-flow signals for this.
//
// The slave and master transfer engines that sit on top of this package
// live in sci/slave and sci/master; this package only knows about bytes,
// packets, and request/response structures.
package sci
