package sci_test

import (
	"testing"

	"github.com/rholderried/sci"
)

func feed(r *sci.Receiver, s string) {
	for i := 0; i < len(s); i++ {
		r.OnByte(s[i])
	}
}

func TestReceiver_FrameCorrectness(t *testing.T) {
	r := sci.NewReceiver(sci.NewPacketBuffer(32))
	feed(r, "\x021?\x03")
	if r.State() != sci.ReceivePending {
		t.Fatalf("State() = %v, want Pending", r.State())
	}
	if got := string(r.Packet()); got != "1?" {
		t.Fatalf("Packet() = %q, want %q", got, "1?")
	}
}

func TestReceiver_StxWhileBusyResetsToIdle(t *testing.T) {
	r := sci.NewReceiver(sci.NewPacketBuffer(32))
	feed(r, "\x02ab\x02cd\x03")
	if r.State() != sci.ReceiveIdle {
		t.Fatalf("State() = %v, want Idle (bytes after the framing error are ignored until the next STX)", r.State())
	}
	feed(r, "\x02ef\x03")
	if got := string(r.Packet()); got != "ef" {
		t.Fatalf("Packet() = %q, want %q (next STX should start a fresh frame)", got, "ef")
	}
}

func TestReceiver_EtxWhileIdleIsNoop(t *testing.T) {
	r := sci.NewReceiver(sci.NewPacketBuffer(32))
	feed(r, "\x03")
	if r.State() != sci.ReceiveIdle {
		t.Fatalf("State() = %v, want Idle", r.State())
	}
}

func TestReceiver_ResetReturnsToIdle(t *testing.T) {
	r := sci.NewReceiver(sci.NewPacketBuffer(32))
	feed(r, "\x021?\x03")
	r.Reset()
	if r.State() != sci.ReceiveIdle {
		t.Fatalf("State() = %v, want Idle after Reset", r.State())
	}
	if len(r.Packet()) != 0 {
		t.Fatalf("Packet() non-empty after Reset")
	}
}

// fixedSink accepts at most max bytes per call, simulating a transport
// that can stall mid-packet.
type fixedSink struct {
	max int
	out []byte
}

func (s *fixedSink) send(p []byte) (int, error) {
	n := len(p)
	if n > s.max {
		n = s.max
	}
	s.out = append(s.out, p[:n]...)
	return n, nil
}

func TestTransmitter_DrainsAcrossPartialAccepts(t *testing.T) {
	buf := sci.NewPacketBuffer(8)
	b, _ := buf.Reserve(4)
	copy(b, "1?;5")
	buf.Commit(4)

	tx := sci.NewTransmitter(buf)
	sink := &fixedSink{max: 1}
	if !tx.Enqueue() {
		t.Fatalf("Enqueue() = false, want true")
	}
	for i := 0; i < 20 && tx.State() != sci.TransmitReady; i++ {
		if err := tx.Tick(nil, sink.send); err != nil {
			t.Fatalf("Tick() error: %v", err)
		}
	}
	if tx.State() != sci.TransmitReady {
		t.Fatalf("State() = %v, want Ready", tx.State())
	}
	want := "\x021?;5\x03"
	if got := string(sink.out); got != want {
		t.Fatalf("sink received %q, want %q", got, want)
	}
}

func TestTransmitter_AcknowledgeIsIdempotentFromAnyState(t *testing.T) {
	buf := sci.NewPacketBuffer(4)
	tx := sci.NewTransmitter(buf)
	tx.Acknowledge()
	if tx.State() != sci.TransmitIdle {
		t.Fatalf("State() = %v, want Idle", tx.State())
	}
	tx.Enqueue()
	tx.Acknowledge()
	if tx.State() != sci.TransmitIdle {
		t.Fatalf("State() = %v, want Idle after Acknowledge from SendStx", tx.State())
	}
}
