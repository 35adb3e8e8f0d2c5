package sci_test

import (
	"testing"

	"github.com/rholderried/sci"
)

func TestPacketBuffer_PushAndView(t *testing.T) {
	b := sci.NewPacketBuffer(4)
	b.Push('a')
	b.Push('b')
	if got := string(b.View()); got != "ab" {
		t.Fatalf("View() = %q, want %q", got, "ab")
	}
	if b.Overflow() {
		t.Fatalf("Overflow() = true, want false")
	}
}

func TestPacketBuffer_OverflowSetsFlagAndDropsByte(t *testing.T) {
	b := sci.NewPacketBuffer(2)
	b.Push('a')
	b.Push('b')
	b.Push('c')
	if !b.Overflow() {
		t.Fatalf("Overflow() = false, want true")
	}
	if got := string(b.View()); got != "ab" {
		t.Fatalf("View() = %q, want %q", got, "ab")
	}
}

func TestPacketBuffer_ClearResetsLenAndOverflow(t *testing.T) {
	b := sci.NewPacketBuffer(2)
	b.Push('a')
	b.Push('b')
	b.Push('c')
	b.Clear()
	if b.Len() != 0 || b.Overflow() {
		t.Fatalf("Clear() left Len=%d Overflow=%v, want 0 false", b.Len(), b.Overflow())
	}
}

func TestPacketBuffer_ReserveCommit(t *testing.T) {
	b := sci.NewPacketBuffer(4)
	buf, ok := b.Reserve(3)
	if !ok {
		t.Fatalf("Reserve(3) = false, want true")
	}
	copy(buf, "xyz")
	b.Commit(3)
	if got := string(b.View()); got != "xyz" {
		t.Fatalf("View() = %q, want %q", got, "xyz")
	}
	if _, ok := b.Reserve(2); ok {
		t.Fatalf("Reserve(2) after 3/4 used = true, want false")
	}
}
