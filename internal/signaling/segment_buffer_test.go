package signaling

import (
	"strconv"
	"testing"
)

func seqsOf(segs []Segment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.Seq
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewSegmentBuffer_default_bound(t *testing.T) {
	b := NewSegmentBuffer(0)
	if b.capacity() != DefaultMaxSegments {
		t.Errorf("expected cap %d, got %d", DefaultMaxSegments, b.capacity())
	}
	if b.Len() != 0 || len(b.Snapshot()) != 0 {
		t.Error("new buffer should be empty")
	}
}

func TestSegmentBuffer_keeps_last_max_in_order(t *testing.T) {
	b := NewSegmentBuffer(3)
	for i := 1; i <= 5; i++ {
		b.Push(Segment{Seq: strconv.Itoa(i)})
		if b.Len() > 3 {
			t.Fatalf("after push %d: len %d exceeds bound", i, b.Len())
		}
	}

	got := seqsOf(b.Snapshot())
	if !equalStrings(got, []string{"3", "4", "5"}) {
		t.Errorf("expected [3 4 5], got %v", got)
	}
}

func TestSegmentBuffer_under_bound(t *testing.T) {
	b := NewSegmentBuffer(5)
	for i := 1; i <= 3; i++ {
		b.Push(Segment{Seq: strconv.Itoa(i)})
	}
	got := seqsOf(b.Snapshot())
	if !equalStrings(got, []string{"1", "2", "3"}) {
		t.Errorf("expected [1 2 3], got %v", got)
	}
}

func TestSegmentBuffer_many_wraps(t *testing.T) {
	const max = 7
	b := NewSegmentBuffer(max)
	n := 100
	for i := 1; i <= n; i++ {
		b.Push(Segment{Seq: strconv.Itoa(i)})
	}
	want := make([]string, 0, max)
	for i := n - max + 1; i <= n; i++ {
		want = append(want, strconv.Itoa(i))
	}
	if got := seqsOf(b.Snapshot()); !equalStrings(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSegmentBuffer_snapshot_is_a_copy(t *testing.T) {
	b := NewSegmentBuffer(3)
	b.Push(Segment{Seq: "1"})
	snap := b.Snapshot()
	snap[0].Seq = "changed"

	b.Push(Segment{Seq: "2"})
	if got := seqsOf(b.Snapshot()); !equalStrings(got, []string{"1", "2"}) {
		t.Errorf("snapshot mutation leaked into buffer: %v", got)
	}
}
