package signaling

// DefaultMaxSegments is the number of segments retained per room when no
// bound is configured.
const DefaultMaxSegments = 60

// SegmentBuffer keeps the most recent segments of a room in arrival order.
// It is a fixed-capacity ring: once full, each Push overwrites the oldest.
//
// SegmentBuffer is not safe for concurrent use. Room guards it with its own
// lock so that push+broadcast and snapshot+replay never interleave.
type SegmentBuffer struct {
	slots []Segment
	head  int // index of the oldest segment
	size  int
}

// NewSegmentBuffer returns an empty buffer bounded at max segments.
// If max <= 0, DefaultMaxSegments is used.
func NewSegmentBuffer(max int) *SegmentBuffer {
	if max <= 0 {
		max = DefaultMaxSegments
	}
	return &SegmentBuffer{slots: make([]Segment, max)}
}

// Push appends seg, evicting the oldest segment if the buffer is full.
func (b *SegmentBuffer) Push(seg Segment) {
	if b.size < len(b.slots) {
		b.slots[(b.head+b.size)%len(b.slots)] = seg
		b.size++
		return
	}
	b.slots[b.head] = seg
	b.head = (b.head + 1) % len(b.slots)
}

// Snapshot returns the retained segments, oldest first. The returned slice
// is a copy; segment payloads are shared since they are immutable.
func (b *SegmentBuffer) Snapshot() []Segment {
	out := make([]Segment, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.slots[(b.head+i)%len(b.slots)]
	}
	return out
}

// Len returns the number of retained segments.
func (b *SegmentBuffer) Len() int {
	return b.size
}

// capacity returns the bound of the buffer.
func (b *SegmentBuffer) capacity() int {
	return len(b.slots)
}
