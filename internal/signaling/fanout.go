package signaling

import (
	"encoding/json"
	"log/slog"

	"signaling-server/internal/platform/metrics"
)

// Frame is one transport message: JSON text, or a raw binary payload.
type Frame struct {
	Binary bool
	Data   []byte
}

// Conn is the sending half of a connection.
//
// Send queues all frames as one unit: the frames of a single call reach the
// peer back to back with nothing from another call between them. Send must
// not block.
type Conn interface {
	Send(frames ...Frame) error
}

// Fanout delivers frames to sessions on a best-effort, at-most-once basis.
// A failed delivery is logged and counted but never retried and never
// reported to the caller's peer.
type Fanout struct {
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewFanout returns a Fanout. m may be nil.
func NewFanout(log *slog.Logger, m *metrics.Metrics) *Fanout {
	return &Fanout{log: log, metrics: m}
}

// DeliverTo sends frames to s as one unit and reports whether they were queued.
func (f *Fanout) DeliverTo(s *Session, frames ...Frame) bool {
	if s == nil {
		return false
	}
	if err := s.conn.Send(frames...); err != nil {
		f.log.Warn("delivery failed",
			slog.String("session_id", s.ID),
			slog.String("error", err.Error()))
		if f.metrics != nil {
			f.metrics.IncDeliveryFailures()
		}
		return false
	}
	return true
}

// Broadcast delivers frames to every session and returns how many deliveries
// succeeded. A failure for one recipient does not affect the others.
func (f *Fanout) Broadcast(sessions []*Session, frames ...Frame) int {
	n := 0
	for _, s := range sessions {
		if f.DeliverTo(s, frames...) {
			n++
		}
	}
	return n
}

// jsonFrame encodes msg as a text frame. The message types in this package
// always encode.
func jsonFrame(msg any) Frame {
	data, _ := json.Marshal(msg)
	return Frame{Data: data}
}

// segmentFrames returns the metadata frame followed by the payload frame.
func segmentFrames(seg Segment) []Frame {
	meta := jsonFrame(segmentMsg{
		Action: actionSegment,
		Seq:    seg.Seq,
		TS:     seg.TS,
		MIME:   seg.MIME,
		Size:   len(seg.Data),
	})
	return []Frame{meta, {Binary: true, Data: seg.Data}}
}
