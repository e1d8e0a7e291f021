package signaling

import "sync"

// Room is one host and its viewers under a code.
//
// Every read-modify-write of membership, mode or segments happens under mu,
// and so do the deliveries that must be ordered with them.
type Room struct {
	Code RoomCode

	maxSegments int

	mu       sync.Mutex
	host     *Session
	viewers  map[string]*Session
	mode     Mode
	segments *SegmentBuffer // nil until the first segment arrives
	closed   bool
}

func newRoom(code RoomCode, maxSegments int) *Room {
	return &Room{
		Code:        code,
		maxSegments: maxSegments,
		viewers:     make(map[string]*Session),
		mode:        ModeWebRTC,
	}
}

// Mode returns the current delivery mode.
func (r *Room) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// ViewerCount returns the number of joined viewers.
func (r *Room) ViewerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.viewers)
}

// SegmentCount returns the number of buffered segments.
func (r *Room) SegmentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.segments == nil {
		return 0
	}
	return r.segments.Len()
}

// admitLocked gives s the role in this room and registers it as host or
// viewer. Viewers are keyed by their session ID.
// Caller must hold r.mu.
func (r *Room) admitLocked(s *Session, role Role) error {
	if r.closed {
		return ErrRoomNotFound
	}
	if s.Role() != RoleUnassigned {
		return ErrRoleAlreadySet
	}
	switch role {
	case RoleHost:
		if r.host != nil {
			return ErrHostAlreadyPresent
		}
		r.host = s
	case RoleViewer:
		r.viewers[s.ID] = s
	}
	return s.assign(role, r.Code)
}

// hasMemberLocked reports whether s is this room's host or one of its viewers.
// Caller must hold r.mu.
func (r *Room) hasMemberLocked(s *Session) bool {
	return r.host == s || r.viewers[s.ID] == s
}

// removeViewerLocked drops the viewer and reports whether it was present.
// Caller must hold r.mu.
func (r *Room) removeViewerLocked(id string) bool {
	if _, ok := r.viewers[id]; !ok {
		return false
	}
	delete(r.viewers, id)
	return true
}

// viewersLocked returns the current viewers in no particular order.
// Caller must hold r.mu.
func (r *Room) viewersLocked() []*Session {
	out := make([]*Session, 0, len(r.viewers))
	for _, v := range r.viewers {
		out = append(out, v)
	}
	return out
}

// pushSegmentLocked appends seg to the room's buffer, creating it on first use.
// Caller must hold r.mu.
func (r *Room) pushSegmentLocked(seg Segment) {
	if r.segments == nil {
		r.segments = NewSegmentBuffer(r.maxSegments)
	}
	r.segments.Push(seg)
}

// snapshotLocked returns the buffered segments oldest first.
// Caller must hold r.mu.
func (r *Room) snapshotLocked() []Segment {
	if r.segments == nil {
		return nil
	}
	return r.segments.Snapshot()
}

// closeLocked marks the room as gone and releases its segments. It returns
// the viewers that were present.
// Caller must hold r.mu.
func (r *Room) closeLocked() []*Session {
	viewers := r.viewersLocked()
	r.closed = true
	r.host = nil
	r.viewers = make(map[string]*Session)
	r.segments = nil
	return viewers
}
