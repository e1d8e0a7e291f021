package signaling

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"signaling-server/internal/platform/metrics"
)

const msgRoomCreateFailed = "Room could not be created"

// Relay interprets control messages from sessions, mutates rooms and
// delivers the resulting notifications. It also accepts uploaded segments.
type Relay struct {
	registry *Registry
	sessions *SessionTable
	fanout   *Fanout
	log      *slog.Logger
	metrics  *metrics.Metrics
	seq      seqClock
}

// NewRelay returns a Relay over reg. m may be nil to disable metric recording.
func NewRelay(reg *Registry, log *slog.Logger, m *metrics.Metrics) *Relay {
	return &Relay{
		registry: reg,
		sessions: NewSessionTable(),
		fanout:   NewFanout(log, m),
		log:      log,
		metrics:  m,
	}
}

// Registry returns the room registry the relay operates on.
func (r *Relay) Registry() *Registry {
	return r.registry
}

// SessionCount returns the number of connected sessions.
func (r *Relay) SessionCount() int {
	return r.sessions.Len()
}

// Connect registers a new unassigned session for conn.
func (r *Relay) Connect(conn Conn) *Session {
	s := newSession(conn)
	r.sessions.Add(s)
	if r.metrics != nil {
		r.metrics.SetActiveSessions(r.sessions.Len())
	}
	r.log.Debug("session connected", slog.String("session_id", s.ID))
	return s
}

// HandleMessage runs one inbound control message from s through the room
// state machine. Messages that do not parse, or whose action does not fit
// the sender's role, are dropped without a reply.
func (r *Relay) HandleMessage(s *Session, raw []byte) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		r.drop(s, "unparseable message")
		return
	}

	switch {
	case in.Action == actionCreate && in.Role == RoleHost:
		r.handleCreate(s)
	case in.Action == actionSetMode && in.Role == RoleHost:
		r.handleSetMode(s, in.Payload)
	case in.Action == actionJoin && in.Role == RoleViewer:
		r.handleJoin(s, in.Code)
	case in.Action == actionSignal:
		r.handleSignal(s, in)
	default:
		r.drop(s, "unrecognized action")
	}
}

func (r *Relay) handleCreate(s *Session) {
	if s.Role() != RoleUnassigned {
		r.drop(s, "create from assigned session")
		return
	}

	room, err := r.registry.Create(s)
	switch {
	case errors.Is(err, ErrRoleAlreadySet):
		r.drop(s, "create from assigned session")
		return
	case errors.Is(err, ErrCodeSpaceExhausted):
		r.log.Error("room code space exhausted", slog.String("session_id", s.ID))
		r.replyError(s, msgCodeSpaceExhausted)
		return
	case err != nil:
		r.log.Error("create room failed", slog.String("session_id", s.ID), slog.String("error", err.Error()))
		r.replyError(s, msgRoomCreateFailed)
		return
	}

	r.log.Info("room created", slog.String("room", string(room.Code)), slog.String("host_id", s.ID))
	if r.metrics != nil {
		r.metrics.IncRoomsCreated()
	}
	r.fanout.DeliverTo(s, jsonFrame(createdMsg{Action: actionCreated, Code: room.Code}))
}

func (r *Relay) handleSetMode(s *Session, payload json.RawMessage) {
	switch s.Role() {
	case RoleViewer:
		r.drop(s, "set-mode from viewer")
		return
	case RoleUnassigned:
		r.replyError(s, msgRoomNotFound)
		return
	}

	var p modePayload
	if len(payload) == 0 || json.Unmarshal(payload, &p) != nil {
		r.drop(s, "set-mode without payload")
		return
	}
	if p.Mode != ModeBuffered && p.Mode != ModeWebRTC {
		r.drop(s, "set-mode with unknown mode")
		return
	}

	room, ok := r.registry.Lookup(s.RoomCode())
	if !ok {
		r.replyError(s, msgRoomNotFound)
		return
	}

	room.mu.Lock()
	if room.closed || room.host != s {
		room.mu.Unlock()
		r.replyError(s, msgRoomNotFound)
		return
	}
	room.mode = p.Mode
	room.mu.Unlock()

	r.log.Info("room mode set", slog.String("room", string(room.Code)), slog.String("mode", string(p.Mode)))
	r.fanout.DeliverTo(s, jsonFrame(modeMsg{Action: actionModeSet, Mode: p.Mode}))
}

func (r *Relay) handleJoin(s *Session, rawCode string) {
	if s.Role() != RoleUnassigned {
		r.drop(s, "join from assigned session")
		return
	}

	code := NormalizeRoomCode(rawCode)
	if !ValidRoomCode(code, r.registry.CodeLength()) {
		r.replyError(s, msgRoomNotFound)
		return
	}
	room, ok := r.registry.Lookup(code)
	if !ok {
		r.replyError(s, msgRoomNotFound)
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if err := room.admitLocked(s, RoleViewer); err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			r.replyError(s, msgRoomNotFound)
			return
		}
		r.drop(s, err.Error())
		return
	}

	r.log.Info("viewer joined",
		slog.String("room", string(room.Code)),
		slog.String("viewer_id", s.ID),
		slog.Int("viewers", len(room.viewers)))

	r.fanout.DeliverTo(room.host, jsonFrame(viewerMsg{Action: actionViewerJoined, ViewerID: s.ID}))

	// The replay goes out as one unit under the room lock, so it cannot be
	// split by a full queue or overtaken by a segment pushed concurrently.
	frames := []Frame{jsonFrame(joinedMsg{Action: actionJoined, Code: room.Code, ViewerID: s.ID})}
	if room.mode == ModeBuffered {
		frames = append(frames, jsonFrame(modeMsg{Action: actionBufferedMode, Mode: ModeBuffered}))
		segs := room.snapshotLocked()
		for _, seg := range segs {
			frames = append(frames, segmentFrames(seg)...)
		}
		r.log.Debug("replaying buffered segments",
			slog.String("room", string(room.Code)),
			slog.String("viewer_id", s.ID),
			slog.Int("segments", len(segs)))
	}
	r.fanout.DeliverTo(s, frames...)
}

func (r *Relay) handleSignal(s *Session, in Inbound) {
	code := s.RoomCode()
	if code == "" {
		r.drop(s, "signal from unassigned session")
		return
	}

	room, ok := r.registry.Lookup(code)
	if !ok {
		r.replyError(s, msgRoomNotFound)
		return
	}

	// A viewer of a closed room keeps the old code, which may since have
	// been handed to a new room.
	room.mu.Lock()
	if room.closed || !room.hasMemberLocked(s) {
		room.mu.Unlock()
		r.replyError(s, msgRoomNotFound)
		return
	}

	var recipients []*Session
	switch {
	case in.To == targetHost:
		if room.host != nil {
			recipients = []*Session{room.host}
		}
	case in.To != "":
		if v, ok := room.viewers[in.To]; ok {
			recipients = []*Session{v}
		}
	default:
		recipients = room.viewersLocked()
	}

	n := r.fanout.Broadcast(recipients, jsonFrame(signalMsg{Action: actionSignal, From: s.ID, Payload: in.Payload}))
	room.mu.Unlock()

	if r.metrics != nil {
		r.metrics.AddMessagesRelayed(n)
	}
}

// Disconnect tears down s: a host closes its room and every viewer is told
// host-left; a viewer leaves its room and the host is told viewer-left.
// Calling Disconnect again for the same session is a no-op.
func (r *Relay) Disconnect(s *Session) {
	if !r.sessions.Remove(s.ID) {
		return
	}
	if r.metrics != nil {
		r.metrics.SetActiveSessions(r.sessions.Len())
	}

	code := s.RoomCode()
	room, ok := r.registry.Lookup(code)
	if !ok {
		r.log.Debug("session disconnected", slog.String("session_id", s.ID))
		return
	}

	switch s.Role() {
	case RoleHost:
		room.mu.Lock()
		if room.host != s {
			room.mu.Unlock()
			return
		}
		viewers := room.closeLocked()
		r.fanout.Broadcast(viewers, jsonFrame(hostLeftMsg{Action: actionHostLeft}))
		room.mu.Unlock()

		r.registry.Delete(code)
		r.log.Info("room closed by host",
			slog.String("room", string(code)),
			slog.String("host_id", s.ID),
			slog.Int("viewers_notified", len(viewers)))

	case RoleViewer:
		room.mu.Lock()
		if room.removeViewerLocked(s.ID) && room.host != nil {
			r.fanout.DeliverTo(room.host, jsonFrame(viewerMsg{Action: actionViewerLeft, ViewerID: s.ID}))
		}
		room.mu.Unlock()
		r.log.Info("viewer left", slog.String("room", string(code)), slog.String("viewer_id", s.ID))
	}
}

// IngestSegment stores seg in the room's buffer and sends it to every current
// viewer, whatever the room's mode. Missing metadata is filled in: Seq from a
// strictly increasing millisecond clock, TS with the current time, MIME with
// DefaultMIME. It returns the number of viewers the segment was queued to.
func (r *Relay) IngestSegment(code RoomCode, seg Segment) (int, error) {
	room, ok := r.registry.Lookup(code)
	if !ok {
		return 0, ErrRoomNotFound
	}

	if seg.Seq == "" {
		seg.Seq = strconv.FormatInt(r.seq.next(), 10)
	}
	if seg.TS == "" {
		seg.TS = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}
	if seg.MIME == "" {
		seg.MIME = DefaultMIME
	}

	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return 0, ErrRoomNotFound
	}
	room.pushSegmentLocked(seg)
	n := r.fanout.Broadcast(room.viewersLocked(), segmentFrames(seg)...)
	room.mu.Unlock()

	if r.metrics != nil {
		r.metrics.IncSegmentsIngested()
	}
	r.log.Debug("segment ingested",
		slog.String("room", string(code)),
		slog.String("seq", seg.Seq),
		slog.Int("size", len(seg.Data)),
		slog.Int("viewers", n))
	return n, nil
}

func (r *Relay) replyError(s *Session, message string) {
	r.fanout.DeliverTo(s, jsonFrame(errorMsg{Action: actionError, Message: message}))
}

func (r *Relay) drop(s *Session, reason string) {
	r.log.Debug("message dropped", slog.String("session_id", s.ID), slog.String("reason", reason))
	if r.metrics != nil {
		r.metrics.IncDroppedMessages()
	}
}

// seqClock hands out millisecond timestamps that never repeat or go
// backwards, even when called more than once per millisecond.
type seqClock struct {
	last atomic.Int64
}

func (c *seqClock) next() int64 {
	for {
		now := time.Now().UnixMilli()
		last := c.last.Load()
		if now <= last {
			now = last + 1
		}
		if c.last.CompareAndSwap(last, now) {
			return now
		}
	}
}
