package signaling

import (
	"encoding/json"
	"sync"
	"testing"

	"signaling-server/internal/platform/logger"
)

// recordConn captures every unit sent to it. If fail is set, Send returns it.
type recordConn struct {
	mu    sync.Mutex
	units [][]Frame
	fail  error
}

func (c *recordConn) Send(frames ...Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	unit := make([]Frame, len(frames))
	copy(unit, frames)
	c.units = append(c.units, unit)
	return nil
}

func (c *recordConn) frames() []Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Frame
	for _, u := range c.units {
		out = append(out, u...)
	}
	return out
}

// messages decodes every text frame received so far.
func (c *recordConn) messages(t *testing.T) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, f := range c.frames() {
		if f.Binary {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(f.Data, &m); err != nil {
			t.Fatalf("decode frame %q: %v", f.Data, err)
		}
		out = append(out, m)
	}
	return out
}

// actions returns the action field of every text frame received so far.
func (c *recordConn) actions(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, m := range c.messages(t) {
		a, _ := m["action"].(string)
		out = append(out, a)
	}
	return out
}

func (c *recordConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.units = nil
}

func newTestRelay(t *testing.T, maxSegments int) *Relay {
	t.Helper()
	reg := NewRegistry(NewCodeGenerator(DefaultCodeLength, nil), maxSegments)
	return NewRelay(reg, logger.Discard(), nil)
}

func send(t *testing.T, r *Relay, s *Session, msg map[string]any) {
	t.Helper()
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	r.HandleMessage(s, raw)
}

// hostRoom connects a host, creates a room and returns the host session, its
// connection and the room code.
func hostRoom(t *testing.T, r *Relay) (*Session, *recordConn, RoomCode) {
	t.Helper()
	conn := &recordConn{}
	s := r.Connect(conn)
	send(t, r, s, map[string]any{"action": "create", "role": "host"})
	msgs := conn.messages(t)
	if len(msgs) != 1 || msgs[0]["action"] != "created" {
		t.Fatalf("create: got %v", msgs)
	}
	code, _ := msgs[0]["code"].(string)
	conn.reset()
	return s, conn, RoomCode(code)
}

func joinViewer(t *testing.T, r *Relay, code RoomCode) (*Session, *recordConn) {
	t.Helper()
	conn := &recordConn{}
	s := r.Connect(conn)
	send(t, r, s, map[string]any{"action": "join", "role": "viewer", "code": string(code)})
	if s.Role() != RoleViewer {
		t.Fatalf("join %s: role %q", code, s.Role())
	}
	return s, conn
}

// segmentSeqs returns the seq of every segment meta frame, checking that each
// is immediately followed by a binary frame of the announced size.
func segmentSeqs(t *testing.T, conn *recordConn) []string {
	t.Helper()
	frames := conn.frames()
	var seqs []string
	for i := 0; i < len(frames); i++ {
		f := frames[i]
		if f.Binary {
			t.Fatalf("frame %d: binary frame without preceding meta", i)
		}
		var m segmentMsg
		if err := json.Unmarshal(f.Data, &m); err != nil || m.Action != actionSegment {
			continue
		}
		if i+1 >= len(frames) || !frames[i+1].Binary {
			t.Fatalf("segment %s: meta not followed by payload", m.Seq)
		}
		if len(frames[i+1].Data) != m.Size {
			t.Fatalf("segment %s: size %d, payload %d", m.Seq, m.Size, len(frames[i+1].Data))
		}
		seqs = append(seqs, m.Seq)
		i++
	}
	return seqs
}
