package signaling

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteWait = 10 * time.Second

// wsConn adapts a gorilla websocket to Conn. All writes happen on the
// writePump goroutine, one queued unit at a time, which is what keeps a
// segment's metadata and payload frames adjacent on the wire.
type wsConn struct {
	ws *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan []Frame
}

func newWSConn(ws *websocket.Conn, queue int) *wsConn {
	if queue <= 0 {
		queue = DefaultSendQueue
	}
	return &wsConn{ws: ws, send: make(chan []Frame, queue)}
}

// Send implements Conn. It never blocks: a full queue is reported as
// ErrSendQueueFull and the unit is discarded.
func (c *wsConn) Send(frames ...Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- frames:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// shutdown stops accepting units and lets writePump drain and exit.
func (c *wsConn) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *wsConn) writePump(log *slog.Logger, pingInterval time.Duration) {
	var tick <-chan time.Time
	if pingInterval > 0 {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	defer c.ws.Close()

	for {
		select {
		case unit, ok := <-c.send:
			if !ok {
				_ = c.ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(wsWriteWait))
				return
			}
			for _, f := range unit {
				mt := websocket.TextMessage
				if f.Binary {
					mt = websocket.BinaryMessage
				}
				_ = c.ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := c.ws.WriteMessage(mt, f.Data); err != nil {
					log.Debug("websocket write failed", slog.String("error", err.Error()))
					return
				}
			}
		case <-tick:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

// readPump feeds inbound text frames to the relay until the connection ends,
// then runs the session's cleanup.
func (c *wsConn) readPump(relay *Relay, s *Session, maxMessageBytes int64, pingInterval time.Duration) {
	defer func() {
		relay.Disconnect(s)
		c.shutdown()
	}()

	if maxMessageBytes > 0 {
		c.ws.SetReadLimit(maxMessageBytes)
	}
	if pingInterval > 0 {
		pongWait := 2 * pingInterval
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		c.ws.SetPongHandler(func(string) error {
			return c.ws.SetReadDeadline(time.Now().Add(pongWait))
		})
	}

	for {
		mt, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				relay.log.Debug("websocket closed", slog.String("session_id", s.ID), slog.String("error", err.Error()))
			}
			return
		}
		if mt != websocket.TextMessage {
			relay.drop(s, "binary frame on control channel")
			continue
		}
		relay.HandleMessage(s, msg)
	}
}
