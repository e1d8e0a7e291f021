package signaling

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	// DefaultMaxSegmentBytes bounds an uploaded segment body.
	DefaultMaxSegmentBytes = 8 << 20
	// DefaultMaxSignalBytes bounds one inbound control message.
	DefaultMaxSignalBytes = 64 << 10
	// DefaultSendQueue is how many outbound units a connection may have queued.
	DefaultSendQueue = 256
)

// Options tunes the HTTP and WebSocket surface. Zero values pick defaults,
// except PingInterval where zero disables keepalive pings.
type Options struct {
	MaxSegmentBytes int64
	MaxSignalBytes  int64
	SendQueue       int
	PingInterval    time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxSegmentBytes <= 0 {
		o.MaxSegmentBytes = DefaultMaxSegmentBytes
	}
	if o.MaxSignalBytes <= 0 {
		o.MaxSignalBytes = DefaultMaxSignalBytes
	}
	if o.SendQueue <= 0 {
		o.SendQueue = DefaultSendQueue
	}
	return o
}

// Handler exposes the control channel and the segment upload endpoint.
type Handler struct {
	relay    *Relay
	log      *slog.Logger
	opts     Options
	upgrader websocket.Upgrader
}

// NewHandler returns a Handler serving relay.
func NewHandler(relay *Relay, log *slog.Logger, opts Options) *Handler {
	return &Handler{
		relay: relay,
		log:   log,
		opts:  opts.withDefaults(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Routes mounts the handler's endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/ws", h.ServeWS)
	r.Post("/segment/{room}", h.UploadSegment)
}

// ServeWS handles GET /ws. The request goroutine becomes the read loop of the
// new session and returns once the connection is gone and cleaned up.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	conn := newWSConn(ws, h.opts.SendQueue)
	s := h.relay.Connect(conn)
	h.log.Info("websocket connected",
		slog.String("session_id", s.ID),
		slog.String("remote_addr", r.RemoteAddr))

	go conn.writePump(h.log, h.opts.PingInterval)
	conn.readPump(h.relay, s, h.opts.MaxSignalBytes, h.opts.PingInterval)

	h.log.Info("websocket disconnected", slog.String("session_id", s.ID))
}

// UploadSegment handles POST /segment/{room}. The body is the raw segment;
// x-seq, x-ts and x-mime carry optional metadata.
func (h *Handler) UploadSegment(w http.ResponseWriter, r *http.Request) {
	code := NormalizeRoomCode(chi.URLParam(r, "room"))
	if code == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if !ValidRoomCode(code, h.relay.Registry().CodeLength()) {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	if _, ok := h.relay.Registry().Lookup(code); !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.opts.MaxSegmentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.log.Info("segment rejected too large",
				slog.String("room", string(code)),
				slog.Int64("limit", tooLarge.Limit))
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		h.log.Debug("read segment body failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	seg := Segment{
		Seq:  r.Header.Get("x-seq"),
		TS:   r.Header.Get("x-ts"),
		MIME: r.Header.Get("x-mime"),
		Data: data,
	}

	delivered, err := h.relay.IngestSegment(code, seg)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		h.log.Error("ingest segment failed", slog.String("room", string(code)), slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.log.Info("received segment",
		slog.String("room", string(code)),
		slog.Int("size", len(data)),
		slog.Int("viewers", delivered))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
