package signaling

import "encoding/json"

// RoomCode is the upper-cased alphanumeric identifier of a room.
type RoomCode string

// Role is the part a Session plays in its room. It is set at most once.
type Role string

const (
	RoleUnassigned Role = ""
	RoleHost       Role = "host"
	RoleViewer     Role = "viewer"
)

// Mode selects how a room delivers media to its viewers.
type Mode string

const (
	ModeWebRTC   Mode = "webrtc"
	ModeBuffered Mode = "buffered"
)

// DefaultMIME is used for uploaded segments that carry no x-mime header.
const DefaultMIME = "video/webm"

// Segment is one uploaded chunk of media. Data is never modified after the
// segment is created.
type Segment struct {
	Seq  string
	TS   string
	MIME string
	Data []byte
}

// Inbound is the control-channel envelope sent by clients.
type Inbound struct {
	Action  string          `json:"action"`
	Role    Role            `json:"role,omitempty"`
	Code    string          `json:"code,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	To      string          `json:"to,omitempty"`
}

// modePayload is the payload of a set-mode action.
type modePayload struct {
	Mode Mode `json:"mode"`
}

// Server to client messages.

type createdMsg struct {
	Action string   `json:"action"`
	Code   RoomCode `json:"code"`
}

type modeMsg struct {
	Action string `json:"action"`
	Mode   Mode   `json:"mode"`
}

type joinedMsg struct {
	Action   string   `json:"action"`
	Code     RoomCode `json:"code"`
	ViewerID string   `json:"viewerId"`
}

type viewerMsg struct {
	Action   string `json:"action"`
	ViewerID string `json:"viewerId"`
}

type hostLeftMsg struct {
	Action string `json:"action"`
}

type signalMsg struct {
	Action  string          `json:"action"`
	From    string          `json:"from"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type segmentMsg struct {
	Action string `json:"action"`
	Seq    string `json:"seq"`
	TS     string `json:"ts"`
	MIME   string `json:"mime"`
	Size   int    `json:"size"`
}

type errorMsg struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

const (
	actionCreate       = "create"
	actionSetMode      = "set-mode"
	actionJoin         = "join"
	actionSignal       = "signal"
	actionCreated      = "created"
	actionModeSet      = "mode-set"
	actionJoined       = "joined"
	actionBufferedMode = "buffered-mode"
	actionViewerJoined = "viewer-joined"
	actionViewerLeft   = "viewer-left"
	actionHostLeft     = "host-left"
	actionSegment      = "segment"
	actionError        = "error"

	targetHost = "host"
)
