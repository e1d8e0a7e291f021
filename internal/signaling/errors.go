package signaling

import "errors"

var (
	// ErrRoomNotFound is returned when a room code does not resolve, or the
	// room was closed by its host while the caller held a reference to it.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoleAlreadySet is returned when a Session that already has a role
	// tries to take another one.
	ErrRoleAlreadySet = errors.New("role already set")

	// ErrHostAlreadyPresent is returned when a room already has a host.
	ErrHostAlreadyPresent = errors.New("host already present")

	// ErrCodeSpaceExhausted is returned when every attempt to draw an unused
	// room code collided with an existing room.
	ErrCodeSpaceExhausted = errors.New("room code space exhausted")

	// ErrConnClosed is returned by Send once the connection has shut down.
	ErrConnClosed = errors.New("connection closed")

	// ErrSendQueueFull is returned by Send when the outbound queue has no
	// room for another unit. The unit is discarded.
	ErrSendQueueFull = errors.New("send queue full")
)

// Messages reported to clients in error{message}.
const (
	msgRoomNotFound       = "Room not found"
	msgCodeSpaceExhausted = "Room code space exhausted"
)
