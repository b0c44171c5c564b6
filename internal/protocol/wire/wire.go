// Package wire implements the datagram framing for the TeamConnect
// protocol: a fixed-size header carrying the message type and routing
// fields, followed by a 1..N byte body, all inside a single segment.
package wire

import (
	"errors"
	"fmt"
)

// MaxSegmentSize is the largest datagram either side will send or accept.
// A message that would not fit is a caller error, never fragmented.
const MaxSegmentSize = 1 << 10

const (
	// ClientHeaderSize is the header length of a client-to-server message:
	// type (1B), network ID (3B big-endian), team ID (1B), status (1B).
	ClientHeaderSize = 6
	// ServerHeaderSize is the header length of a server-to-client message:
	// type (1B) only.
	ServerHeaderSize = 1

	MaxClientBodySize = MaxSegmentSize - ClientHeaderSize
	MaxServerBodySize = MaxSegmentSize - ServerHeaderSize
)

const (
	// TeamWildcard marks the team field of a message that does not relate
	// to a specific team, and a user who is on no team.
	TeamWildcard byte = 0xff
	// InactiveStatus marks a user who has not set a status or has gone
	// inactive.
	InactiveStatus byte = 0xff
	// NetworkIDLimit is one past the largest assignable network ID. It is
	// valid in a header, where clients use it as the "not registered yet"
	// sentinel, but is never assigned to a user.
	NetworkIDLimit uint32 = 0xffffff
)

// EmptyBody stands in for "no content". Bodies must be at least one byte,
// so a single '&' plays the role of an empty body.
var EmptyBody = []byte{'&'}

var (
	ErrMalformedMessage   = errors.New("wire: malformed message")
	ErrInvalidHeaderValue = errors.New("wire: header value out of range")
	ErrInvalidBody        = errors.New("wire: body size out of range")
)

// ClientMsgType identifies a client-to-server request.
type ClientMsgType byte

const (
	NetIDRequest             ClientMsgType = 1
	StatusUpdate             ClientMsgType = 2
	TeamStatusRequest        ClientMsgType = 3
	ServerDescriptionRequest ClientMsgType = 4
)

func (t ClientMsgType) String() string {
	switch t {
	case NetIDRequest:
		return "NET_ID_REQUEST"
	case StatusUpdate:
		return "STATUS_UPDATE"
	case TeamStatusRequest:
		return "TEAM_STATUS_REQUEST"
	case ServerDescriptionRequest:
		return "SERVER_DESCRIPTION_REQUEST"
	default:
		return "UNKNOWN"
	}
}

// ServerMsgType identifies a server-to-client reply.
type ServerMsgType byte

const (
	Error             ServerMsgType = 1
	AckNewUser        ServerMsgType = 2
	ServerDescription ServerMsgType = 3
	TeamStatus        ServerMsgType = 4
	AckStatusUpdate   ServerMsgType = 5
)

func (t ServerMsgType) String() string {
	switch t {
	case Error:
		return "ERROR"
	case AckNewUser:
		return "ACK_NEW_USER"
	case ServerDescription:
		return "SERVER_DESCRIPTION"
	case TeamStatus:
		return "TEAM_STATUS"
	case AckStatusUpdate:
		return "ACK_STATUS_UPDATE"
	default:
		return "UNKNOWN"
	}
}

// ClientMessage is one client-to-server request. Every request carries the
// sender's current network ID, team and status in its header regardless of
// type; requests that do not relate to a team or status carry the sigils.
type ClientMessage struct {
	Type      ClientMsgType
	NetworkID uint32
	TeamID    byte
	Status    byte
	Body      []byte
}

// EncodeClient packs a client message into a single datagram.
func EncodeClient(m ClientMessage) ([]byte, error) {
	if len(m.Body) < 1 || len(m.Body) > MaxClientBodySize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBody, len(m.Body))
	}
	if m.NetworkID > NetworkIDLimit {
		return nil, fmt.Errorf("%w: network id %d", ErrInvalidHeaderValue, m.NetworkID)
	}
	buf := make([]byte, ClientHeaderSize+len(m.Body))
	buf[0] = byte(m.Type)
	buf[1] = byte(m.NetworkID >> 16)
	buf[2] = byte(m.NetworkID >> 8)
	buf[3] = byte(m.NetworkID)
	buf[4] = m.TeamID
	buf[5] = m.Status
	copy(buf[ClientHeaderSize:], m.Body)
	return buf, nil
}

// DecodeClient unpacks a datagram received by the server.
func DecodeClient(raw []byte) (ClientMessage, error) {
	if len(raw) < ClientHeaderSize+1 || len(raw) > MaxSegmentSize {
		return ClientMessage{}, fmt.Errorf("%w: %d bytes", ErrMalformedMessage, len(raw))
	}
	body := make([]byte, len(raw)-ClientHeaderSize)
	copy(body, raw[ClientHeaderSize:])
	return ClientMessage{
		Type:      ClientMsgType(raw[0]),
		NetworkID: uint32(raw[1])<<16 | uint32(raw[2])<<8 | uint32(raw[3]),
		TeamID:    raw[4],
		Status:    raw[5],
		Body:      body,
	}, nil
}

// ServerMessage is one server-to-client reply.
type ServerMessage struct {
	Type ServerMsgType
	Body []byte
}

// EncodeServer packs a server reply into a single datagram.
func EncodeServer(m ServerMessage) ([]byte, error) {
	if len(m.Body) < 1 || len(m.Body) > MaxServerBodySize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBody, len(m.Body))
	}
	buf := make([]byte, ServerHeaderSize+len(m.Body))
	buf[0] = byte(m.Type)
	copy(buf[ServerHeaderSize:], m.Body)
	return buf, nil
}

// DecodeServer unpacks a datagram received by a client.
func DecodeServer(raw []byte) (ServerMessage, error) {
	if len(raw) < ServerHeaderSize+1 || len(raw) > MaxSegmentSize {
		return ServerMessage{}, fmt.Errorf("%w: %d bytes", ErrMalformedMessage, len(raw))
	}
	body := make([]byte, len(raw)-ServerHeaderSize)
	copy(body, raw[ServerHeaderSize:])
	return ServerMessage{Type: ServerMsgType(raw[0]), Body: body}, nil
}
