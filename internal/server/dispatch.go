package server

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/teamconnect/teamconnect/internal/directory"
	"github.com/teamconnect/teamconnect/internal/observability"
	"github.com/teamconnect/teamconnect/internal/protocol/ident"
	"github.com/teamconnect/teamconnect/internal/protocol/wire"
)

// HandleDatagram maps one inbound datagram to its reply datagram. Every
// request produces exactly one reply; any fault while handling becomes an
// Error reply carrying the reason, never a dropped request.
func (s *Server) HandleDatagram(raw []byte) []byte {
	start := time.Now()

	req, err := wire.DecodeClient(raw)
	if err != nil {
		observability.RecordMalformed(s.node)
		s.logger.Warn().Err(err).Msg("malformed datagram")
		return encodeReply(errorReply("Failed to parse malformed message"))
	}

	s.logger.Debug().
		Str("type", req.Type.String()).
		Uint32("net_id", req.NetworkID).
		Msg("request received")

	var reply wire.ServerMessage
	switch req.Type {
	case wire.NetIDRequest:
		reply = s.serveNetIDRequest(req)
	case wire.StatusUpdate:
		reply = s.serveStatusUpdate(req)
	case wire.TeamStatusRequest:
		reply = s.serveTeamStatusRequest(req)
	case wire.ServerDescriptionRequest:
		reply = wire.ServerMessage{Type: wire.ServerDescription, Body: s.descBody}
	default:
		reply = errorReply("Could not process request - Invalid client message type")
	}

	outcome := "ok"
	if reply.Type == wire.Error {
		outcome = "error"
	}
	observability.RecordDatagram(s.node, req.Type.String(), outcome, time.Since(start))
	return encodeReply(reply)
}

func (s *Server) serveNetIDRequest(req wire.ClientMessage) wire.ServerMessage {
	name := string(ident.TrimPadding(req.Body))
	u, err := s.dir.CreateUser(name)
	switch {
	case errors.Is(err, directory.ErrCapacityExceeded):
		return errorReply("Could not create new user, this server has reached its limit of users supported")
	case errors.Is(err, directory.ErrInvalidIdentifier):
		return errorReply(fmt.Sprintf(
			"Usernames must be between 1 and %d letters, numbers and spaces. %q is not a valid username.",
			ident.SlotSize, name))
	case err != nil:
		return errorReply(err.Error())
	}
	s.logger.Info().Uint32("net_id", u.NetID()).Str("name", u.Name()).Msg("user registered")
	return wire.ServerMessage{
		Type: wire.AckNewUser,
		Body: []byte(strconv.FormatUint(uint64(u.NetID()), 10)),
	}
}

func (s *Server) serveStatusUpdate(req wire.ClientMessage) wire.ServerMessage {
	u := s.dir.LookupUser(req.NetworkID)
	if u == nil {
		return errorReply(fmt.Sprintf("Cannot resolve invalid user ID: %d", req.NetworkID))
	}
	if err := s.dir.SetStatusAndTeam(u, req.Status, req.TeamID); err != nil {
		switch {
		case errors.Is(err, directory.ErrInvalidStatus):
			return errorReply(fmt.Sprintf("Invalid status: %d", req.Status))
		case errors.Is(err, directory.ErrInvalidTeam):
			return errorReply(fmt.Sprintf("Invalid team ID: %d", req.TeamID))
		default:
			return errorReply(err.Error())
		}
	}
	return wire.ServerMessage{Type: wire.AckStatusUpdate, Body: wire.EmptyBody}
}

func (s *Server) serveTeamStatusRequest(req wire.ClientMessage) wire.ServerMessage {
	names, statuses, err := s.dir.TeamStatusView(req.TeamID)
	if err != nil {
		return errorReply(fmt.Sprintf("Invalid Team ID: %d", req.TeamID))
	}
	body := ident.Pack(ident.Category{Delim: ident.DelimUsers, Items: names})
	body = append(body, statuses...)
	return wire.ServerMessage{Type: wire.TeamStatus, Body: body}
}

func errorReply(reason string) wire.ServerMessage {
	return wire.ServerMessage{Type: wire.Error, Body: []byte(reason)}
}

// encodeReply packs a reply the dispatcher built itself. Those bodies are
// bounded by construction, so an encode failure is a programming error.
func encodeReply(m wire.ServerMessage) []byte {
	raw, err := wire.EncodeServer(m)
	if err != nil {
		panic(fmt.Sprintf("server: reply does not fit a segment: %v", err))
	}
	return raw
}
