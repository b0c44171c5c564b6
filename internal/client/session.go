// Package client implements the TeamConnect client side: a blocking
// request/response session over an unreliable datagram socket, and the
// interactive menu built on top of it.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/teamconnect/teamconnect/internal/protocol/ident"
	"github.com/teamconnect/teamconnect/internal/protocol/wire"
)

// requestTimeout is how long one attempt waits for a reply before the
// request is resent verbatim.
const requestTimeout = 1000 * time.Millisecond

var ErrNoTeam = errors.New("client: not on a team")

// Session is one client's connection state against a server. It is not
// safe for concurrent use; requests block until acknowledged or the
// context ends.
type Session struct {
	conn   *net.UDPConn
	logger zerolog.Logger

	name   string
	netID  uint32
	teamID byte
	status byte

	teams    []string
	statuses []string

	timeout time.Duration
}

// Dial binds a local socket and prepares a session against serverAddr.
// Passing a netID below wire.NetworkIDLimit reattaches to an identity
// registered in an earlier session instead of requesting a fresh one.
func Dial(serverAddr, name string, netID uint32, logger zerolog.Logger) (*Session, error) {
	if !ident.IsValid(name) {
		return nil, fmt.Errorf("client: display name %q invalid: 1 to %d letters, numbers and spaces",
			name, ident.SlotSize)
	}
	raddr, err := net.ResolveUDPAddr("udp", serverAddr)
	if err != nil {
		return nil, fmt.Errorf("client: resolve server addr: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("client: open socket: %w", err)
	}
	return &Session{
		conn:    conn,
		logger:  logger,
		name:    name,
		netID:   netID,
		teamID:  wire.TeamWildcard,
		status:  wire.InactiveStatus,
		timeout: requestTimeout,
	}, nil
}

func (s *Session) Close() error { return s.conn.Close() }

func (s *Session) Name() string       { return s.name }
func (s *Session) NetID() uint32      { return s.netID }
func (s *Session) TeamID() byte       { return s.teamID }
func (s *Session) Status() byte       { return s.status }
func (s *Session) Teams() []string    { return s.teams }
func (s *Session) Statuses() []string { return s.statuses }

// request sends the encoded request and waits one timeout for a reply. A
// missing, malformed or unexpected reply triggers an identical resend, with
// no retry cap. Error replies are surfaced and then treated as non-matches.
// Cancellation comes only from ctx.
func (s *Session) request(ctx context.Context, typ wire.ClientMsgType, body []byte, want wire.ServerMsgType) (wire.ServerMessage, error) {
	raw, err := wire.EncodeClient(wire.ClientMessage{
		Type:      typ,
		NetworkID: s.netID,
		TeamID:    s.teamID,
		Status:    s.status,
		Body:      body,
	})
	if err != nil {
		return wire.ServerMessage{}, err
	}

	buf := make([]byte, wire.MaxSegmentSize)
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return wire.ServerMessage{}, err
		}
		if _, err := s.conn.Write(raw); err != nil {
			s.logger.Debug().Err(err).Msg("send failed")
		}

		deadline := time.Now().Add(s.timeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		_ = s.conn.SetReadDeadline(deadline)

		n, err := s.conn.Read(buf)
		if err != nil {
			s.logger.Debug().Int("attempt", attempt).Str("type", typ.String()).Msg("no reply, resending")
			continue
		}
		reply, err := wire.DecodeServer(buf[:n])
		if err != nil {
			continue
		}
		if reply.Type == want {
			return reply, nil
		}
		if reply.Type == wire.Error {
			fmt.Println(string(reply.Body))
		}
	}
}

// Register requests a fresh network ID for this session's display name.
//
// Retries carry no idempotency token: if the server's first reply was
// delayed rather than lost, a resent registration mints a second identity
// for the same client. Known gap inherited from the wire format.
func (s *Session) Register(ctx context.Context) (uint32, error) {
	reply, err := s.request(ctx, wire.NetIDRequest, []byte(s.name), wire.AckNewUser)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(string(ident.TrimPadding(reply.Body)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("client: bad net id in ack: %w", err)
	}
	s.netID = uint32(id)
	return s.netID, nil
}

// FetchDescription retrieves the server's fixed team and status lists.
func (s *Session) FetchDescription(ctx context.Context) error {
	reply, err := s.request(ctx, wire.ServerDescriptionRequest, wire.EmptyBody, wire.ServerDescription)
	if err != nil {
		return err
	}
	teams, err := ident.Unpack(reply.Body, ident.DelimTeams)
	if err != nil {
		return fmt.Errorf("client: bad server description: %w", err)
	}
	statuses, err := ident.Unpack(reply.Body, ident.DelimStatuses)
	if err != nil {
		return fmt.Errorf("client: bad server description: %w", err)
	}
	s.teams = teams
	s.statuses = statuses
	return nil
}

// Bootstrap registers if the session has no identity yet, then fetches the
// server description.
func (s *Session) Bootstrap(ctx context.Context) error {
	if s.netID == wire.NetworkIDLimit {
		if _, err := s.Register(ctx); err != nil {
			return err
		}
	}
	return s.FetchDescription(ctx)
}

// SetStatus broadcasts a new status. State is absolute, not a delta, so a
// duplicated update on the wire is harmless.
func (s *Session) SetStatus(ctx context.Context, status byte) error {
	s.status = status
	_, err := s.request(ctx, wire.StatusUpdate, wire.EmptyBody, wire.AckStatusUpdate)
	return err
}

// SetTeam moves this user to another team, keeping the current status.
func (s *Session) SetTeam(ctx context.Context, teamID byte) error {
	s.teamID = teamID
	_, err := s.request(ctx, wire.StatusUpdate, wire.EmptyBody, wire.AckStatusUpdate)
	return err
}

// Leave resets the session to no team and no status, telling the server.
// The identity itself stays registered for the process lifetime.
func (s *Session) Leave(ctx context.Context) error {
	s.teamID = wire.TeamWildcard
	s.status = wire.InactiveStatus
	_, err := s.request(ctx, wire.StatusUpdate, wire.EmptyBody, wire.AckStatusUpdate)
	return err
}

// TeamMember pairs one roster slot's name with its status byte.
type TeamMember struct {
	Name   string
	Status byte
}

// TeamStatuses fetches the current team's roster. Vacant slots come back
// with empty names; callers decide whether to show them.
func (s *Session) TeamStatuses(ctx context.Context) ([]TeamMember, error) {
	if s.teamID == wire.TeamWildcard {
		return nil, ErrNoTeam
	}
	reply, err := s.request(ctx, wire.TeamStatusRequest, wire.EmptyBody, wire.TeamStatus)
	if err != nil {
		return nil, err
	}
	names, err := ident.Unpack(reply.Body, ident.DelimUsers)
	if err != nil {
		return nil, fmt.Errorf("client: bad team status: %w", err)
	}
	vec, err := ident.StatusVector(reply.Body)
	if err != nil {
		return nil, fmt.Errorf("client: bad team status: %w", err)
	}
	members := make([]TeamMember, 0, len(names))
	for i, name := range names {
		status := wire.InactiveStatus
		if i < len(vec) {
			status = vec[i]
		}
		members = append(members, TeamMember{Name: name, Status: status})
	}
	return members, nil
}
