// Package server runs the TeamConnect directory service: a single UDP
// receive loop that decodes each request, applies it to the directory and
// sends exactly one reply to the observed sender.
package server

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/teamconnect/teamconnect/internal/directory"
	"github.com/teamconnect/teamconnect/internal/protocol/ident"
	"github.com/teamconnect/teamconnect/internal/protocol/wire"
)

type Server struct {
	node    string
	addr    string
	dir     *directory.Directory
	logger  zerolog.Logger
	started time.Time

	// descBody is computed once: the team and status lists are fixed for
	// the server's lifetime.
	descBody []byte
}

func New(node, addr string, dir *directory.Directory, logger zerolog.Logger) *Server {
	teams, statuses := dir.Description()
	descBody := ident.Pack(
		ident.Category{Delim: ident.DelimTeams, Items: teams},
		ident.Category{Delim: ident.DelimStatuses, Items: statuses},
	)
	return &Server{
		node:     node,
		addr:     addr,
		dir:      dir,
		logger:   logger,
		started:  time.Now(),
		descBody: descBody,
	}
}

// Serve binds the configured address and blocks reading datagrams until
// ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	conn, err := net.ListenPacket("udp", s.addr)
	if err != nil {
		return err
	}
	return s.ServeConn(ctx, conn)
}

// ServeConn runs the receive loop on an already bound socket. Receive and
// send failures are logged and the loop continues; only socket teardown
// ends it.
func (s *Server) ServeConn(ctx context.Context, conn net.PacketConn) error {
	defer conn.Close()

	s.logger.Info().Str("addr", conn.LocalAddr().String()).Msg("teamconnect server listening")

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, wire.MaxSegmentSize)
	for {
		n, sender, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.logger.Error().Err(err).Msg("receive failed")
			continue
		}

		reply := s.HandleDatagram(buf[:n])
		if _, err := conn.WriteTo(reply, sender); err != nil {
			// Unreliable delivery: one failed reply must not affect
			// subsequent requests.
			s.logger.Error().Err(err).Str("peer", sender.String()).Msg("send failed")
			continue
		}
		s.logger.Debug().
			Str("peer", sender.String()).
			Int("bytes", len(reply)).
			Str("type", wire.ServerMsgType(reply[0]).String()).
			Msg("reply sent")
	}
}
