package tagnet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/rep"

	"github.com/Amir23156/BottleAsec/internal/tag"

	_ "go.nanomsg.org/mangos/v3/transport/inproc"
	_ "go.nanomsg.org/mangos/v3/transport/tcp"
)

// pollInterval bounds how long Serve blocks in Recv before it checks ctx.
const pollInterval = 250 * time.Millisecond

// Server answers tag requests from a REP socket.
type Server struct {
	store  tag.Store
	sock   mangos.Socket
	logger *log.Logger
	addr   string
}

// Listen opens a REP socket on addr serving store.
func Listen(store tag.Store, addr string, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}

	sock, err := rep.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create REP socket: %w", err)
	}
	if err := sock.SetOption(mangos.OptionRecvDeadline, pollInterval); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to set recv deadline: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	logger.Printf("tagnet: serving tag store on %s", addr)
	return &Server{store: store, sock: sock, logger: logger, addr: addr}, nil
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Serve handles requests until ctx is done or the socket is closed.
func (s *Server) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msg, err := s.sock.Recv()
		if errors.Is(err, mangos.ErrRecvTimeout) {
			continue
		}
		if errors.Is(err, mangos.ErrClosed) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("tagnet: recv failed: %w", err)
		}

		out, err := json.Marshal(s.handle(ctx, msg))
		if err != nil {
			s.logger.Printf("tagnet: failed to marshal reply: %v", err)
			continue
		}
		if err := s.sock.Send(out); err != nil {
			s.logger.Printf("tagnet: failed to send reply: %v", err)
		}
	}
}

func (s *Server) handle(ctx context.Context, msg []byte) reply {
	req, err := decodeRequest(msg)
	if err != nil {
		s.logger.Printf("tagnet: %v", err)
		return reply{Code: "BAD_REQUEST"}
	}

	switch req.Op {
	case OpRead:
		v, err := s.store.Read(ctx, req.Tag)
		return reply{Value: v, Code: tag.Code(err)}
	default:
		err := s.store.Write(ctx, req.Tag, req.Value)
		return reply{Value: req.Value, Code: tag.Code(err)}
	}
}

// Close closes the socket; a running Serve returns.
func (s *Server) Close() error {
	return s.sock.Close()
}
