// Package server implements the connection supervisor of httpcraft: it
// accepts TCP connections and runs one request/response cycle on each of them
// concurrently.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/stealthrocket/httpcraft/format/httpformat"
	"github.com/stealthrocket/httpcraft/internal/http1"
)

// Handler produces the response to a request.
type Handler interface {
	Handle(ctx context.Context, req *httpformat.Request) *httpformat.Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, *httpformat.Request) *httpformat.Response

func (f HandlerFunc) Handle(ctx context.Context, req *httpformat.Request) *httpformat.Response {
	return f(ctx, req)
}

// ConnError is the error reported when serving a connection failed.
type ConnError struct {
	ID         uuid.UUID
	RemoteAddr net.Addr
	Err        error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.ID, e.RemoteAddr, e.Err)
}

func (e *ConnError) Unwrap() error { return e.Err }

// Server accepts connections and serves exactly one request on each of them.
//
// Each connection is served on its own goroutine. Failures are contained to
// the connection where they happened: they are logged, reported to OnError,
// and the connection is closed.
type Server struct {
	Handler Handler

	// Limits applied when reading requests.
	Limits http1.Limits

	// When non-zero, the time allowed for a client to send its request.
	ReadTimeout time.Duration

	// When positive, the maximum number of connections served concurrently.
	// Connections beyond the limit wait in the listen backlog.
	MaxConnections int

	// When positive, the maximum number of connections accepted per second.
	AcceptRate float64

	// Log receives connection events. When nil, the standard logger is used.
	Log *log.Logger

	// OnError, when set, is called with every connection failure after it
	// was logged.
	OnError func(*ConnError)

	mutex sync.Mutex
	conns map[net.Conn]struct{}
}

// Serve accepts connections from l until ctx is canceled or l is closed.
//
// Accept errors are logged and do not stop the server. When ctx is canceled,
// Serve closes l, interrupts connections still waiting for their request, and
// returns nil once all connections have been served.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	if s.MaxConnections > 0 {
		l = netutil.LimitListener(l, s.MaxConnections)
	}

	var limiter *rate.Limiter
	if s.AcceptRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.AcceptRate), 1)
	}

	var group errgroup.Group
	defer group.Wait()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			l.Close()
			s.interrupt()
		case <-done:
		}
	}()

	var delay time.Duration
	for {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
		}

		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			delay = backoff(delay)
			s.logf("accept error: %s (retrying in %s)", err, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		delay = 0

		id := uuid.New()
		s.logf("%s: accepted new connection from %s", id, conn.RemoteAddr())
		if s.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.ReadTimeout))
		}
		s.track(conn, true)
		if ctx.Err() != nil {
			// Canceled while accepting, the interruption may have missed it.
			_ = conn.SetReadDeadline(time.Now())
		}

		group.Go(func() error {
			defer s.track(conn, false)
			if err := s.serveConn(ctx, id, conn); err != nil {
				s.fail(&ConnError{ID: id, RemoteAddr: conn.RemoteAddr(), Err: err})
			}
			return nil
		})
	}
}

func (s *Server) serveConn(ctx context.Context, id uuid.UUID, conn net.Conn) (err error) {
	defer conn.Close()

	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("panic: %v", v)
			res := httpformat.NewResponse(httpformat.StatusInternalServerError)
			if werr := http1.WriteResponse(conn, res); werr != nil {
				err = errors.Join(err, werr)
			}
		}
	}()

	req, err := http1.ReadRequest(bufio.NewReader(conn), s.Limits)
	if err != nil {
		if err == io.EOF {
			return nil
		}
		if status, ok := errorStatus(err); ok {
			res := httpformat.NewResponse(status)
			if werr := http1.WriteResponse(conn, res); werr != nil {
				return errors.Join(err, werr)
			}
		}
		return err
	}

	res := s.Handler.Handle(ctx, req)
	s.logf("%s: %s %s %s: %d %s", id, req.Method, req.Target, req.Version, res.StatusCode, res.StatusText())
	return http1.WriteResponse(conn, res)
}

// errorStatus returns the status code of the response sent to clients whose
// request could not be read because of err. There is no response for errors
// which are not caused by the content of the request.
func errorStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, http1.ErrHeaderTooLarge):
		return httpformat.StatusRequestHeaderFieldsTooLarge, true
	case errors.Is(err, http1.ErrBodyTooLarge):
		return httpformat.StatusRequestEntityTooLarge, true
	case errors.Is(err, http1.ErrBadMethod),
		errors.Is(err, http1.ErrBadVersion),
		errors.Is(err, http1.ErrBadRequestLine),
		errors.Is(err, http1.ErrBadHeader),
		errors.Is(err, http1.ErrBadContentLength),
		errors.Is(err, http1.ErrTruncatedBody):
		return httpformat.StatusBadRequest, true
	default:
		return 0, false
	}
}

func (s *Server) track(conn net.Conn, add bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if add {
		if s.conns == nil {
			s.conns = make(map[net.Conn]struct{})
		}
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

// interrupt unblocks connections waiting to read their request. Responses
// being written are allowed to complete.
func (s *Server) interrupt() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for conn := range s.conns {
		_ = conn.SetReadDeadline(time.Now())
	}
}

func (s *Server) fail(err *ConnError) {
	s.logf("%s", err)
	if s.OnError != nil {
		s.OnError(err)
	}
}

func (s *Server) logf(format string, args ...any) {
	if s.Log != nil {
		s.Log.Printf(format, args...)
	} else {
		log.Printf(format, args...)
	}
}

func backoff(delay time.Duration) time.Duration {
	const maxDelay = 1 * time.Second
	if delay == 0 {
		return 5 * time.Millisecond
	}
	if delay *= 2; delay > maxDelay {
		delay = maxDelay
	}
	return delay
}
