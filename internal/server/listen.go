package server

import (
	"context"
	"net"
)

// DefaultAddress is the address that httpcraft listens on when none is
// configured.
const DefaultAddress = "127.0.0.1:4221"

// Listen binds a TCP listener on address. On unix platforms the socket has
// SO_REUSEADDR set so the server can be restarted while connections from a
// previous process are in TIME_WAIT.
func Listen(ctx context.Context, address string) (net.Listener, error) {
	lc := &net.ListenConfig{Control: control}
	return lc.Listen(ctx, "tcp", address)
}
