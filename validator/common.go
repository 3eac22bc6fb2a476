package validator

import (
	"context"
	"net"

	px "golang.org/x/net/proxy"
)

// dialContext runs dialer.Dial in a goroutine and returns as soon as
// ctx is cancelled, closing a late-arriving connection rather than
// leaking it — the same cancellable-dial shape the teacher's
// proxypool.DialContext uses.
func dialContext(ctx context.Context, dialer px.Dialer, network, address string) (net.Conn, error) {
	var conn net.Conn
	var err error

	done := make(chan struct{})
	go func() {
		conn, err = dialer.Dial(network, address)
		close(done)
	}()

	select {
	case <-ctx.Done():
		if conn != nil {
			conn.Close()
		}
		return nil, ctx.Err()
	case <-done:
		return conn, err
	}
}
