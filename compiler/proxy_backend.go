package compiler

import (
	"context"
	"fmt"
	"net"

	"github.com/sarchlab/cascade/engine"
	"github.com/sarchlab/cascade/rpc"
	"github.com/sarchlab/cascade/rpc/proxy"
)

// NewProxyBackend builds the Backend RegisterProxy expects: for every
// request it dials addr, sends REGISTER_CONNECTION followed by COMPILE
// with the request's module name, and on success wraps the new connection
// as a rpc/proxy.Core forwarding every subsequent Core call to the worker
// (§4.7 "a proxy compiler when the __loc annotation is remote or
// runtime"). Backends cancel promptly: ctx is checked right after dialing,
// before the handshake, matching stop_compile's "return nullptr within a bounded
// time" requirement without needing the worker itself to understand
// cancellation.
func NewProxyBackend(addr string, iface engine.Interface) Backend {
	return func(ctx context.Context, req Request) (engine.Core, error) {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("compiler: proxy dial %s: %w", addr, err)
		}
		select {
		case <-ctx.Done():
			conn.Close()
			return nil, ctx.Err()
		default:
		}

		id := uint32(req.Version)
		if err := rpc.WriteHeader(conn, rpc.REGISTER_CONNECTION, id); err != nil {
			conn.Close()
			return nil, fmt.Errorf("compiler: proxy register: %w", err)
		}
		if err := rpc.WriteHeader(conn, rpc.COMPILE, id); err != nil {
			conn.Close()
			return nil, fmt.Errorf("compiler: proxy compile: %w", err)
		}
		if err := rpc.WriteString(conn, req.Module.Name); err != nil {
			conn.Close()
			return nil, fmt.Errorf("compiler: proxy compile: %w", err)
		}
		h, err := rpc.ReadHeader(conn)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("compiler: proxy compile: %w", err)
		}
		if h.Type == rpc.FAIL {
			conn.Close()
			return nil, fmt.Errorf("compiler: proxy: worker refused %q", req.Module.Name)
		}

		return proxy.New(conn, id, iface), nil
	}
}
