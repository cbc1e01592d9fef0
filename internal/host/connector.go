// Package host talks to the spatial host environment. The launcher needs two
// things from it before spawning a process: a startup token binding the child
// to a spatial identity, and the connection environment variables the child
// must inherit to join the session.
package host

import (
	"context"
	"encoding/json"
	"fmt"
	"net"

	"github.com/stardust-xr/protostar/internal/config"
)

// Connector is the narrow interface the launch path depends on. Both calls
// are fallible round trips to the host; callers decide how failures surface.
type Connector interface {
	StartupToken(ctx context.Context, spaceID string) (string, error)
	ConnectionEnv(ctx context.Context) (map[string]string, error)
}

type request struct {
	Command string            `json:"command"`
	Params  map[string]string `json:"params,omitempty"`
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error,omitempty"`
}

// SocketConnector implements Connector over a unix socket, one connection per
// request.
type SocketConnector struct {
	socketPath string
}

func NewSocketConnector(cfg *config.Config) *SocketConnector {
	return &SocketConnector{socketPath: cfg.Host.SocketPath}
}

func (c *SocketConnector) StartupToken(ctx context.Context, spaceID string) (string, error) {
	data, err := c.roundTrip(ctx, request{
		Command: "startup_token",
		Params:  map[string]string{"space_id": spaceID},
	})
	if err != nil {
		return "", err
	}

	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return "", fmt.Errorf("malformed startup token response: %w", err)
	}
	return token, nil
}

func (c *SocketConnector) ConnectionEnv(ctx context.Context) (map[string]string, error) {
	data, err := c.roundTrip(ctx, request{Command: "connection_env"})
	if err != nil {
		return nil, err
	}

	var env map[string]string
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed connection env response: %w", err)
	}
	return env, nil
}

func (c *SocketConnector) roundTrip(ctx context.Context, req request) (json.RawMessage, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to host socket %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("failed to send %s request: %w", req.Command, err)
	}

	var resp response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", req.Command, err)
	}

	if !resp.Success {
		return nil, fmt.Errorf("host rejected %s request: %s", req.Command, resp.Error)
	}
	return resp.Data, nil
}
