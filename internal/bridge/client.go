package bridge

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/pybridge/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultConnectTimeout bounds the wait for the initial connection.
const DefaultConnectTimeout = 15 * time.Second

// Config holds the host connection settings.
type Config struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

type event struct {
	name string
	data []any
}

// Serve connects to the host and answers its requests until ctx is done or
// the host disconnects.
func Serve(ctx context.Context, cfg Config, h *Handler) error {
	logger := ctxlog.FromContext(ctx).With("url", cfg.URL)

	io, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		logger.Debug("Disconnecting socket client.")
		io.Disconnect()
	}()

	events := make(chan event, 64)
	for _, name := range []string{EventDescribe, EventInvoke, "disconnect"} {
		name := name
		io.On(types.EventName(name), func(data ...any) {
			select {
			case events <- event{name: name, data: data}:
			case <-ctx.Done():
			}
		})
	}
	logger.Info("Bridge ready.", "sid", io.Id(), "namespaces", len(h.Describe()))

	for {
		select {
		case <-ctx.Done():
			logger.Info("Bridge stopping.")
			return nil
		case ev := <-events:
			switch ev.name {
			case EventDescribe:
				io.Emit(EventDescribeResult, h.Describe())
			case EventInvoke:
				var payload any
				if len(ev.data) > 0 {
					payload = ev.data[0]
				}
				io.Emit(EventInvokeResult, h.Invoke(ctx, payload))
			case "disconnect":
				return fmt.Errorf("host disconnected: %v", ev.data)
			}
		}
	}
}

// connect opens the socket and waits for the connect or connect_error
// event.
func connect(ctx context.Context, cfg Config) (*socket.Socket, error) {
	logger := ctxlog.FromContext(ctx).With("url", cfg.URL)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("failed to parse URL: %q needs a scheme and a host", cfg.URL)
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return io, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}
