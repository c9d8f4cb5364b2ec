// Package monitor follows a running scriptgrid host over socket.io, printing
// its notices and forwarding run commands.
package monitor

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/specialistvlad/scriptgrid/internal/ctxlog"
	"github.com/specialistvlad/scriptgrid/internal/events"
)

const (
	// NoticeEvent is the event the host broadcasts notices as.
	NoticeEvent = "notice"
	// DefaultPath is used when the URL has no path.
	DefaultPath = "/socket.io/"

	connectTimeout = 15 * time.Second
	noticeBuffer   = 256
)

var (
	// ErrConnect is returned when the connection cannot be established.
	ErrConnect = errors.New("socket.io connection failed")
	// ErrUnknownCommand is returned by Send for names the host does not accept.
	ErrUnknownCommand = errors.New("unknown command")
)

// Commands lists the command names the host accepts.
var Commands = []string{"pause", "resume", "toggle", "stop"}

// Options configures Dial.
type Options struct {
	Namespace          string
	InsecureSkipVerify bool
}

// Client is a connected monitor.
type Client struct {
	io      *socket.Socket
	notices chan events.Message
}

// Dial connects to the host at rawURL and waits for the connection.
func Dial(ctx context.Context, rawURL string, o Options) (*Client, error) {
	logger := ctxlog.FromContext(ctx).With("url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("failed to parse URL: '%s' needs a scheme and a host", rawURL)
	}
	path := parsedURL.Path
	if path == "" || path == "/" {
		path = DefaultPath
	}

	opts := socket.DefaultOptions()
	opts.SetPath(path)
	if o.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	namespace := o.Namespace
	if namespace == "" {
		namespace = "/"
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	c := &Client{io: io, notices: make(chan events.Message, noticeBuffer)}
	io.On(types.EventName(NoticeEvent), func(data ...any) {
		if len(data) == 0 {
			return
		}
		msg, err := decodeMessage(data[0])
		if err != nil {
			logger.Debug("Dropping undecodable notice.", "error", err)
			return
		}
		select {
		case c.notices <- msg:
		default:
			logger.Debug("Dropping notice, buffer full.", "type", msg.Type)
		}
	})

	connected := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Connected.", "sid", io.Id())
		connected <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = ErrConnect
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = fmt.Errorf("%w: %w", ErrConnect, e)
			}
		}
		connected <- err
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, err
		}
		return c, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("%w: %w", ErrConnect, ctx.Err())
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("%w: timed out after %s", ErrConnect, connectTimeout)
	}
}

// Notices returns the received notices. Notices that arrive while the
// buffer is full are dropped.
func (c *Client) Notices() <-chan events.Message {
	return c.notices
}

// Send asks the host to apply a run command.
func (c *Client) Send(command string) error {
	for _, known := range Commands {
		if known == command {
			c.io.Emit(command)
			return nil
		}
	}
	return fmt.Errorf("%w: '%s'", ErrUnknownCommand, command)
}

// ID returns the socket id.
func (c *Client) ID() string {
	return string(c.io.Id())
}

// Close disconnects from the host.
func (c *Client) Close() {
	c.io.Disconnect()
}

// decodeMessage converts a decoded JSON payload into a Message.
func decodeMessage(data any) (events.Message, error) {
	var msg events.Message
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: true,
		Result:           &msg,
	})
	if err != nil {
		return msg, err
	}
	if err := decoder.Decode(data); err != nil {
		return msg, fmt.Errorf("failed to decode notice: %w", err)
	}
	return msg, nil
}
