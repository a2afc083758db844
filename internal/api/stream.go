package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	apierrors "github.com/diogo/askchat/internal/errors"
	"github.com/diogo/askchat/internal/models"
)

// errStreamEnd marks a stream the server closed normally
var errStreamEnd = errors.New("stream ended")

// StreamClient talks to the streaming endpoint over a WebSocket. Each text
// frame the server sends is one fragment of the answer.
type StreamClient struct {
	cfg *clientConfig
	url string
}

// NewStreamClient creates a StreamClient
func NewStreamClient(opts ...ClientOption) (*StreamClient, error) {
	cfg := newClientConfig(opts)

	wsURL, err := streamURL(cfg.baseURL)
	if err != nil {
		return nil, err
	}
	if cfg.dialer == nil {
		dialer := *websocket.DefaultDialer
		cfg.dialer = &dialer
	}

	return &StreamClient{cfg: cfg, url: wsURL}, nil
}

// URL returns the WebSocket address the client dials
func (c *StreamClient) URL() string {
	return c.url
}

// Open implements Transport
func (c *StreamClient) Open(ctx context.Context, question string) <-chan Event {
	out := make(chan Event, eventBuffer)

	go func() {
		defer close(out)

		em := newEmitter(ctx, out, c.cfg.log.With().Str("endpoint", c.url).Logger())
		err := c.run(ctx, question, em)
		switch {
		case ctx.Err() != nil:
			// the caller walked away; nobody is listening for a terminal event
		case err == nil:
			em.close()
		default:
			em.fail(err)
		}
	}()

	return out
}

func (c *StreamClient) run(ctx context.Context, question string, em *emitter) error {
	reqCtx, cancel := c.cfg.withTimeout(ctx)
	defer cancel()

	em.connecting()
	conn, resp, err := c.cfg.dialer.DialContext(reqCtx, c.url, nil)
	if err != nil {
		if resp != nil && resp.StatusCode != 0 {
			return apierrors.NewAPIError(resp.StatusCode, c.url, "websocket handshake failed")
		}
		return c.cfg.deadlineError(reqCtx, apierrors.NewNetworkError("dial", c.url, err))
	}
	defer func() { _ = conn.Close() }()

	if !em.open() {
		return ctx.Err()
	}

	if err := conn.WriteJSON(models.AskRequest{Question: question}); err != nil {
		return c.cfg.deadlineError(reqCtx, apierrors.NewNetworkError("send question", c.url, err))
	}

	g, gctx := errgroup.WithContext(reqCtx)
	g.Go(func() error {
		return c.read(gctx, conn, em)
	})
	g.Go(func() error {
		// unblocks ReadMessage when the request is cancelled or times out
		<-gctx.Done()
		_ = conn.Close()
		return nil
	})

	err = g.Wait()
	if errors.Is(err, errStreamEnd) {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return c.cfg.deadlineError(reqCtx, err)
}

// read forwards frames as fragments until the server closes the stream
func (c *StreamClient) read(ctx context.Context, conn *websocket.Conn, em *emitter) error {
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				return errStreamEnd
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return apierrors.NewNetworkError("read", c.url, err)
		}

		if kind != websocket.TextMessage {
			return apierrors.NewParseError(fmt.Sprintf("unexpected frame type %d", kind), "")
		}

		// the service reports a failure at any point of the reply this way
		text := string(data)
		if strings.HasPrefix(text, models.ServerErrorPrefix) {
			return apierrors.NewServerError(strings.TrimPrefix(text, models.ServerErrorPrefix))
		}

		if !em.fragment(text) {
			return ctx.Err()
		}
	}
}
