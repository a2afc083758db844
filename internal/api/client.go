// Package api implements the response channels that carry a question to the
// assistant service and its reply back as a sequence of events.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	apierrors "github.com/diogo/askchat/internal/errors"
	"github.com/diogo/askchat/internal/models"
)

// DefaultTimeout bounds a whole request, from dial to the last fragment
const DefaultTimeout = 120 * time.Second

// DefaultSimulateDelay is how long the simulator "thinks" before replying
const DefaultSimulateDelay = time.Second

// Doer sends HTTP requests. tls_client.HttpClient satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// clientConfig holds the settings shared by every transport
type clientConfig struct {
	baseURL    string
	timeout    time.Duration
	log        zerolog.Logger
	httpClient Doer
	dialer     *websocket.Dialer
	delay      time.Duration
	reply      string
	simErr     error
}

// ClientOption is a function that configures a transport
type ClientOption func(*clientConfig)

// WithBaseURL sets the service address, e.g. http://127.0.0.1:8000
func WithBaseURL(baseURL string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = baseURL
	}
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger for request lifecycle events
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *clientConfig) {
		c.log = log
	}
}

// WithHTTPClient replaces the TLS client used for plain HTTP calls
func WithHTTPClient(doer Doer) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = doer
	}
}

// WithDialer replaces the WebSocket dialer
func WithDialer(dialer *websocket.Dialer) ClientOption {
	return func(c *clientConfig) {
		c.dialer = dialer
	}
}

// WithDelay sets the simulator's reply delay
func WithDelay(delay time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.delay = delay
	}
}

// WithReply sets the simulator's canned reply
func WithReply(reply string) ClientOption {
	return func(c *clientConfig) {
		c.reply = reply
	}
}

// WithSimulatedError makes the simulator fail with err instead of replying
func WithSimulatedError(err error) ClientOption {
	return func(c *clientConfig) {
		c.simErr = err
	}
}

func newClientConfig(opts []ClientOption) *clientConfig {
	c := &clientConfig{
		baseURL: models.DefaultBaseURL,
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
		delay:   DefaultSimulateDelay,
		reply:   models.SimulatedReplyText,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewTransport creates the transport for the given mode
func NewTransport(mode models.Mode, opts ...ClientOption) (Transport, error) {
	switch mode {
	case models.ModeStream:
		return NewStreamClient(opts...)
	case models.ModeAsk:
		return NewAskClient(opts...)
	case models.ModeSimulate:
		return NewSimulatedClient(opts...), nil
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

// newHTTPClient creates the TLS client used for the ask and info endpoints
func newHTTPClient(timeout time.Duration) (Doer, error) {
	options := []tls_client.HttpClientOption{
		tls_client.WithClientProfile(profiles.Chrome_120),
	}
	if timeout > 0 {
		options = append(options, tls_client.WithTimeoutSeconds(int(timeout.Seconds())))
	}

	client, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return client, nil
}

// endpointURL joins the base URL and a service path
func endpointURL(baseURL, path string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: missing host", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// streamURL returns the WebSocket address of the stream endpoint
func streamURL(baseURL string) (string, error) {
	raw, err := endpointURL(baseURL, models.PathStream)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(raw, "https://") {
		return "wss://" + strings.TrimPrefix(raw, "https://"), nil
	}
	return "ws://" + strings.TrimPrefix(raw, "http://"), nil
}

// withTimeout derives the context that bounds one request
func (c *clientConfig) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// deadlineError turns an expired request context into a TimeoutError
func (c *clientConfig) deadlineError(reqCtx context.Context, err error) error {
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return apierrors.NewTimeoutError(fmt.Sprintf("no complete reply after %s", c.timeout))
	}
	return err
}
