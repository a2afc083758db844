package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	http "github.com/bogdanfinn/fhttp"

	apierrors "github.com/diogo/askchat/internal/errors"
	"github.com/diogo/askchat/internal/models"
)

// maxBodySize caps how much of a reply body is read
const maxBodySize = 4 << 20

// AskClient talks to the non-streaming ask endpoint. The whole answer
// arrives in one reply and is delivered as a single fragment.
type AskClient struct {
	cfg     *clientConfig
	askURL  string
	infoURL string
}

// NewAskClient creates an AskClient. Without WithHTTPClient a TLS client
// with a browser profile is created.
func NewAskClient(opts ...ClientOption) (*AskClient, error) {
	cfg := newClientConfig(opts)

	askURL, err := endpointURL(cfg.baseURL, models.PathAsk)
	if err != nil {
		return nil, err
	}
	infoURL, err := endpointURL(cfg.baseURL, models.PathInfo)
	if err != nil {
		return nil, err
	}

	if cfg.httpClient == nil {
		cfg.httpClient, err = newHTTPClient(cfg.timeout)
		if err != nil {
			return nil, err
		}
	}

	return &AskClient{cfg: cfg, askURL: askURL, infoURL: infoURL}, nil
}

// Open implements Transport
func (c *AskClient) Open(ctx context.Context, question string) <-chan Event {
	out := make(chan Event, eventBuffer)

	go func() {
		defer close(out)

		em := newEmitter(ctx, out, c.cfg.log.With().Str("endpoint", c.askURL).Logger())
		em.connecting()

		answer, err := c.Ask(ctx, question)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			em.fail(err)
			return
		}

		if !em.open() {
			return
		}
		if answer != "" && !em.fragment(answer) {
			return
		}
		em.close()
	}()

	return out
}

// Ask sends the question and returns the complete answer
func (c *AskClient) Ask(ctx context.Context, question string) (string, error) {
	payload, err := json.Marshal(models.AskRequest{Question: question})
	if err != nil {
		return "", fmt.Errorf("failed to encode question: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, c.askURL, payload)
	if err != nil {
		return "", err
	}
	return models.ParseAnswer(body)
}

// Info fetches the service banner from the root endpoint
func (c *AskClient) Info(ctx context.Context) (*models.ServiceInfo, error) {
	body, err := c.do(ctx, http.MethodGet, c.infoURL, nil)
	if err != nil {
		return nil, err
	}
	return models.ParseServiceInfo(body)
}

func (c *AskClient) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	reqCtx, cancel := c.cfg.withTimeout(ctx)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.cfg.log.Debug().Str("method", method).Str("endpoint", endpoint).Msg("sending request")

	resp, err := c.cfg.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, c.cfg.deadlineError(reqCtx, apierrors.NewNetworkError(method, endpoint, err))
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.cfg.deadlineError(reqCtx, apierrors.NewNetworkError("read reply", endpoint, err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apierrors.NewAPIError(
			resp.StatusCode,
			endpoint,
			fmt.Sprintf("unexpected status: %d", resp.StatusCode),
		).WithBody(string(body))
	}

	return body, nil
}
