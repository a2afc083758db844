package api

import (
	"context"
	"time"
)

// SimulatedClient answers every question locally with a canned reply after
// a short delay. It needs no service and is used for offline demos.
type SimulatedClient struct {
	cfg *clientConfig
}

// NewSimulatedClient creates a SimulatedClient
func NewSimulatedClient(opts ...ClientOption) *SimulatedClient {
	return &SimulatedClient{cfg: newClientConfig(opts)}
}

// Open implements Transport
func (c *SimulatedClient) Open(ctx context.Context, question string) <-chan Event {
	out := make(chan Event, eventBuffer)

	go func() {
		defer close(out)

		em := newEmitter(ctx, out, c.cfg.log.With().Str("endpoint", "simulated").Logger())
		em.connecting()
		if !em.open() {
			return
		}

		timer := time.NewTimer(c.cfg.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if c.cfg.simErr != nil {
			em.fail(c.cfg.simErr)
			return
		}
		if !em.fragment(c.cfg.reply) {
			return
		}
		em.close()
	}()

	return out
}
