package triagem

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/odq/triagem/internal/utils"
)

type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health checks the API health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.getJSON(ctx, healthPath, &h); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}
	return &h, nil
}

// Probe calls Health up to attempts times, waiting backoff between tries.
func (c *Client) Probe(ctx context.Context, attempts int, backoff time.Duration) (*Health, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			if err := utils.WaitFor(ctx, backoff); err != nil {
				return nil, err
			}
		}

		h, err := c.Health(ctx)
		if err == nil {
			return h, nil
		}

		lastErr = err
		c.logger.Debug("api probe failed",
			zap.Int("attempt", i+1),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
	}

	return nil, lastErr
}
