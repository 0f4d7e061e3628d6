package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	domainerrors "warden/contexts/moderation-safety/moderation-pipeline/domain/errors"
)

const maxResponseBytes = 1 << 20

// poster sends one JSON POST with bounded exponential retries. Network
// failures, 429 and 5xx are retried; other statuses fail at once.
type poster struct {
	client     *http.Client
	maxRetries uint64
	baseDelay  time.Duration
}

func newPoster(client *http.Client, maxRetries uint64, baseDelay time.Duration) poster {
	if client == nil {
		client = &http.Client{}
	}
	if baseDelay <= 0 {
		baseDelay = 200 * time.Millisecond
	}
	return poster{client: client, maxRetries: maxRetries, baseDelay: baseDelay}
}

func (p poster) postJSON(ctx context.Context, endpoint string, apiKey string, payload []byte) ([]byte, error) {
	var body []byte
	backoff := retry.WithMaxRetries(p.maxRetries, retry.NewExponential(p.baseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("%w: %v", domainerrors.ErrClassifierUnavailable, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if key := strings.TrimSpace(apiKey); key != "" {
			req.Header.Set("Authorization", "Bearer "+key)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			wrapped := fmt.Errorf("%w: %v", domainerrors.ErrClassifierUnavailable, err)
			if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
				return wrapped
			}
			return retry.RetryableError(wrapped)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: read body: %v", domainerrors.ErrClassifierUnavailable, err))
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("%w: status %d", domainerrors.ErrClassifierUnavailable, resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("%w: status %d", domainerrors.ErrClassifierUnavailable, resp.StatusCode)
		}
		body = data
		return nil
	})
	if err != nil {
		if !errors.Is(err, domainerrors.ErrClassifierUnavailable) {
			err = fmt.Errorf("%w: %v", domainerrors.ErrClassifierUnavailable, err)
		}
		return nil, err
	}
	return body, nil
}
