package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/marketsync/backend/internal/domain/integration"
)

// maxResponseSize is the maximum allowed response size from a marketplace API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// classifyStatus maps an HTTP status code to the engine's sentinel errors
func classifyStatus(code int) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return integration.ErrRemoteAuthFailed
	case code == http.StatusTooManyRequests:
		return integration.ErrRemoteRateLimited
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return integration.ErrRemoteTimeout
	case code >= 500:
		return integration.ErrRemoteUnavailable
	case code >= 400:
		return integration.ErrRemoteRejected
	default:
		return nil
	}
}

// classifyTransport maps a transport-level failure to a sentinel error
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", integration.ErrRemoteTimeout, err)
	}
	return fmt.Errorf("%w: %v", integration.ErrRemoteUnavailable, err)
}

// doJSON sends a request with an optional JSON body and decodes the
// JSON response into out (when non-nil). The raw body is returned for
// response snapshots. HTTP and transport failures come back already
// classified into the sentinel taxonomy.
func doJSON(ctx context.Context, client *http.Client, method, url string, headers map[string]string, body, out interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marketplace: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("marketplace: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", integration.ErrRemoteTimeout, err)
		}
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("marketplace: failed to read response: %w", err)
	}

	if statusErr := classifyStatus(resp.StatusCode); statusErr != nil {
		return raw, fmt.Errorf("%w: HTTP %d: %s", statusErr, resp.StatusCode, truncate(raw, 256))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return raw, fmt.Errorf("%w: %v", integration.ErrConversionFailed, err)
		}
	}
	return raw, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
