package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	aierrors "github.com/quorumkit/quorum/pkg/modelkit/errors"
)

// RequestDetails holds the details for an HTTP request
type RequestDetails struct {
	URL               string
	APIKey            string
	RequestBody       interface{}
	AdditionalHeaders map[string]string
}

// ClientOptions holds options for customizing the HTTP client
type ClientOptions struct {
	Timeout time.Duration
}

var (
	httpClient *http.Client
	clientOnce sync.Once
)

func initClient() {
	httpClient = &http.Client{
		Timeout: 90 * time.Second,
	}
}

func drainAndCloseBody(body io.ReadCloser) error {
	_, err := io.Copy(io.Discard, body)
	if err != nil {
		return fmt.Errorf("error draining body: %w", err)
	}
	if err := body.Close(); err != nil {
		return fmt.Errorf("error closing body: %w", err)
	}
	return nil
}

func createRequest(ctx context.Context, details RequestDetails) (*http.Request, error) {
	jsonBody, err := json.Marshal(details.RequestBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", details.URL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request for URL %s: %w", details.URL, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if details.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+details.APIKey)
	}

	for key, value := range details.AdditionalHeaders {
		req.Header.Set(key, value)
	}

	return req, nil
}

// classifyStatus maps an HTTP status code to a domain error sentinel.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return aierrors.ErrAuthentication
	case status == http.StatusTooManyRequests:
		return aierrors.ErrRateLimit
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return aierrors.ErrTimeout
	case status >= 500:
		return aierrors.ErrNetwork
	default:
		return aierrors.ErrMalformedResponse
	}
}

// SendRequest performs a single POST and returns the response body.
// It never retries; callers own the retry policy. Failures are classified
// into the modelkit error taxonomy so they can be reported per category.
func SendRequest(ctx context.Context, details RequestDetails, options ClientOptions) ([]byte, error) {
	req, err := createRequest(ctx, details)
	if err != nil {
		return nil, err
	}

	clientOnce.Do(initClient)

	reqCtx := req.Context()
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(reqCtx, options.Timeout)
		defer cancel()
		req = req.WithContext(reqCtx)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("request to %s: %w", req.URL, aierrors.ErrTimeout)
		}
		return nil, fmt.Errorf("request to %s: %v: %w", req.URL, err, aierrors.ErrNetwork)
	}

	defer func() {
		if err := drainAndCloseBody(resp.Body); err != nil {
			log.Printf("Error closing response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response from %s: %v: %w", req.URL, err, aierrors.ErrNetwork)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s failed with status %d: %s: %w",
			req.URL, resp.StatusCode, truncate(string(body), 200), classifyStatus(resp.StatusCode))
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
