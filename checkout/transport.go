package checkout

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Transport sends a JSON body to url and returns the status and body text.
// Any failure before a status is observed is a *NetworkError.
type Transport interface {
	Post(ctx context.Context, url string, body []byte) (int, string, error)
}

// HTTPTransport posts JSON over HTTPS with the processor's API key header.
type HTTPTransport struct {
	client *http.Client
	apiKey string
}

func NewHTTPTransport(apiKey string, hc *http.Client) *HTTPTransport {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPTransport{client: hc, apiKey: apiKey}
}

func (t *HTTPTransport) Post(ctx context.Context, target string, body []byte) (int, string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return 0, "", &NetworkError{URL: target, Err: fmt.Errorf("parsing url: %w", err)}
	}
	if u.Scheme != "https" {
		return 0, "", &NetworkError{URL: target, Err: errors.New("only https urls are allowed")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return 0, "", &NetworkError{URL: target, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-API-key", t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, "", &NetworkError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", &NetworkError{URL: target, Err: fmt.Errorf("reading response body: %w", err)}
	}
	return resp.StatusCode, string(text), nil
}
