package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTP fetches the dataset with a GET request.
type HTTP struct {
	client *http.Client
	url    string
}

// NewHTTP returns an HTTP source. A nil client gets a default with a timeout.
func NewHTTP(client *http.Client, url string) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTP{client: client, url: url}
}

// Open issues the request bound to ctx. Non-2xx responses are errors.
func (h *HTTP) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %d from %s", ErrStatus, resp.StatusCode, h.url)
	}

	return resp.Body, nil
}

func (h *HTTP) String() string { return h.url }
