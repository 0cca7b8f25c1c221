// Package loader fetches the raw projects document from the feed endpoint.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/models"
)

var (
	// ErrNetwork reports that the endpoint could not be reached or answered
	// with a non-success status.
	ErrNetwork = errors.New("fetch project data")
	// ErrDecode reports that the response body was not a valid document.
	ErrDecode = errors.New("decode project data")
)

// Fetcher supplies the raw projects document.
type Fetcher interface {
	Fetch(ctx context.Context) (*models.RawDataset, error)
}

// HTTPLoader fetches the document from a single configured URL.
type HTTPLoader struct {
	Endpoint string
	Client   *http.Client
}

// NewHTTP returns an HTTPLoader whose client gives up after timeout.
// A zero timeout means no client-side limit.
func NewHTTP(endpoint string, timeout time.Duration) *HTTPLoader {
	return &HTTPLoader{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
	}
}

// Fetch performs one GET and decodes the body. Failures wrap ErrNetwork or
// ErrDecode; nothing is retried.
func (l *HTTPLoader) Fetch(ctx context.Context) (*models.RawDataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s returned %s", ErrNetwork, l.Endpoint, resp.Status)
	}

	var ds models.RawDataset
	if err := json.NewDecoder(resp.Body).Decode(&ds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &ds, nil
}
