package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/covid-saarani/lipik/internal/domain/tabular"
	"github.com/covid-saarani/lipik/pkg/metrics"
)

const defaultTimeout = 30 * time.Second

// HTTPFetcher fetches documents over HTTP from configured endpoints.
type HTTPFetcher struct {
	client    *http.Client
	endpoints map[Key]string
	userAgent string
}

// NewHTTP constructs an HTTPFetcher over the given key to URL mapping.
func NewHTTP(endpoints map[Key]string, opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{Timeout: defaultTimeout},
		endpoints: endpoints,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// JSON fetches a raw JSON payload.
func (f *HTTPFetcher) JSON(ctx context.Context, key Key) ([]byte, error) {
	return f.get(ctx, key)
}

// Table fetches a pre-extracted tabular document, delivered as a
// JSON-encoded cell grid.
func (f *HTTPFetcher) Table(ctx context.Context, key Key) (tabular.RawTable, error) {
	data, err := f.get(ctx, key)
	if err != nil {
		return nil, err
	}
	var table tabular.RawTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("%w: %s: decoding cell grid: %v", ErrTransport, key, err)
	}
	return table, nil
}

func (f *HTTPFetcher) get(ctx context.Context, key Key) ([]byte, error) {
	body, err := f.doGet(ctx, key)
	if err != nil {
		metrics.RecordFetchError(string(key))
		return nil, err
	}
	metrics.RecordDocumentFetched(string(key))
	return body, nil
}

func (f *HTTPFetcher) doGet(ctx context.Context, key Key) ([]byte, error) {
	url, ok := f.endpoints[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTransport, key, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTransport, key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: unexpected status %d", ErrTransport, key, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading body: %v", ErrTransport, key, err)
	}
	return body, nil
}
