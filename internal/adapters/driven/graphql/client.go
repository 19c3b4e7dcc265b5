package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
	"github.com/custodia-labs/ledgerscrape/internal/core/ports/driven"
	"github.com/custodia-labs/ledgerscrape/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the client to indexers.
	DefaultUserAgent = "ledgerscrape"

	// maxErrorBody bounds how much of a failed response is logged.
	maxErrorBody = 512
)

// Ensure Client implements the fetcher ports.
var (
	_ driven.PageFetcher     = (*Client)(nil)
	_ driven.ResourceFetcher = (*Client)(nil)
)

// Options configures a Client.
type Options struct {
	// RequestsPerSecond caps the request rate. Zero disables pacing.
	RequestsPerSecond float64

	// Timeout bounds every request. Zero uses DefaultTimeout.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// HTTPClient overrides the underlying client (tests).
	HTTPClient *http.Client
}

// Client talks to GraphQL endpoints and plain JSON APIs.
type Client struct {
	http      *http.Client
	limiter   *RateLimiter
	userAgent string
}

// NewClient creates a client.
func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Client{
		http:      hc,
		limiter:   NewRateLimiter(opts.RequestsPerSecond),
		userAgent: ua,
	}
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type response struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchPage requests one page of req.Source after req.Cursor.
func (c *Client) FetchPage(ctx context.Context, req driven.PageRequest) ([]domain.RawRecord, error) {
	if req.Source == nil {
		return nil, fmt.Errorf("%w: page request without source", domain.ErrInvalidInput)
	}
	src := req.Source

	vars := make(map[string]any, len(src.Variables)+2)
	for k, v := range src.Variables {
		vars[k] = v
	}
	vars["cursor"] = int64(req.Cursor)
	vars["pageSize"] = req.PageSize

	body, err := json.Marshal(request{Query: src.Query, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, src.Endpoint, body)
	if err != nil {
		return nil, err
	}

	var resp response
	if err := decode(raw, &resp); err != nil {
		return nil, &domain.ShapeError{Field: "data", Err: fmt.Errorf("%w: %v", domain.ErrUnexpectedShape, err)}
	}
	if len(resp.Errors) > 0 && resp.Data == nil {
		return nil, &domain.ShapeError{
			Field: "data",
			Err:   fmt.Errorf("%w: graphql error: %s", domain.ErrUnexpectedShape, resp.Errors[0].Message),
		}
	}

	items, ok := resp.Data[src.Collection]
	if !ok || bytes.Equal(bytes.TrimSpace(items), []byte("null")) {
		return nil, &domain.ShapeError{
			Field: src.Collection,
			Err:   fmt.Errorf("%w: data has no %q", domain.ErrUnexpectedShape, src.Collection),
		}
	}

	var records []domain.RawRecord
	if err := decode(items, &records); err != nil {
		return nil, &domain.ShapeError{
			Field: src.Collection,
			Err:   fmt.Errorf("%w: %v", domain.ErrUnexpectedShape, err),
		}
	}
	for i, r := range records {
		if r == nil {
			return nil, &domain.ShapeError{
				Field: src.Collection,
				Err:   fmt.Errorf("%w: record %d is null", domain.ErrUnexpectedShape, i),
			}
		}
	}
	return records, nil
}

// do sends one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	if err := domain.ValidateEndpoint(url); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrInvalidInput, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &domain.TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	c.limiter.Observe(resp)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	logger.Debug("http request", "method", method, "url", url,
		"status", resp.StatusCode, "bytes", len(data), "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := data
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		logger.Debug("http error body", "url", url, "body", string(snippet))
		return nil, &domain.TransportError{URL: url, StatusCode: resp.StatusCode}
	}
	return data, nil
}

// decode unmarshals keeping numbers as json.Number so large integers survive.
func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
