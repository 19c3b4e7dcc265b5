package graphql

import (
	"context"
	"fmt"
	"net/http"

	"github.com/custodia-labs/ledgerscrape/internal/core/domain"
)

// FetchResource GETs url and returns the decoded JSON body.
func (c *Client) FetchResource(ctx context.Context, url string) (any, error) {
	raw, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	var v any
	if err := decode(raw, &v); err != nil {
		return nil, &domain.ShapeError{Field: "body", Err: fmt.Errorf("%w: %v", domain.ErrUnexpectedShape, err)}
	}
	return v, nil
}
