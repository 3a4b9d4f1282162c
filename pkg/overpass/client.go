// Package overpass queries the Overpass API for OSM features.
package overpass

import (
	"context"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/worldhelipads/helipad-cli/internal/fetcher"
)

// Client queries the Overpass interpreter.
type Client interface {
	// Query executes a full Overpass QL query and returns the decoded response.
	Query(ctx context.Context, query string) (*Response, error)

	// QueryBBox expands a query template for the bbox and executes it.
	QueryBBox(ctx context.Context, template string, bbox BBox) (*Response, error)
}

// HTTPClient is the production Overpass client.
type HTTPClient struct {
	fetch fetcher.Fetcher
	url   string
}

// NewClient creates an Overpass client against the given interpreter URL.
func NewClient(fetch fetcher.Fetcher, interpreterURL string) *HTTPClient {
	return &HTTPClient{fetch: fetch, url: interpreterURL}
}

// Query executes a full Overpass QL query and returns the decoded response.
func (c *HTTPClient) Query(ctx context.Context, query string) (*Response, error) {
	form := url.Values{"data": {query}}
	body, err := c.fetch.PostForm(ctx, c.url, form)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: query")
	}
	defer body.Close() //nolint:errcheck

	resp, err := fetcher.DecodeJSONObject[Response](body)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: decode response")
	}
	return resp, nil
}

// QueryBBox expands a query template for the bbox and executes it.
func (c *HTTPClient) QueryBBox(ctx context.Context, template string, bbox BBox) (*Response, error) {
	return c.Query(ctx, ExpandQuery(template, bbox))
}
