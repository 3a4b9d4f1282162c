// Package openaip downloads OpenAIP airport dumps from their public
// Google Cloud Storage bucket via the anonymous JSON API.
package openaip

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/worldhelipads/helipad-cli/internal/fetcher"
)

// Client lists and downloads OpenAIP bucket objects.
type Client interface {
	// ListObjects returns the names of bucket objects ending with suffix.
	ListObjects(ctx context.Context, suffix string) ([]string, error)

	// DownloadObject writes a bucket object to the given local path.
	DownloadObject(ctx context.Context, name, destPath string) error
}

// GCSClient is the production client against the GCS JSON API.
type GCSClient struct {
	fetch   fetcher.Fetcher
	baseURL string
	bucket  string
}

// NewClient creates a client for the given bucket. baseURL is normally
// https://storage.googleapis.com and overridable for tests.
func NewClient(fetch fetcher.Fetcher, baseURL, bucket string) *GCSClient {
	return &GCSClient{fetch: fetch, baseURL: strings.TrimRight(baseURL, "/"), bucket: bucket}
}

// ListObjects returns the names of bucket objects ending with suffix.
// The listing is paginated; all pages are consumed.
func (c *GCSClient) ListObjects(ctx context.Context, suffix string) ([]string, error) {
	var names []string
	pageToken := ""

	for {
		listURL := fmt.Sprintf("%s/storage/v1/b/%s/o", c.baseURL, url.PathEscape(c.bucket))
		if pageToken != "" {
			listURL += "?pageToken=" + url.QueryEscape(pageToken)
		}

		body, err := c.fetch.Download(ctx, listURL)
		if err != nil {
			return nil, eris.Wrap(err, "openaip: list objects")
		}

		page, err := fetcher.DecodeJSONObject[listResponse](body)
		_ = body.Close()
		if err != nil {
			return nil, eris.Wrap(err, "openaip: decode listing")
		}

		for _, obj := range page.Items {
			if suffix == "" || strings.HasSuffix(obj.Name, suffix) {
				names = append(names, obj.Name)
			}
		}

		if page.NextPageToken == "" {
			return names, nil
		}
		pageToken = page.NextPageToken
	}
}

// DownloadObject writes a bucket object to the given local path.
func (c *GCSClient) DownloadObject(ctx context.Context, name, destPath string) error {
	mediaURL := fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media",
		c.baseURL, url.PathEscape(c.bucket), url.PathEscape(name))

	if _, err := c.fetch.DownloadToFile(ctx, mediaURL, destPath); err != nil {
		return eris.Wrapf(err, "openaip: download object %s", name)
	}
	return nil
}
