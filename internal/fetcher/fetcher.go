package fetcher

import (
	"context"
	"io"
	"net/url"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL with GET and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)

	// PostForm sends a form-encoded POST and returns the response body.
	PostForm(ctx context.Context, url string, form url.Values) (io.ReadCloser, error)
}
