package frames

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// DefaultPattern is the on-disk naming convention produced by the asset
// preparation step.
const DefaultPattern = "frame_%d.jpg"

// Fetcher opens the encoded bytes of one frame by its 1-based index.
type Fetcher interface {
	Fetch(ctx context.Context, index int) (io.ReadCloser, error)
}

// DirFetcher reads frames from a local directory.
type DirFetcher struct {
	Dir     string
	Pattern string
}

// NewDirFetcher creates a DirFetcher. An empty pattern means DefaultPattern.
func NewDirFetcher(dir, pattern string) *DirFetcher {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &DirFetcher{Dir: dir, Pattern: pattern}
}

// Path returns the file path of frame index.
func (f *DirFetcher) Path(index int) string {
	return filepath.Join(f.Dir, fmt.Sprintf(f.Pattern, index))
}

func (f *DirFetcher) Fetch(ctx context.Context, index int) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path(index))
	if err != nil {
		return nil, fmt.Errorf("open frame %d: %w", index, err)
	}
	return file, nil
}

// HTTPFetcher downloads frames from a URL pattern such as
// "https://cdn.example.com/frames/frame_%d.jpg".
type HTTPFetcher struct {
	Client     *http.Client
	URLPattern string
}

// NewHTTPFetcher creates an HTTPFetcher using http.DefaultClient when client is nil.
func NewHTTPFetcher(client *http.Client, urlPattern string) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{Client: client, URLPattern: urlPattern}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, index int) (io.ReadCloser, error) {
	url := fmt.Sprintf(f.URLPattern, index)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for frame %d: %w", index, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch frame %d: %w", index, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("frame %d: unexpected status %s", index, resp.Status)
	}
	return resp.Body, nil
}
