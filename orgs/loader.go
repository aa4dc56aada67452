package orgs

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"
)

// HTTPLoader fetches the table from a URL.
type HTTPLoader struct {
	URL string
	// Client defaults to a client with a 30 second timeout.
	Client *http.Client
}

var defaultClient = &http.Client{Timeout: 30 * time.Second}

func (l HTTPLoader) Load(ctx context.Context) (Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("orgs: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	client := l.Client
	if client == nil {
		client = defaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("orgs: fetching %s: %w", l.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("orgs: fetching %s: unexpected status %s", l.URL, resp.Status)
	}
	return Decode(resp.Body)
}

// FileLoader reads the table from a file.
type FileLoader struct {
	Path string
}

func (l FileLoader) Load(context.Context) (Table, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("orgs: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
