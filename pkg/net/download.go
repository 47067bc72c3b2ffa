package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
)

// ErrURLNotFound is returned when the server answers 404.
var ErrURLNotFound = errors.New("URL not found")

// Download fetches a URL to a local file. A non-empty token is sent as
// a bearer credential. Single attempt, no retries.
func Download(ctx context.Context, url, path, token string) (retErr error) {
	var (
		client *http.Client
		err    error
	)
	if token != "" {
		client = GetOAuthClient(ctx, token)
	} else {
		client, err = GetHTTPClient()
		if err != nil {
			return fmt.Errorf("creating HTTP client: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrURLNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading %s (status: %d - %s)", url, resp.StatusCode, resp.Status)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("closing file: %w", cerr)
		}
	}()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("saving downloaded content: %w", err)
	}

	return nil
}
