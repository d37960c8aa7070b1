// Package source retrieves raw cut description text by identifier.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Extension is appended to identifiers that do not already carry it.
const Extension = ".asc"

// maxDescriptionSize bounds how much text one fetch will read.
const maxDescriptionSize = 4 << 20

var (
	ErrNotFound  = errors.New("source: cut description not found")
	ErrInvalidID = errors.New("source: invalid cut identifier")
)

// Fetcher returns the description text for a cut identifier.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (string, error)
}

// FileName maps an identifier to its file name.
func FileName(id string) string {
	if strings.HasSuffix(id, Extension) {
		return id
	}
	return id + Extension
}

// ID strips the description extension from a file name.
func ID(name string) string {
	return strings.TrimSuffix(filepath.Base(name), Extension)
}

func checkID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// DirFetcher reads <Root>/<id>.asc from the local file system.
type DirFetcher struct {
	Root string
}

func (f DirFetcher) Fetch(ctx context.Context, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkID(id); err != nil {
		return "", err
	}
	path := filepath.Join(f.Root, FileName(id))
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return "", fmt.Errorf("source: opening %s: %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxDescriptionSize+1))
	if err != nil {
		return "", fmt.Errorf("source: reading %s: %w", path, err)
	}
	if len(data) > maxDescriptionSize {
		return "", fmt.Errorf("source: %s is larger than %d bytes", path, maxDescriptionSize)
	}
	return string(data), nil
}

// List returns the identifiers of every description in Root, sorted by
// name.
func (f DirFetcher) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(f.Root, "*"+Extension))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, ID(m))
	}
	return ids, nil
}

// HTTPFetcher GETs <BaseURL>/<id>.asc.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPFetcher returns a fetcher with its own client and timeout.
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{BaseURL: baseURL, Client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, id string) (string, error) {
	if err := checkID(id); err != nil {
		return "", err
	}
	u, err := url.JoinPath(f.BaseURL, url.PathEscape(FileName(id)))
	if err != nil {
		return "", fmt.Errorf("source: building url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("source: building request: %w", err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("source: fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrNotFound, u)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("source: fetching %s: %s", u, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDescriptionSize+1))
	if err != nil {
		return "", fmt.Errorf("source: reading %s: %w", u, err)
	}
	if len(data) > maxDescriptionSize {
		return "", fmt.Errorf("source: %s is larger than %d bytes", u, maxDescriptionSize)
	}
	return string(data), nil
}
