package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "pc01006.asc", FileName("pc01006"))
	assert.Equal(t, "pc01006.asc", FileName("pc01006.asc"))
	assert.Equal(t, "pc01006", ID("/gems/pc01006.asc"))
}

func TestDirFetcher(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "round.asc"), []byte("g 64\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "oval.asc"), []byte("g 96\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	f := DirFetcher{Root: root}
	ctx := context.Background()

	text, err := f.Fetch(ctx, "round")
	require.NoError(t, err)
	assert.Equal(t, "g 64\n", text)

	text, err = f.Fetch(ctx, "round.asc")
	require.NoError(t, err)
	assert.Equal(t, "g 64\n", text)

	_, err = f.Fetch(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	ids, err := f.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"oval", "round"}, ids)
}

func TestDirFetcherRejectsTraversal(t *testing.T) {
	f := DirFetcher{Root: t.TempDir()}
	for _, id := range []string{"", "..", "../etc/passwd", "a/b", `a\b`, "x..y"} {
		_, err := f.Fetch(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidID, "id %q", id)
	}
}

func TestDirFetcherCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := DirFetcher{Root: t.TempDir()}.Fetch(ctx, "round")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gem_cads/round.asc":
			w.Write([]byte("H PC01006 Round Brilliant\n"))
		case "/gem_cads/with space.asc":
			w.Write([]byte("ok"))
		case "/gem_cads/broken.asc":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL+"/gem_cads", 5*time.Second)
	ctx := context.Background()

	text, err := f.Fetch(ctx, "round")
	require.NoError(t, err)
	assert.Equal(t, "H PC01006 Round Brilliant\n", text)

	text, err = f.Fetch(ctx, "with space")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)

	_, err = f.Fetch(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.Fetch(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "500")

	_, err = f.Fetch(ctx, "../secret")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestHTTPFetcherHonorsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := (&HTTPFetcher{BaseURL: srv.URL}).Fetch(ctx, "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
