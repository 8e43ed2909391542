package webfetch

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

	sysErrors "github.com/milkywaygod2/sysutil/internal/errors"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("page body"))
	}))
	defer srv.Close()

	body, err := NewClient(0).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "page body", body)
}

func TestFetchSurfacesHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(0).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, sysErrors.IsType(err, sysErrors.ErrorTypeNetwork))
}

func TestFetchRejectsNonHTTPScheme(t *testing.T) {
	_, err := NewClient(0).Fetch(context.Background(), "file:///etc/passwd")
	assert.Error(t, err)
}

func TestDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("downloaded bytes"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "out.bin")
	require.NoError(t, NewClient(0).DownloadFile(context.Background(), srv.URL, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "downloaded bytes", string(data))
}

func TestFetchJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"requests","version":"2.31.0"}`))
	}))
	defer srv.Close()

	var pkg struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	require.NoError(t, NewClient(0).FetchJSON(context.Background(), srv.URL, &pkg))
	assert.Equal(t, "requests", pkg.Name)
	assert.Equal(t, "2.31.0", pkg.Version)
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var reply struct {
		OK bool `json:"ok"`
	}
	err := NewClient(0).PostJSON(context.Background(), srv.URL,
		map[string]string{"key": "value"}, &reply)
	require.NoError(t, err)
	assert.True(t, reply.OK)
}

func TestCheckURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(2 * time.Second)
	assert.True(t, client.CheckURL(context.Background(), srv.URL))
	assert.False(t, client.CheckURL(context.Background(), srv.URL+"/missing"))
	assert.False(t, client.CheckURL(context.Background(), "http://127.0.0.1:1/unreachable"))
}

func TestParseURL(t *testing.T) {
	parts, err := ParseURL("https://example.com:8443/docs/page?q=go#top")
	require.NoError(t, err)

	assert.Equal(t, "https", parts.Scheme)
	assert.Equal(t, "example.com:8443", parts.Host)
	assert.Equal(t, "/docs/page", parts.Path)
	assert.Equal(t, "q=go", parts.Query)
	assert.Equal(t, "top", parts.Fragment)
}

func TestBuildURL(t *testing.T) {
	built, err := BuildURL("https://example.com/search", map[string]string{"q": "sys util"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/search?q=sys+util", built)

	// Existing query parameters are preserved.
	built, err = BuildURL("https://example.com/search?lang=go", map[string]string{"q": "x"})
	require.NoError(t, err)
	assert.Contains(t, built, "lang=go")
	assert.Contains(t, built, "q=x")
}

func TestExtractLinks(t *testing.T) {
	document := `<html><body>
		<a href="/relative">one</a>
		<a href="https://other.example/abs">two</a>
		<a>no href</a>
	</body></html>`

	t.Run("without base", func(t *testing.T) {
		links, err := ExtractLinks(document, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"/relative", "https://other.example/abs"}, links)
	})

	t.Run("relative links resolved against base", func(t *testing.T) {
		links, err := ExtractLinks(document, "https://example.com/dir/")
		require.NoError(t, err)
		assert.Equal(t, []string{
			"https://example.com/relative",
			"https://other.example/abs",
		}, links)
	})
}

func TestExtractText(t *testing.T) {
	document := `<html><head>
		<style>body { color: red }</style>
		<script>var hidden = true;</script>
	</head><body><h1>Title</h1><p>First   paragraph.</p></body></html>`

	text, err := ExtractText(document)
	require.NoError(t, err)

	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "First   paragraph.")
	assert.NotContains(t, text, "hidden")
	assert.NotContains(t, text, "color")
}
