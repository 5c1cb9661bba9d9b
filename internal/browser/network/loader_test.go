package network

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/lattice/internal/browser/dom"
)

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func brotliBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	_, err := bw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, bw.Close())
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func TestLoadFromFilesInDocumentOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, dir, "css/a.css", []byte(".a { color: red }"))
	writeFile(t, dir, "b.css.gz", gzipBytes(t, ".b { color: blue }"))
	writeFile(t, dir, "c.css.br", brotliBytes(t, ".c { color: green }"))
	page := writeFile(t, dir, "page.html", []byte(`<html><head>
		<link rel="stylesheet" href="css/a.css">
		<style>.inline { width: 1px }</style>
		<link rel="stylesheet" href="missing.css">
		<link rel="stylesheet" href="b.css.gz">
		<link rel="icon" href="favicon.ico">
		<link rel="stylesheet" href="c.css.br">
	</head><body></body></html>`))

	core, logs := observer.New(zapcore.WarnLevel)
	loader := NewLoader(Options{Concurrency: 2}, zap.New(core))

	doc, err := loader.LoadDocument(context.Background(), page)
	require.NoError(t, err)
	sheets, err := loader.Load(context.Background(), doc, page)
	require.NoError(t, err)

	var texts []string
	for _, s := range sheets {
		texts = append(texts, s.Text)
	}
	assert.Equal(t, []string{
		".a { color: red }",
		".inline { width: 1px }",
		".b { color: blue }",
		".c { color: green }",
	}, texts)
	assert.Equal(t, dom.SourceInline, sheets[1].Source.Kind)
	assert.Equal(t, 1, logs.FilterMessage("Skipping stylesheet").Len(), "the missing sheet")
}

func TestFetchOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/plain.css":
			assert.Equal(t, "lattice", r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
			_, _ = w.Write([]byte("p { margin: 0 }"))
		case "/gz.css":
			w.Header().Set("Content-Type", "text/css")
			w.Header().Set("Content-Encoding", "gzip")
			_, _ = w.Write(gzipBytes(t, "q { margin: 1px }"))
		case "/br.css":
			w.Header().Set("Content-Type", "text/css")
			w.Header().Set("Content-Encoding", "br")
			_, _ = w.Write(brotliBytes(t, "r { margin: 2px }"))
		case "/page.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<p>not css</p>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	loader := NewLoader(Options{
		AllowRemote: true,
		Timeout:     5 * time.Second,
		Headers:     map[string]string{"User-Agent": "lattice"},
		Transport:   srv.Client().Transport,
	}, zaptest.NewLogger(t))
	ctx := context.Background()

	text, err := loader.Fetch(ctx, srv.URL+"/plain.css")
	require.NoError(t, err)
	assert.Equal(t, "p { margin: 0 }", text)

	text, err = loader.Fetch(ctx, srv.URL+"/gz.css")
	require.NoError(t, err)
	assert.Equal(t, "q { margin: 1px }", text)

	text, err = loader.Fetch(ctx, srv.URL+"/br.css")
	require.NoError(t, err)
	assert.Equal(t, "r { margin: 2px }", text)

	_, err = loader.Fetch(ctx, srv.URL+"/page.html")
	assert.ErrorIs(t, err, ErrNotStylesheet)

	_, err = loader.Fetch(ctx, srv.URL+"/nope.css")
	assert.Error(t, err)
}

func TestRemoteFetchesArePaced(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/css")
		_, _ = w.Write([]byte("a { color: red }"))
	}))
	defer srv.Close()

	loader := NewLoader(Options{
		AllowRemote: true,
		RateLimit:   0.5,
		Burst:       1,
		Transport:   srv.Client().Transport,
	}, zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := loader.Fetch(ctx, srv.URL+"/a.css")
	require.NoError(t, err, "the burst admits the first request")

	_, err = loader.Fetch(ctx, srv.URL+"/b.css")
	assert.Error(t, err, "the second request must wait two seconds, past the deadline")
	assert.Equal(t, int32(1), hits.Load())
}

func TestRemoteDisabled(t *testing.T) {
	loader := NewLoader(Options{}, zaptest.NewLogger(t))
	_, err := loader.Fetch(context.Background(), "https://example.invalid/a.css")
	assert.ErrorIs(t, err, ErrRemoteDisabled)
}

func TestLoadRespectsCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	doc, err := dom.ParseString(`<html><head><link rel="stylesheet" href="a.css"></head></html>`)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := NewLoader(Options{}, zaptest.NewLogger(t))
	_, err = loader.Load(ctx, doc, filepath.Join(t.TempDir(), "page.html"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"/site/index.html", "style.css", filepath.Join("/site", "style.css")},
		{"/site/index.html", "/abs/x.css", "/abs/x.css"},
		{"file:///site/index.html", "a/b.css", filepath.Join("/site", "a", "b.css")},
		{"https://example.com/dir/page.html", "../s.css", "https://example.com/s.css"},
		{"/site/index.html", "https://cdn.example.com/x.css", "https://cdn.example.com/x.css"},
		{"", "x.css", "x.css"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Resolve(tc.base, tc.href), "%s + %s", tc.base, tc.href)
	}
}
