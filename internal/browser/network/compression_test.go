package network

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(body []byte, encodings ...string) *http.Response {
	resp := &http.Response{
		Header:        http.Header{},
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
	}
	for _, e := range encodings {
		resp.Header.Add("Content-Encoding", e)
	}
	resp.Header.Set("Content-Length", "1")
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return string(data)
}

func TestDecompressDeflateVariants(t *testing.T) {
	var zbuf bytes.Buffer
	zw := zlib.NewWriter(&zbuf)
	_, _ = zw.Write([]byte("zlib body"))
	require.NoError(t, zw.Close())

	var fbuf bytes.Buffer
	fw, err := flate.NewWriter(&fbuf, flate.DefaultCompression)
	require.NoError(t, err)
	_, _ = fw.Write([]byte("raw body"))
	require.NoError(t, fw.Close())

	resp := response(zbuf.Bytes(), "deflate")
	require.NoError(t, DecompressResponse(resp))
	assert.Equal(t, "zlib body", readBody(t, resp))

	resp = response(fbuf.Bytes(), "deflate")
	require.NoError(t, DecompressResponse(resp))
	assert.Equal(t, "raw body", readBody(t, resp))
	assert.True(t, resp.Uncompressed)
	assert.Empty(t, resp.Header.Get("Content-Encoding"))
	assert.Empty(t, resp.Header.Get("Content-Length"))
	assert.Equal(t, int64(-1), resp.ContentLength)
}

func TestDecompressLayered(t *testing.T) {
	inner := brotliBytes(t, "layered")
	outer := gzipBytes(t, string(inner))

	resp := response(outer, "br", "gzip")
	require.NoError(t, DecompressResponse(resp))
	assert.Equal(t, "layered", readBody(t, resp))

	resp = response(outer, "br, gzip")
	require.NoError(t, DecompressResponse(resp))
	assert.Equal(t, "layered", readBody(t, resp), "comma separated list")
}

func TestDecompressRejectsUnknown(t *testing.T) {
	resp := response([]byte("x"), "zstd")
	assert.Error(t, DecompressResponse(resp))

	resp = response([]byte("not gzip"), "gzip")
	assert.Error(t, DecompressResponse(resp))

	resp = response([]byte("plain"), "identity")
	require.NoError(t, DecompressResponse(resp))
	assert.Equal(t, "plain", readBody(t, resp))
}

func TestEncodingForPath(t *testing.T) {
	assert.Equal(t, "gzip", encodingForPath("a/site.css.GZ"))
	assert.Equal(t, "br", encodingForPath("x.br"))
	assert.Equal(t, "", encodingForPath("plain.css"))
}
