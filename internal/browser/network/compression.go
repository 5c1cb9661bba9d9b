// internal/browser/network/compression.go
package network

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
)

// Pools for decompression readers; both are Reset before use.
var (
	gzipReaderPool = sync.Pool{
		New: func() interface{} { return new(gzip.Reader) },
	}
	brotliReaderPool = sync.Pool{
		New: func() interface{} { return brotli.NewReader(nil) },
	}
)

var emptyReader = strings.NewReader("")

// newDecoder opens one decoding layer over r. release, when non-nil, hands
// pooled readers back and must run once the layer is closed. A nil reader
// with a nil error means the encoding is the identity.
func newDecoder(encoding string, r io.Reader) (io.ReadCloser, func(), error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip", "x-gzip":
		zr := gzipReaderPool.Get().(*gzip.Reader)
		if err := zr.Reset(r); err != nil {
			gzipReaderPool.Put(zr)
			return nil, nil, fmt.Errorf("gzip initialization error: %w", err)
		}
		return zr, func() {
			_ = zr.Reset(emptyReader)
			gzipReaderPool.Put(zr)
		}, nil

	case "br":
		br := brotliReaderPool.Get().(*brotli.Reader)
		if err := br.Reset(r); err != nil {
			brotliReaderPool.Put(br)
			return nil, nil, fmt.Errorf("brotli initialization error: %w", err)
		}
		return io.NopCloser(br), func() {
			_ = br.Reset(emptyReader)
			brotliReaderPool.Put(br)
		}, nil

	case "deflate":
		rc, err := newDeflateReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("deflate initialization error: %w", err)
		}
		return rc, nil, nil

	case "identity", "":
		return nil, nil, nil
	}
	return nil, nil, fmt.Errorf("unsupported content encoding: %s", encoding)
}

// newDeflateReader accepts both zlib-wrapped and raw deflate streams by
// peeking at the two-byte zlib header.
func newDeflateReader(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(2)
	if err == nil && head[0]&0x0f == 8 && (uint16(head[0])<<8|uint16(head[1]))%31 == 0 {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}

// decodedBody closes the decoding layer and the stream under it.
type decodedBody struct {
	io.ReadCloser
	source  io.ReadCloser
	release func()
}

func (b *decodedBody) Close() error {
	err1 := b.ReadCloser.Close()
	if b.release != nil {
		b.release()
		b.release = nil
	}
	err2 := b.source.Close()
	return errors.Join(err1, err2)
}

// decode wraps body with every listed encoding, undoing them last-applied
// first.
func decode(body io.ReadCloser, encodings []string) (io.ReadCloser, error) {
	var layers []string
	for _, header := range encodings {
		layers = append(layers, strings.Split(header, ",")...)
	}
	for i := len(layers) - 1; i >= 0; i-- {
		rc, release, err := newDecoder(layers[i], body)
		if err != nil {
			return body, err
		}
		if rc == nil {
			continue
		}
		body = &decodedBody{ReadCloser: rc, source: body, release: release}
	}
	return body, nil
}

// DecompressResponse replaces resp.Body with a decoded stream according to
// Content-Encoding and clears the headers that no longer apply. On error the
// body may be partially consumed and should be discarded.
func DecompressResponse(resp *http.Response) error {
	if resp == nil || resp.Body == nil {
		return nil
	}
	encodings := resp.Header.Values("Content-Encoding")
	if len(encodings) == 0 {
		return nil
	}
	body, err := decode(resp.Body, encodings)
	resp.Body = body
	if err != nil {
		return err
	}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return nil
}

// encodingForPath infers a content encoding from a file suffix.
func encodingForPath(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".gz", ".gzip":
		return "gzip"
	case ".br":
		return "br"
	}
	return ""
}

// CompressionMiddleware is an http.RoundTripper that advertises gzip,
// deflate and brotli and transparently decodes whichever the server picks.
type CompressionMiddleware struct {
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// NewCompressionMiddleware wraps transport.
func NewCompressionMiddleware(transport http.RoundTripper) *CompressionMiddleware {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &CompressionMiddleware{Transport: transport}
}

// RoundTrip implements http.RoundTripper.
func (cm *CompressionMiddleware) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", "br, gzip, deflate")
	}
	resp, err := cm.Transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if err := DecompressResponse(resp); err != nil {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("failed to initialize response decompression: %w", err)
	}
	return resp, nil
}
