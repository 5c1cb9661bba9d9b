// internal/browser/network/loader.go
package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/lattice/internal/browser/dom"
)

var (
	// ErrNotStylesheet is returned when a linked resource is served with a
	// media type that cannot hold CSS.
	ErrNotStylesheet = errors.New("network: resource is not a stylesheet")
	// ErrRemoteDisabled is returned for http(s) references when remote
	// loading is off.
	ErrRemoteDisabled = errors.New("network: remote loading is disabled")
)

const (
	maxResourceSize    = 8 << 20
	defaultConcurrency = 4
)

// Options configures a Loader.
type Options struct {
	Timeout     time.Duration
	Concurrency int
	AllowRemote bool
	Headers     map[string]string
	// RateLimit caps remote requests per second; zero leaves them unpaced.
	RateLimit float64
	// Burst is the number of remote requests allowed at once under RateLimit.
	Burst int
	// Transport replaces the default HTTP transport.
	Transport http.RoundTripper
}

// Sheet is the text of one style source, ready to parse.
type Sheet struct {
	Name   string
	Text   string
	Source dom.StyleSource
}

// Loader reads documents and their stylesheets from disk or, when allowed,
// over HTTP.
type Loader struct {
	client  *http.Client
	limiter *rate.Limiter
	opts    Options
	logger  *zap.Logger
}

// NewLoader creates a loader.
func NewLoader(opts Options, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	cfg := NewClientConfig()
	if opts.Timeout > 0 {
		cfg.RequestTimeout = opts.Timeout
	}
	cfg.Transport = opts.Transport
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		if opts.Burst <= 0 {
			opts.Burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst)
	}
	return &Loader{
		client:  NewClient(cfg),
		limiter: limiter,
		opts:    opts,
		logger:  logger.Named("network"),
	}
}

// Resolve makes href absolute against the location of the document that
// referenced it.
func Resolve(base, href string) string {
	hu, err := url.Parse(href)
	if err == nil && (hu.Scheme == "http" || hu.Scheme == "https" || hu.Scheme == "file") {
		return href
	}
	if bu, err := url.Parse(base); err == nil && (bu.Scheme == "http" || bu.Scheme == "https") && hu != nil {
		return bu.ResolveReference(hu).String()
	}
	base = strings.TrimPrefix(base, "file://")
	if base == "" || filepath.IsAbs(href) {
		return href
	}
	return filepath.Join(filepath.Dir(base), filepath.FromSlash(href))
}

// Open returns the decoded contents of a file path, file:// URL or, when
// remote loading is on, an http(s) URL, along with its media type if known.
func (l *Loader) Open(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	u, err := url.Parse(ref)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return l.openRemote(ctx, u)
	}
	name := ref
	if err == nil && u.Scheme == "file" {
		name = u.Path
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", name, err)
	}
	body, err := decode(f, []string{encodingForPath(name)})
	if err != nil {
		_ = body.Close()
		return nil, "", fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return body, "", nil
}

func (l *Loader) openRemote(ctx context.Context, u *url.URL) (io.ReadCloser, string, error) {
	if !l.opts.AllowRemote {
		return nil, "", fmt.Errorf("%w: %s", ErrRemoteDisabled, u)
	}
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range l.opts.Headers {
		req.Header.Set(k, v)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, "", fmt.Errorf("failed to fetch %s: status %d", u, resp.StatusCode)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func readAll(rc io.ReadCloser) (string, error) {
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxResourceSize))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Fetch reads a stylesheet.
func (l *Loader) Fetch(ctx context.Context, ref string) (string, error) {
	rc, contentType, err := l.Open(ctx, ref)
	if err != nil {
		return "", err
	}
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || (mediaType != "text/css" && mediaType != "text/plain") {
			_ = rc.Close()
			return "", fmt.Errorf("%w: %s is %q", ErrNotStylesheet, ref, contentType)
		}
	}
	text, err := readAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", ref, err)
	}
	return text, nil
}

// LoadDocument reads and parses a markup document.
func (l *Loader) LoadDocument(ctx context.Context, ref string) (*dom.Document, error) {
	rc, _, err := l.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return dom.Parse(io.LimitReader(rc, maxResourceSize))
}

// Load collects every style source of doc in document order. Linked sheets
// are fetched concurrently; one that fails to load is logged and left out.
// The only error returned is the context's.
func (l *Loader) Load(ctx context.Context, doc *dom.Document, base string) ([]Sheet, error) {
	sources := doc.StyleSources()
	sheets := make([]Sheet, len(sources))
	loaded := make([]bool, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Concurrency)
	for i, src := range sources {
		if src.Kind == dom.SourceInline {
			sheets[i] = Sheet{Name: fmt.Sprintf("inline style #%d", i+1), Text: src.Text, Source: src}
			loaded[i] = true
			continue
		}
		ref := Resolve(base, src.Href)
		g.Go(func() error {
			text, err := l.Fetch(gctx, ref)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				l.logger.Warn("Skipping stylesheet", zap.String("href", ref), zap.Error(err))
				return nil
			}
			sheets[i] = Sheet{Name: ref, Text: text, Source: src}
			loaded[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Sheet, 0, len(sheets))
	for i, s := range sheets {
		if loaded[i] {
			out = append(out, s)
		}
	}
	l.logger.Debug("Stylesheets loaded", zap.Int("sources", len(sources)), zap.Int("loaded", len(out)))
	return out, nil
}
