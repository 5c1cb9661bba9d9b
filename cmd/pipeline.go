// File: cmd/pipeline.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"

	"github.com/xkilldash9x/lattice/internal/browser/font"
	"github.com/xkilldash9x/lattice/internal/browser/network"
	"github.com/xkilldash9x/lattice/internal/browser/parser"
	"github.com/xkilldash9x/lattice/internal/browser/window"
	"github.com/xkilldash9x/lattice/internal/config"
)

// expandPath resolves a leading ~ in local paths and leaves URLs alone.
func expandPath(ref string) (string, error) {
	if u, err := url.Parse(ref); err == nil && (u.Scheme == "http" || u.Scheme == "https" || u.Scheme == "file") {
		return ref, nil
	}
	path, err := homedir.Expand(ref)
	if err != nil {
		return "", fmt.Errorf("failed to expand %q: %w", ref, err)
	}
	return path, nil
}

// loadFace picks the configured font. A missing system family falls back to
// the embedded face with a warning; an unreadable font file is an error.
func loadFace(cfg config.FontConfig, logger *zap.Logger) (*font.Face, error) {
	if cfg.Path != "" {
		path, err := homedir.Expand(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to expand font path: %w", err)
		}
		return font.Load(path)
	}
	if cfg.Family == "" {
		return font.Default(), nil
	}
	face, err := font.Find(cfg.Family)
	if errors.Is(err, font.ErrNoFont) {
		logger.Warn("Font family not found, using the embedded face", zap.String("family", cfg.Family))
		return font.Default(), nil
	}
	return face, err
}

// openWindow loads a document with all of its stylesheets and renders the
// first frame.
func openWindow(ctx context.Context, cfg config.Interface, logger *zap.Logger, source string) (*window.Window, error) {
	source, err := expandPath(source)
	if err != nil {
		return nil, err
	}

	netCfg := cfg.Network()
	loader := network.NewLoader(network.Options{
		Timeout:     netCfg.Timeout,
		Concurrency: netCfg.Concurrency,
		AllowRemote: netCfg.AllowRemote,
		Headers:     netCfg.Headers,
		RateLimit:   netCfg.RateLimit,
		Burst:       netCfg.Burst,
	}, logger)

	doc, err := loader.LoadDocument(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	sheets, err := loader.Load(ctx, doc, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load stylesheets: %w", err)
	}

	face, err := loadFace(cfg.Font(), logger)
	if err != nil {
		return nil, err
	}
	opts := window.Options{
		Width:            cfg.Viewport().Width,
		Height:           cfg.Viewport().Height,
		Face:             face,
		DefaultFontSize:  cfg.Font().DefaultSize,
		NoUserAgentSheet: cfg.Render().NoUserAgentSheet,
	}
	if bg := cfg.Render().Background; bg != "" {
		c, ok := parser.Value(bg).Color()
		if !ok {
			return nil, fmt.Errorf("invalid background color %q", bg)
		}
		opts.Background = c
	}

	w, err := window.New(doc, opts, logger)
	if err != nil {
		return nil, err
	}
	for _, s := range sheets {
		w.AddStyleSheet(s.Name, s.Text)
	}
	w.Render()
	return w, nil
}
