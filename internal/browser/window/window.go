// internal/browser/window/window.go
package window

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/lattice/internal/browser/dom"
	"github.com/xkilldash9x/lattice/internal/browser/event"
	"github.com/xkilldash9x/lattice/internal/browser/font"
	"github.com/xkilldash9x/lattice/internal/browser/layout"
	"github.com/xkilldash9x/lattice/internal/browser/paint"
	"github.com/xkilldash9x/lattice/internal/browser/style"
)

// ErrNoRoot is returned when a window is opened on a document without a
// root element.
var ErrNoRoot = errors.New("window: document has no root element")

const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Options configures a Window. Zero values select the defaults.
type Options struct {
	Width, Height   int
	Face            *font.Face
	DefaultFontSize float64
	Background      color.Color
	// NoUserAgentSheet drops the built-in sheet from the cascade.
	NoUserAgentSheet bool
}

// Window owns one document and the pipeline that turns it into pixels:
// cascade, layout, paint. It also routes input events to listeners using the
// hit-test buffer of the last frame. A Window is not safe for concurrent use.
type Window struct {
	id     string
	doc    *dom.Document
	face   *font.Face
	logger *zap.Logger

	styles  *style.Engine
	layouts *layout.Engine
	painter *paint.Painter
	events  event.Dispatcher[*Window]

	result  *style.Result
	current *layout.Layout
	stale   bool
}

// New opens a window on doc.
func New(doc *dom.Document, opts Options, logger *zap.Logger) (*Window, error) {
	if doc == nil || doc.Root() == nil {
		return nil, ErrNoRoot
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	face := opts.Face
	if face == nil {
		face = font.Default()
	}

	frameID := uuid.New().String()
	base := logger.With(zap.String("frame_id", frameID))
	log := base.Named("window")

	var styleOpts []style.Option
	if opts.NoUserAgentSheet {
		styleOpts = append(styleOpts, style.WithoutUserAgentSheet())
	}
	w := &Window{
		id:      frameID,
		doc:     doc,
		face:    face,
		logger:  log,
		styles:  style.NewEngine(base, styleOpts...),
		layouts: layout.NewEngine(face, layout.Viewport{Width: opts.Width, Height: opts.Height}, base),
		painter: paint.NewPainter(opts.Width, opts.Height, face, base),
		stale:   true,
	}
	if opts.DefaultFontSize > 0 {
		w.layouts.SetDefaultFontSize(opts.DefaultFontSize)
	}
	if opts.Background != nil {
		w.painter.SetBackground(opts.Background)
	}
	log.Debug("Window opened", zap.Int("width", opts.Width), zap.Int("height", opts.Height), zap.String("font", face.Name()))
	return w, nil
}

// ID identifies the window in logs.
func (w *Window) ID() string { return w.id }

// Document is the document the window displays.
func (w *Window) Document() *dom.Document { return w.doc }

// Viewport is the current window size.
func (w *Window) Viewport() layout.Viewport { return w.layouts.Viewport() }

// AddStyleSheet appends an author sheet. It takes effect on the next Render.
func (w *Window) AddStyleSheet(name, css string) {
	sheet := w.styles.AddAuthorCSS(name, css)
	w.stale = true
	w.logger.Debug("Stylesheet added", zap.String("name", name), zap.Int("rules", len(sheet.Rules)))
}

// Styles is the cascade result of the last Render, or nil.
func (w *Window) Styles() *style.Result { return w.result }

// Layout is the layout of the last Render, or nil.
func (w *Window) Layout() *layout.Layout { return w.current }

// Painter exposes the raster and hit-test surfaces of the last frame.
func (w *Window) Painter() *paint.Painter { return w.painter }

// Render brings the frame up to date. The cascade only reruns when the set of
// sheets changed; layout and paint always run.
func (w *Window) Render() paint.Stats {
	start := time.Now()
	if w.stale || w.result == nil {
		w.result = w.styles.Resolve(w.doc)
		w.stale = false
	}
	w.current = w.layouts.Layout(w.result)
	stats := w.painter.Paint(w.current, w.doc)
	if n := w.current.Incomplete(); n > 0 {
		w.logger.Debug("Nodes left with unresolved slots", zap.Int("nodes", n))
	}
	w.logger.Debug("Frame rendered",
		zap.Int("boxes", stats.Boxes),
		zap.Int("texts", stats.Texts),
		zap.Duration("elapsed", time.Since(start)))
	return stats
}

// Resize changes the viewport and redraws the frame from layout onward.
func (w *Window) Resize(width, height int) paint.Stats {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	w.layouts.SetViewport(layout.Viewport{Width: width, Height: height})
	w.painter.Resize(width, height)
	w.logger.Debug("Window resized", zap.Int("width", width), zap.Int("height", height))
	return w.Render()
}

// NodeAt returns the element whose filled region was painted last at (x, y).
func (w *Window) NodeAt(x, y int) (dom.Handle, bool) {
	id, ok := w.painter.IDs().Query(x, y)
	if !ok {
		return nil, false
	}
	return w.doc.NodeByID(id)
}

// On registers a listener for one kind of event.
func (w *Window) On(kind event.Kind, l event.Listener[*Window]) {
	w.events.On(kind, l)
}

// ProcessEvents delivers events in order. Pointer and scroll events get
// their target from the hit-test buffer; a Resize event relayouts the window
// before its listeners run. Delivery stops at the first Cancel or Quit,
// which is returned.
func (w *Window) ProcessEvents(events []event.Event) event.ReturnCode {
	for _, ev := range events {
		if code := w.dispatch(ev); code != event.Continue {
			return code
		}
	}
	return event.Continue
}

func (w *Window) dispatch(ev event.Event) event.ReturnCode {
	if ev.Kind == event.Resize {
		w.Resize(ev.Width, ev.Height)
	} else if h, ok := w.NodeAt(ev.X, ev.Y); ok {
		ev.Target = h
		ev.TargetID, _ = w.doc.NodeID(h)
	}
	code := w.events.Dispatch(ev, w)
	if code != event.Continue {
		w.logger.Debug("Event loop stopped", zap.Stringer("kind", ev.Kind), zap.Stringer("code", code))
	}
	return code
}

// Run processes events from the channel until a listener returns Cancel or
// Quit, the channel closes, or ctx is done. The code that stopped the loop is
// returned; a done context also returns its error.
func (w *Window) Run(ctx context.Context, events <-chan event.Event) (event.ReturnCode, error) {
	if w.current == nil {
		w.Render()
	}
	for {
		select {
		case <-ctx.Done():
			return event.Continue, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return event.Continue, nil
			}
			if code := w.dispatch(ev); code != event.Continue {
				return code, nil
			}
		}
	}
}

// SavePNG writes the last frame to a file.
func (w *Window) SavePNG(path string) error {
	if err := w.painter.SavePNG(path); err != nil {
		return fmt.Errorf("failed to save frame: %w", err)
	}
	return nil
}

// EncodePNG writes the last frame to out.
func (w *Window) EncodePNG(out io.Writer) error {
	if err := w.painter.EncodePNG(out); err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	return nil
}

// ExportPDF writes the current layout as a vector page, rendering first if
// needed.
func (w *Window) ExportPDF(out io.Writer) error {
	if w.current == nil {
		w.Render()
	}
	if err := paint.ExportPDF(out, w.current, w.face); err != nil {
		return fmt.Errorf("failed to export pdf: %w", err)
	}
	return nil
}
