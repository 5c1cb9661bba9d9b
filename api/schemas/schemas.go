package schemas

import (
	"fmt"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/lattice/internal/browser/dom"
	"github.com/xkilldash9x/lattice/internal/browser/layout"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DumpVersion is bumped whenever a field changes meaning.
const DumpVersion = 1

// -- Layout Dump Schemas --

// Viewport is the size the layout was computed for.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Fragment is one line piece of a text node, in absolute coordinates.
type Fragment struct {
	Text     string  `json:"text"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	FontSize int     `json:"font_size"`
}

// NodeGeometry is the resolved layout record of one node.
type NodeGeometry struct {
	ID       uint32 `json:"id"`
	ParentID uint32 `json:"parent_id,omitempty"`
	Tag      string `json:"tag,omitempty"`
	Selector string `json:"selector,omitempty"`
	Text     string `json:"text,omitempty"`
	Display  string `json:"display"`
	Hidden   bool   `json:"hidden,omitempty"`
	// Slots holds every resolved slot by name; unresolved slots are absent
	// and listed in Missing.
	Slots     map[string]int `json:"slots"`
	Missing   []string       `json:"missing,omitempty"`
	Fragments []Fragment     `json:"fragments,omitempty"`
}

// LayoutDump is the machine-readable form of one laid-out frame.
type LayoutDump struct {
	Version     int            `json:"version"`
	FrameID     string         `json:"frame_id,omitempty"`
	Source      string         `json:"source,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
	Viewport    Viewport       `json:"viewport"`
	Nodes       []NodeGeometry `json:"nodes"`
}

// NewLayoutDump captures every node of l in document order.
func NewLayoutDump(doc *dom.Document, l *layout.Layout) *LayoutDump {
	dump := &LayoutDump{
		Version:     DumpVersion,
		GeneratedAt: time.Now().UTC(),
		Viewport:    Viewport{Width: l.Viewport.Width, Height: l.Viewport.Height},
		Nodes:       make([]NodeGeometry, 0, len(l.Order())),
	}
	styles := l.Styles()
	for _, h := range l.Order() {
		rec, ok := l.Record(h)
		if !ok {
			continue
		}
		g := NodeGeometry{
			Display: styles.Display(h).String(),
			Hidden:  l.Hidden(h),
			Slots:   rec.Map(),
		}
		g.ID, _ = doc.NodeID(h)
		if p, ok := l.Parent(h); ok {
			g.ParentID, _ = doc.NodeID(p)
		}
		if doc.IsText(h) {
			g.Text = doc.Text(h)
		} else {
			g.Tag = doc.TagName(h)
			g.Selector = dom.CompleteSelector(doc, h).String()
		}
		for _, s := range rec.Missing() {
			g.Missing = append(g.Missing, s.String())
		}
		for _, fr := range l.Fragments(h) {
			g.Fragments = append(g.Fragments, Fragment{
				Text: fr.Text, X: fr.X, Y: fr.Y,
				Width: fr.Width, Height: fr.Height, FontSize: fr.FontSize,
			})
		}
		dump.Nodes = append(dump.Nodes, g)
	}
	return dump
}

// Node finds a node by id.
func (d *LayoutDump) Node(id uint32) (NodeGeometry, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeGeometry{}, false
}

// Encode writes dump as JSON, indented when pretty is set.
func Encode(w io.Writer, dump *LayoutDump, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(dump); err != nil {
		return fmt.Errorf("failed to encode layout dump: %w", err)
	}
	return nil
}

// Decode reads a dump written by Encode.
func Decode(r io.Reader) (*LayoutDump, error) {
	var dump LayoutDump
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return nil, fmt.Errorf("failed to decode layout dump: %w", err)
	}
	if dump.Version != DumpVersion {
		return nil, fmt.Errorf("unsupported layout dump version %d", dump.Version)
	}
	return &dump, nil
}
