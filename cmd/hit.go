// File: cmd/hit.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/lattice/api/schemas"
	"github.com/xkilldash9x/lattice/internal/browser/dom"
	"github.com/xkilldash9x/lattice/internal/browser/event"
	"github.com/xkilldash9x/lattice/internal/browser/window"
	"github.com/xkilldash9x/lattice/internal/config"
	"github.com/xkilldash9x/lattice/internal/observability"
)

func newHitCmd() *cobra.Command {
	var asJSON bool
	hitCmd := &cobra.Command{
		Use:   "hit <file|url> <x> <y>",
		Short: "Report which element is painted at a point",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid x coordinate %q", args[1])
			}
			y, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid y coordinate %q", args[2])
			}
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			return runHit(cmd.Context(), observability.GetLogger(), cfg, args[0], x, y, asJSON, cmd.OutOrStdout())
		},
	}
	hitCmd.Flags().BoolVar(&asJSON, "json", false, "print the node's geometry as JSON")
	return hitCmd
}

// runHit delivers a synthetic pointer press at (x, y) and reports its target.
func runHit(ctx context.Context, logger *zap.Logger, cfg config.Interface, source string, x, y int, asJSON bool, out io.Writer) error {
	w, err := openWindow(ctx, cfg, logger, source)
	if err != nil {
		return err
	}

	var target dom.Handle
	w.On(event.PointerDown, func(ev event.Event, _ *window.Window) event.ReturnCode {
		target = ev.Target
		return event.Cancel
	})
	w.ProcessEvents([]event.Event{{Kind: event.PointerDown, X: x, Y: y}})

	if target == nil {
		_, err := fmt.Fprintf(out, "no element at (%d, %d)\n", x, y)
		return err
	}

	doc := w.Document()
	id, _ := doc.NodeID(target)
	node, ok := schemas.NewLayoutDump(doc, w.Layout()).Node(id)
	if !ok {
		return fmt.Errorf("node %d has no layout record", id)
	}
	if asJSON {
		return encodeJSON(out, node)
	}
	s := node.Slots
	_, err = fmt.Fprintf(out, "%s (id %d) at %d,%d size %dx%d\n",
		node.Selector, node.ID, s["x"], s["y"], s["width"], s["height"])
	return err
}

func encodeJSON(out io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode node: %w", err)
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}
