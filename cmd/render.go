// File: cmd/render.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/lattice/api/schemas"
	"github.com/xkilldash9x/lattice/internal/config"
	"github.com/xkilldash9x/lattice/internal/observability"
)

func newRenderCmd() *cobra.Command {
	renderCmd := &cobra.Command{
		Use:   "render <file|url>",
		Short: "Render a document to PNG or PDF",
		Long: `Loads a document and its stylesheets, runs the cascade and layout, and
writes the painted frame. With --layout the resolved geometry of every node is
written as JSON as well; "-" sends it to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			return runRender(cmd.Context(), observability.GetLogger(), cfg, args[0], cmd.OutOrStdout())
		},
	}
	f := renderCmd.Flags()
	f.StringP("output", "o", "out.png", "output file")
	f.StringP("format", "f", config.FormatPNG, "output format: png or pdf")
	f.String("layout", "", "write the layout as JSON to this file (\"-\" for stdout)")
	f.String("background", "white", "canvas color")
	return renderCmd
}

func runRender(ctx context.Context, logger *zap.Logger, cfg config.Interface, source string, stdout io.Writer) error {
	w, err := openWindow(ctx, cfg, logger, source)
	if err != nil {
		return err
	}

	output, err := expandPath(cfg.Render().Output)
	if err != nil {
		return err
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if cfg.Render().Format == config.FormatPDF {
		err = w.ExportPDF(f)
	} else {
		err = w.EncodePNG(f)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if dumpPath := cfg.Render().LayoutDump; dumpPath != "" {
		dump := schemas.NewLayoutDump(w.Document(), w.Layout())
		dump.FrameID = w.ID()
		dump.Source = source
		if err := writeDump(dumpPath, dump, stdout); err != nil {
			return err
		}
	}

	logger.Info("Rendered document",
		zap.String("source", source),
		zap.String("output", output),
		zap.String("format", cfg.Render().Format),
		zap.String("frame_id", w.ID()))
	return nil
}

func writeDump(path string, dump *schemas.LayoutDump, stdout io.Writer) error {
	if path == "-" {
		return schemas.Encode(stdout, dump, true)
	}
	path, err := expandPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create layout dump: %w", err)
	}
	err = schemas.Encode(f, dump, true)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
