package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/r3d91ll/heddle/pkg/api"
	"github.com/r3d91ll/heddle/pkg/config"
	"github.com/r3d91ll/heddle/pkg/dataset"
	herrors "github.com/r3d91ll/heddle/pkg/errors"
	"github.com/r3d91ll/heddle/pkg/export"
	"github.com/r3d91ll/heddle/pkg/interact"
	"github.com/r3d91ll/heddle/pkg/layout"
	"github.com/r3d91ll/heddle/pkg/shell"
)

// -----------------------------------------------------------------------------
// serve
// -----------------------------------------------------------------------------

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the host page server",
		Args:  cobra.NoArgs,
		RunE:  ServeHandler,
	}
	cmd.Flags().String("host", "", "Listen host (overrides config)")
	cmd.Flags().Int("port", -1, "Listen port, 0 picks a free port (overrides config)")
	return cmd
}

// ServeHandler runs the HTTP and WebSocket host until SIGINT or SIGTERM.
func ServeHandler(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port >= 0 {
		cfg.Server.Port = port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := layout.New(layout.FromConfig(cfg.Layout))
	registry := api.NewRegistry(engine)
	hub := api.NewHub()

	png := export.DefaultPNGConfig()
	if cfg.Export.PNGScale > 0 {
		png.Scale = cfg.Export.PNGScale
	}

	srv := api.NewServer(api.FromConfig(cfg.Server))
	api.NewVisualizationHandler(registry, hub, defaultsFrom(cfg), png).RegisterRoutes(srv.Router())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run()
		return nil
	})
	g.Go(func() error {
		return srv.Serve(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		hub.Stop()
		registry.Close()
		return nil
	})

	log.Printf("[api] Heddle %s, %d CORS origin(s)", version, len(cfg.Server.CORSOrigins))
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	log.Printf("[api] Stopped")
	return nil
}

// -----------------------------------------------------------------------------
// render
// -----------------------------------------------------------------------------

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render DATA.json",
		Short: "Write an SVG or PNG snapshot of a visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  RenderHandler,
	}
	cmd.Flags().StringP("format", "f", "svg", "Output format: "+strings.Join(export.ValidFormats(), ", "))
	cmd.Flags().StringP("out", "o", "", "Output directory (default: export.dir from config)")
	cmd.Flags().StringP("name", "n", "", "Output file name without extension (default: root_div_id)")
	cmd.Flags().String("view", "", "View to render when the data leaves it unset: head, model or neuron")
	cmd.Flags().Bool("force", false, "Overwrite existing files without asking")
	return cmd
}

// RenderHandler mounts the data file and writes one snapshot.
func RenderHandler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	def := defaultsFrom(cfg)
	if view, _ := cmd.Flags().GetString("view"); view != "" {
		def.View = view
	}

	ctrl, err := mountFile(cmd, args[0], def, cfg)
	if err != nil {
		return err
	}
	defer ctrl.Teardown()

	dir, _ := cmd.Flags().GetString("out")
	if dir == "" {
		dir = cfg.Export.Dir
	}
	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = ctrl.ID()
	}
	name = strings.TrimSuffix(name, format.Extension())

	force, _ := cmd.Flags().GetBool("force")
	path := filepath.Join(dir, name+format.Extension())
	if _, err := os.Stat(path); err == nil && !force {
		prompter := shell.NewInteractivePrompterWithIO(cmd.InOrStdin(), cmd.OutOrStdout())
		ok, err := prompter.Confirm(fmt.Sprintf("%s exists. Overwrite?", path))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Render cancelled.")
			return nil
		}
	}

	png := export.DefaultPNGConfig()
	if cfg.Export.PNGScale > 0 {
		png.Scale = cfg.Export.PNGScale
	}
	written, err := export.WriteFile(dir, name, format, ctrl, png)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", written)
	return nil
}

// -----------------------------------------------------------------------------
// inspect
// -----------------------------------------------------------------------------

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect DATA.json",
		Short: "Explore a visualization in an interactive shell",
		Args:  cobra.ExactArgs(1),
		RunE:  InspectHandler,
	}
}

// InspectHandler opens the interactive shell on the data file.
func InspectHandler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctrl, err := mountFile(cmd, args[0], defaultsFrom(cfg), cfg)
	if err != nil {
		return err
	}
	defer ctrl.Teardown()

	homeDir, _ := os.UserHomeDir()
	sh, err := shell.New(ctrl, shell.Config{
		HistoryFile: filepath.Join(homeDir, ".heddle_history"),
		ExportDir:   cfg.Export.Dir,
		PNGScale:    cfg.Export.PNGScale,
	})
	if err != nil {
		return fmt.Errorf("failed to create shell: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()
	if err := sh.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Goodbye!")
	return nil
}

// -----------------------------------------------------------------------------
// shape
// -----------------------------------------------------------------------------

func newShapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shape DATA.json",
		Short: "List the filters of a data file and their dimensions",
		Args:  cobra.ExactArgs(1),
		RunE:  ShapeHandler,
	}
}

// ShapeHandler prints the filter table.
func ShapeHandler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p, err := dataset.LoadFile(args[0], defaultsFrom(cfg))
	if err != nil {
		return err
	}
	return writeShapes(cmd.OutOrStdout(), p)
}

func writeShapes(w io.Writer, p *dataset.Params) error {
	fmt.Fprintf(w, "View: %s\n\n", p.View)
	return shell.WriteShapes(w, p.Data)
}

// mountFile loads path and mounts it with the configured layout. Recovered
// mount errors are printed as warnings.
func mountFile(cmd *cobra.Command, path string, def dataset.Defaults, cfg *config.Config) (*interact.Controller, error) {
	p, err := dataset.LoadFile(path, def)
	if err != nil {
		return nil, err
	}
	ctrl, err := interact.Mount(p, layout.New(layout.FromConfig(cfg.Layout)))
	if err != nil {
		if !herrors.IsRecovered(err) {
			return nil, err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
	return ctrl, nil
}
