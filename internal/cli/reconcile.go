package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flashaov/pkg/compositor"
	"github.com/matzehuels/flashaov/pkg/errors"
	"github.com/matzehuels/flashaov/pkg/scene"
	"github.com/matzehuels/flashaov/pkg/store"
)

// reconcileOpts holds the command-line flags for the reconcile command.
type reconcileOpts struct {
	scenePath  string  // scene TOML file
	graphPath  string  // graph JSON input, "-" for stdin, empty for the store
	output     string  // graph JSON output, "-" for stdout
	reportPath string  // optional report JSON output
	key        string  // explicit store key
	scale      float64 // host UI scale factor
	dryRun     bool    // run the pass without writing anything
	pass       passFlags
}

// reconcileCommand creates the reconcile command, the main entry point.
//
// The graph is read from --graph, or from the scene's snapshot in the
// configured store. The result goes to --output (default: back to --graph,
// or stdout) and to the store.
func (c *CLI) reconcileCommand() *cobra.Command {
	var opts reconcileOpts

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Bring a compositing graph in line with the scene's render layers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReconcile(cmd.Context(), cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.scenePath, "scene", "s", "", "scene file (TOML)")
	cmd.Flags().StringVarP(&opts.graphPath, "graph", "g", "", "graph snapshot (JSON, - for stdin); default: stored snapshot")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output snapshot (- for stdout); default: --graph")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "write the pass report as JSON")
	cmd.Flags().StringVar(&opts.key, "key", "", "store key (default: derived from the scene name)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "host UI scale factor used for node sizes")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "report what the pass does without writing")
	opts.pass.register(cmd)
	_ = cmd.MarkFlagRequired("scene")

	return cmd
}

func (c *CLI) runReconcile(ctx context.Context, cmd *cobra.Command, opts *reconcileOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := c.settings(cmd, &opts.pass)
	if err != nil {
		return err
	}
	sc, err := loadScene(opts.scenePath)
	if err != nil {
		return err
	}
	st, keyer, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	key, err := storeKey(opts.key, keyer, sc, opts.scenePath)
	if err != nil {
		return err
	}
	g, origin, err := c.loadGraph(ctx, opts.graphPath, st, key)
	if err != nil {
		return err
	}
	if opts.scale > 0 {
		g.SetScaleFactor(opts.scale)
	}
	logger.Debug("loaded graph", "from", origin, "nodes", g.NodeCount(), "links", g.LinkCount())

	out := outputPath(opts, st)
	if out == stdio {
		uiOut = os.Stderr
	}

	prog := newProgress(logger)
	report, err := c.reconcileGraph(ctx, g, sc, cfg)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Reconciled %d layer(s)", len(report.Layers)))

	if opts.dryRun {
		printReport(report, g.NodeCount(), g.LinkCount())
		printDetail("dry run: nothing written")
		return nil
	}

	if out != "" {
		if err := writeGraph(g, out, cmd.OutOrStdout()); err != nil {
			return err
		}
	}
	if _, isNull := st.(*store.NullStore); !isNull {
		if err := store.SaveGraph(ctx, st, key, g, cfg.Store.TTL.Duration); err != nil {
			return err
		}
		if err := saveReport(ctx, st, keyer.ReportKey(sceneName(sc, opts.scenePath)), report, cfg.Store.TTL.Duration); err != nil {
			return err
		}
	}
	if opts.reportPath != "" {
		if err := writeReportFile(report, opts.reportPath); err != nil {
			return err
		}
	}

	printReport(report, g.NodeCount(), g.LinkCount())
	if out != "" && out != stdio {
		printFile(out)
	}
	if _, isNull := st.(*store.NullStore); !isNull {
		printDetail("snapshot saved to %s store", st.Backend())
	}
	return nil
}

// outputPath picks where the reconciled graph goes. An empty result means
// the store is the only destination.
func outputPath(opts *reconcileOpts, st store.Store) string {
	if opts.output != "" {
		return opts.output
	}
	if opts.graphPath != "" {
		return opts.graphPath
	}
	if _, isNull := st.(*store.NullStore); isNull {
		return stdio
	}
	return ""
}

// sceneName is the scene's own name, or the scene file's base name.
func sceneName(sc *scene.Scene, path string) string {
	if sc.Name != "" {
		return sc.Name
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// storeKey returns the explicit key after validation, or the keyer's key for
// the scene.
func storeKey(explicit string, keyer store.Keyer, sc *scene.Scene, path string) (string, error) {
	if explicit != "" {
		if err := errors.ValidateStoreKey(explicit); err != nil {
			return "", err
		}
		return explicit, nil
	}
	return keyer.GraphKey(sceneName(sc, path)), nil
}

func saveReport(ctx context.Context, st store.Store, key string, r *compositor.Report, ttl time.Duration) error {
	data, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode report")
	}
	return store.Save(ctx, st, key, data, ttl)
}

func writeReportFile(r *compositor.Report, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode report")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
