package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flashaov/pkg/graphio"
	"github.com/matzehuels/flashaov/pkg/nodegraph"
	"github.com/matzehuels/flashaov/pkg/store"
)

const (
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatJSON = "json"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	scenePath string // scene used to find the stored snapshot when no graph is given
	graphPath string // graph snapshot, "-" for stdin
	output    string // output file, "-" for stdout
	format    string // dot, svg or json
	detailed  bool   // add types and sockets to node labels
}

// renderCommand creates the render command for exporting a snapshot.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a graph snapshot as DOT, SVG or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.graphPath, "graph", "g", "", "graph snapshot (JSON, - for stdin)")
	cmd.Flags().StringVarP(&opts.scenePath, "scene", "s", "", "scene whose stored snapshot to render when --graph is not set")
	cmd.Flags().StringVarP(&opts.output, "output", "o", stdio, "output file (- for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot, json")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node types and sockets")

	return cmd
}

// validateFormat checks that the requested format is supported.
func validateFormat(f string) error {
	switch f {
	case formatDOT, formatSVG, formatJSON:
		return nil
	}
	return fmt.Errorf("invalid format: %s (must be 'svg', 'dot' or 'json')", f)
}

func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, opts *renderOpts) error {
	g, err := c.graphForRead(ctx, cmd, opts.graphPath, opts.scenePath)
	if err != nil {
		return err
	}

	data, err := renderGraph(ctx, g, opts.format, opts.detailed, opts.output != stdio)
	if err != nil {
		return err
	}
	if opts.output == stdio {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Rendered %d nodes, %d links", g.NodeCount(), g.LinkCount())
	printFile(opts.output)
	return nil
}

// renderGraph encodes g in the given format. SVG rendering shows a spinner
// when interactive is set.
func renderGraph(ctx context.Context, g *nodegraph.Graph, format string, detailed, interactive bool) ([]byte, error) {
	switch format {
	case formatJSON:
		return graphio.Marshal(g)
	case formatDOT:
		return []byte(graphio.ToDOT(g, graphio.DOTOptions{Detailed: detailed})), nil
	}

	var spin *Spinner
	if interactive {
		spin = newSpinner(ctx, "Rendering SVG...")
		spin.Start()
		defer spin.Stop()
	}
	return graphio.RenderSVG(ctx, graphio.ToDOT(g, graphio.DOTOptions{Detailed: detailed}))
}

// graphForRead loads a graph for read-only commands: from path, or else the
// scene's stored snapshot. A missing snapshot is an error here.
func (c *CLI) graphForRead(ctx context.Context, cmd *cobra.Command, path, scenePath string) (*nodegraph.Graph, error) {
	if path != "" {
		g, _, err := c.loadGraph(ctx, path, nil, "")
		return g, err
	}
	if scenePath == "" {
		return nil, fmt.Errorf("either --graph or --scene is required")
	}
	cfg, err := c.settings(cmd, nil)
	if err != nil {
		return nil, err
	}
	sc, err := loadScene(scenePath)
	if err != nil {
		return nil, err
	}
	st, keyer, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	key := keyer.GraphKey(sceneName(sc, scenePath))
	g, found, err := store.LoadGraph(ctx, st, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no stored snapshot for scene %q (store %s)", sceneName(sc, scenePath), describeStore(cfg.Store.URL))
	}
	return g, nil
}

func describeStore(url string) string {
	if url == "" {
		return "not configured"
	}
	if i := strings.Index(url, "@"); i >= 0 && strings.HasPrefix(url, "redis") {
		return url[:strings.Index(url, "://")+3] + url[i+1:]
	}
	return url
}
