package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flashaov/pkg/compositor"
)

// unlinkCommand creates the unlink command. Each named node is deleted and
// its first upstream socket is linked straight to its first downstream one,
// the same bridge the denoise pass uses.
func (c *CLI) unlinkCommand() *cobra.Command {
	var graphPath, output string

	cmd := &cobra.Command{
		Use:   "unlink NODE...",
		Short: "Remove nodes from a graph and bridge their links",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = graphPath
			}
			if output == stdio {
				uiOut = cmd.ErrOrStderr()
			}
			g, _, err := c.loadGraph(cmd.Context(), graphPath, nil, "")
			if err != nil {
				return err
			}

			removed := 0
			for _, name := range args {
				if _, ok := g.Node(name); !ok {
					printWarning("%s: no such node", name)
					continue
				}
				if err := compositor.RemoveBetween(g, name); err != nil {
					printWarning("%s: removed, but relinking failed: %v", name, err)
				}
				removed++
			}

			if err := writeGraph(g, output, cmd.OutOrStdout()); err != nil {
				return err
			}
			printSuccess("Removed %d node(s)", removed)
			if output != stdio {
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&graphPath, "graph", "g", "", "graph snapshot (JSON, - for stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output snapshot (- for stdout); default: --graph")
	_ = cmd.MarkFlagRequired("graph")

	return cmd
}
