package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flashaov/pkg/graphio"
	"github.com/matzehuels/flashaov/pkg/store"
)

// storeCommand creates the snapshot store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage stored graph snapshots",
	}

	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storeDeleteCommand())
	cmd.AddCommand(c.storePingCommand())

	return cmd
}

// storeTarget resolves the store and key for a scene.
type storeTarget struct {
	scenePath string
	flags     passFlags
}

func (t *storeTarget) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&t.scenePath, "scene", "s", "", "scene file (TOML)")
	cmd.Flags().StringVar(&t.flags.storeURL, "store", "", "snapshot store (overrides config)")
	_ = cmd.MarkFlagRequired("scene")
}

func (c *CLI) openTarget(cmd *cobra.Command, t *storeTarget) (store.Store, store.Keyer, string, error) {
	cfg, err := c.settings(cmd, &t.flags)
	if err != nil {
		return nil, nil, "", err
	}
	sc, err := loadScene(t.scenePath)
	if err != nil {
		return nil, nil, "", err
	}
	st, keyer, err := openStore(cfg)
	if err != nil {
		return nil, nil, "", err
	}
	return st, keyer, sceneName(sc, t.scenePath), nil
}

// storeGetCommand creates the "store get" subcommand.
func (c *CLI) storeGetCommand() *cobra.Command {
	var t storeTarget
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the stored snapshot for a scene",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, keyer, name, err := c.openTarget(cmd, &t)
			if err != nil {
				return err
			}
			defer st.Close()

			g, found, err := store.LoadGraph(cmd.Context(), st, keyer.GraphKey(name))
			if err != nil {
				return err
			}
			if !found {
				printInfo("No snapshot for %s in %s store", name, st.Backend())
				return nil
			}
			return graphio.Write(g, cmd.OutOrStdout())
		},
	}
	t.register(cmd)
	return cmd
}

// storeDeleteCommand creates the "store delete" subcommand.
func (c *CLI) storeDeleteCommand() *cobra.Command {
	var t storeTarget
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the stored snapshot and report for a scene",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, keyer, name, err := c.openTarget(cmd, &t)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			for _, key := range []string{keyer.GraphKey(name), keyer.ReportKey(name)} {
				if err := st.Delete(ctx, key); err != nil {
					return err
				}
			}
			printSuccess("Deleted snapshot for %s", name)
			printDetail("Store: %s", st.Backend())
			return nil
		},
	}
	t.register(cmd)
	return cmd
}

// storePingCommand creates the "store ping" subcommand.
func (c *CLI) storePingCommand() *cobra.Command {
	var storeURL string
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured store is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.settings(cmd, &passFlags{storeURL: storeURL})
			if err != nil {
				return err
			}
			st, _, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if rs, ok := st.(*store.RedisStore); ok {
				if err := rs.Ping(cmd.Context()); err != nil {
					printError("%s store unreachable", st.Backend())
					return err
				}
			}
			printSuccess("%s store ok", st.Backend())
			printKeyValue("url", describeStore(cfg.Store.URL))
			return nil
		},
	}
	cmd.Flags().StringVar(&storeURL, "store", "", "snapshot store (overrides config)")
	return cmd
}
