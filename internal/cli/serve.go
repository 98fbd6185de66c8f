package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flashaov/internal/server"
)

// serveCommand creates the serve command, which runs the HTTP endpoint until
// interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var flags passFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reconcile passes over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.settings(cmd, &flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			st, keyer, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			logger := loggerFromContext(cmd.Context())
			srv := server.New(server.Options{
				Logger:   logger,
				Defaults: cfg.Options(),
				Store:    st,
				Keyer:    keyer,
				TTL:      cfg.Store.TTL.Duration,
			})
			printInfo("Serving on %s (store: %s)", cfg.Server.Addr, st.Backend())
			printNextStep("Try", "curl http://localhost"+portOf(cfg.Server.Addr)+"/healthz")
			return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8417)")
	flags.register(cmd)

	return cmd
}

// portOf returns the ":port" suffix of a listen address.
func portOf(addr string) string {
	if i := strings.LastIndexByte(addr, ':'); i >= 0 {
		return addr[i:]
	}
	return ""
}
