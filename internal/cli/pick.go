package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flashaov/internal/config"
)

// pickCommand creates the pick command: an interactive toggle list for the
// reconcile options, saved back into the project file. With --scene a
// reconcile pass runs right after saving.
func (c *CLI) pickCommand() *cobra.Command {
	var opts reconcileOpts

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Choose output options interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(c.configPath)
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			final, err := tea.NewProgram(NewFlagPickerModel(cfg.Options()), tea.WithInput(c.in), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return fmt.Errorf("picker: %w", err)
			}
			m := final.(FlagPickerModel)
			if !m.Saved {
				printInfo("No changes saved")
				return nil
			}

			cfg.SetOptions(m.Options)
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			printSuccess("Saved options")
			printFile(path)

			if opts.scenePath == "" {
				printNextStep("Apply them", "flashaov reconcile --scene <scene.toml>")
				return nil
			}
			return c.runReconcile(cmd.Context(), cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.scenePath, "scene", "s", "", "reconcile this scene after saving")
	cmd.Flags().StringVarP(&opts.graphPath, "graph", "g", "", "graph snapshot for the follow-up pass")

	return cmd
}
