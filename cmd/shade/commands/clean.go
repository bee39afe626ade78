package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/shade/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove persisted artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, _ := cmd.Flags().GetBool("all")
			dumps, _ := cmd.Flags().GetBool("dumps")
			return c.app.Clean(cmd.Context(), app.CleanOptions{
				ConfigPath: configPath(cmd),
				All:        all,
				Dumps:      dumps,
			})
		},
	}
	cmd.Flags().BoolP("all", "a", false, "Remove the whole cache directory, not only this content id")
	cmd.Flags().BoolP("dumps", "d", false, "Also remove diagnostic dumps")
	return cmd
}
