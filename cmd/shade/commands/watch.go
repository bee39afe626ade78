package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/shade/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Warm scenes and re-warm them whenever they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return c.app.Watch(cmd.Context(), app.WatchOptions{
				ConfigPath: configPath(cmd),
				Dir:        dir,
			})
		},
	}
}
