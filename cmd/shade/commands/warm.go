package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/shade/internal/app"
)

func (c *CLI) newWarmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "warm [scenes...]",
		Short: "Compile and persist every program the given scenes need",
		Long: "Compile and persist every program the given scenes need.\n" +
			"Without arguments every scene file below the current directory is used.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenes := args
			if len(scenes) == 0 {
				found, err := app.FindScenes(".")
				if err != nil {
					return err
				}
				scenes = found
			}
			_, err := c.app.Warm(cmd.Context(), app.WarmOptions{
				ConfigPath: configPath(cmd),
				Scenes:     scenes,
			})
			return err
		},
	}
}
