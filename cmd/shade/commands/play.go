package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/shade/internal/app"
)

func (c *CLI) newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play [scenes...]",
		Short: "Replay scenes as frames through the submission and preparation contexts",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			lookahead, _ := cmd.Flags().GetInt("lookahead")
			_, err := c.app.Play(cmd.Context(), app.PlayOptions{
				ConfigPath: configPath(cmd),
				Scenes:     args,
				Lookahead:  lookahead,
			})
			return err
		},
	}
	cmd.Flags().IntP("lookahead", "l", app.DefaultLookahead, "Frames the preparation context may run ahead")
	return cmd
}
