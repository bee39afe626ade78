package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *CLI) newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Describe the persisted mirror files without modifying them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reports, err := c.app.Inspect(cmd.Context(), configPath(cmd))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "STAGE\tTARGET\tRECORDS\tBYTES\tSTATUS\tPATH")
			for _, r := range reports {
				status := "ok"
				switch {
				case !r.Exists:
					status = "missing"
				case !r.Compatible:
					status = "incompatible"
				case r.Trailing > 0:
					status = fmt.Sprintf("%d trailing bytes", r.Trailing)
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
					r.Stage, r.Target, r.Records, r.ValueBytes, status, r.Path)
			}
			return w.Flush()
		},
	}
}
