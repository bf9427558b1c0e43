package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/tandem/internal/app"
	"go.trai.ch/tandem/internal/core/domain"
)

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "serve <backend|frontend>",
		Short:     "Run the entry point of a built image until interrupted",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: roleNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := domain.ParseRole(args[0])
			if err != nil {
				return err
			}

			var opts app.ServeOptions
			if cmd.Flags().Changed("headless") {
				headless, _ := cmd.Flags().GetBool("headless")
				opts.Headless = &headless
			}
			return c.app.Serve(cmd.Context(), role, opts)
		},
	}
	cmd.Flags().Bool("headless", false, "Never open a browser for the frontend (default from the image)")
	return cmd
}
