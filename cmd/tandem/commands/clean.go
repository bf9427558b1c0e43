package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/tandem/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove built images and caches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache, _ := cmd.Flags().GetBool("cache")
			all, _ := cmd.Flags().GetBool("all")

			var opts app.CleanOptions
			switch {
			case all:
				opts.Images = true
				opts.Cache = true
			case cache:
				opts.Cache = true
			default:
				opts.Images = true
			}

			return c.app.Clean(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolP("cache", "c", false, "Clean downloaded artifacts and dependency layers")
	cmd.Flags().BoolP("all", "a", false, "Clean images and all caches")

	return cmd
}
