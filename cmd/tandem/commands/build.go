package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/tandem/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "build [backend|frontend]...",
		Short:     "Build service images, both when no role is given",
		Args:      cobra.OnlyValidArgs,
		ValidArgs: roleNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			roles, err := parseRoles(args)
			if err != nil {
				return err
			}
			noCache, _ := cmd.Flags().GetBool("no-cache")
			export, _ := cmd.Flags().GetBool("export")
			watch, _ := cmd.Flags().GetBool("watch")

			opts := app.BuildOptions{NoCache: noCache, Export: export}
			if watch {
				return c.app.Watch(cmd.Context(), roles, app.WatchOptions{Build: opts})
			}
			return c.app.Build(cmd.Context(), roles, opts)
		},
	}
	cmd.Flags().BoolP("no-cache", "n", false, "Reinstall dependencies even when a cached layer matches")
	cmd.Flags().Bool("export", false, "Also write each image as an OCI archive under .tandem/images")
	cmd.Flags().BoolP("watch", "w", false, "Rebuild affected images when sources or requirements change")
	return cmd
}
