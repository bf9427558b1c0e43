// Package commands implements the CLI commands for tandem.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/tandem/internal/app"
	"go.trai.ch/tandem/internal/build"
	"go.trai.ch/tandem/internal/core/domain"
)

// CLI represents the command line interface for tandem.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	globals func(Globals) error
}

// Application represents the application logic interface.
type Application interface {
	Build(ctx context.Context, roles []domain.Role, opts app.BuildOptions) error
	Watch(ctx context.Context, roles []domain.Role, opts app.WatchOptions) error
	Serve(ctx context.Context, role domain.Role, opts app.ServeOptions) error
	Verify(ctx context.Context) error
	Clean(ctx context.Context, opts app.CleanOptions) error
}

// Globals are the persistent flags shared by every command.
type Globals struct {
	// Dir is where tandem.yaml is discovered from.
	Dir string
	// JSONLogs switches the logger to JSON output.
	JSONLogs bool
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "tandem",
		Short:         "Build and serve the backend and frontend service images",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("dir", "C", ".", "Directory tandem.yaml is discovered from")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if c.globals == nil {
			return nil
		}
		dir, err := cmd.Flags().GetString("dir")
		if err != nil {
			return err
		}
		jsonLogs, err := cmd.Flags().GetBool("json-logs")
		if err != nil {
			return err
		}
		return c.globals(Globals{Dir: dir, JSONLogs: jsonLogs})
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newVerifyCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// SetGlobalsHook registers fn to receive the persistent flags before any command runs.
func (c *CLI) SetGlobalsHook(fn func(Globals) error) {
	c.globals = fn
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func parseRoles(args []string) ([]domain.Role, error) {
	roles := make([]domain.Role, 0, len(args))
	for _, arg := range args {
		role, err := domain.ParseRole(arg)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func roleNames() []string {
	names := make([]string, 0, len(domain.Roles()))
	for _, r := range domain.Roles() {
		names = append(names, string(r))
	}
	return names
}
