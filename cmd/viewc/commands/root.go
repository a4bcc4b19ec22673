// Package commands implements the CLI commands for viewc.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/viewc/internal/app"
	"go.trai.ch/viewc/internal/build"
)

// CLI represents the command line interface for viewc.
type CLI struct {
	app     Application
	log     any
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Render(ctx context.Context, file string, opts app.RenderOptions) error
	Build(ctx context.Context, files []string, opts app.BuildOptions) error
	Clean(ctx context.Context, opts app.CleanOptions) error
}

type jsonSetter interface {
	SetJSON(enable bool)
}

type quietSetter interface {
	SetQuiet(quiet bool)
}

// New creates a new CLI instance with the given app.
// When log supports it, the --json and --quiet flags reconfigure it before a command runs.
func New(a Application, log any) *CLI {
	rootCmd := &cobra.Command{
		Use:           "viewc",
		Short:         "Compile, cache and render component templates",
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

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the viewc.yaml project config")
	rootCmd.PersistentFlags().Bool("json", false, "Emit logs and version info as JSON")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only log warnings and errors")

	c := &CLI{
		app:     a,
		log:     log,
		rootCmd: rootCmd,
	}
	rootCmd.PersistentPreRun = c.configureLogger

	rootCmd.AddCommand(c.newRenderCmd())
	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// configureLogger applies --json and --quiet only when given, so defaults
// chosen by the logger itself stay in effect.
func (c *CLI) configureLogger(cmd *cobra.Command, _ []string) {
	flags := cmd.Flags()
	if s, ok := c.log.(jsonSetter); ok && flags.Changed("json") {
		enable, _ := flags.GetBool("json")
		s.SetJSON(enable)
	}
	if s, ok := c.log.(quietSetter); ok && flags.Changed("quiet") {
		quiet, _ := flags.GetBool("quiet")
		s.SetQuiet(quiet)
	}
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
