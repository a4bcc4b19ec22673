package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/viewc/internal/app"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [templates...]",
		Short: "Compile templates into the bundle store without rendering",
		Long: "Compile templates into the bundle store without rendering.\n" +
			"With no arguments every template below the project root is built.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := compileFlags(cmd)
			if err != nil {
				return err
			}
			jobs, _ := cmd.Flags().GetInt("jobs")

			return c.app.Build(cmd.Context(), args, app.BuildOptions{
				CompileFlags: flags,
				Jobs:         jobs,
			})
		},
	}
	addCompileFlags(cmd.Flags())
	cmd.Flags().IntP("jobs", "j", 0, "Maximum concurrent compiles (0 means one per CPU)")
	return cmd
}
