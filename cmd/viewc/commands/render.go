package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/viewc/internal/app"
)

func (c *CLI) newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Compile a template and print its rendered markup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := compileFlags(cmd)
			if err != nil {
				return err
			}

			inline, _ := cmd.Flags().GetString("props")
			propsFile, _ := cmd.Flags().GetString("props-file")
			props, err := app.LoadProps(inline, propsFile)
			if err != nil {
				return err
			}

			watch, _ := cmd.Flags().GetBool("watch")
			timings, _ := cmd.Flags().GetBool("timings")

			return c.app.Render(cmd.Context(), args[0], app.RenderOptions{
				CompileFlags: flags,
				Props:        props,
				Watch:        watch,
				Timings:      timings,
			})
		},
	}
	addCompileFlags(cmd.Flags())
	cmd.Flags().StringP("props", "p", "", "Props as an inline JSON object")
	cmd.Flags().String("props-file", "", "Read props from a JSON file")
	cmd.Flags().BoolP("watch", "w", false, "Re-render whenever project sources change")
	cmd.Flags().BoolP("timings", "t", false, "Log a timing line for each compile phase")
	cmd.MarkFlagsMutuallyExclusive("props", "props-file")
	return cmd
}
