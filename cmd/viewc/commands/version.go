package commands

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"go.trai.ch/viewc/internal/build"
)

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go"`
}

// newVersionCmd prints build metadata; with --json it writes a single object
// for scripts that pin a compiler version.
func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versionInfo{
				Version:   build.Version,
				Commit:    build.Commit,
				Date:      build.Date,
				GoVersion: runtime.Version(),
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return json.NewEncoder(out).Encode(info)
			}
			_, err := fmt.Fprintf(out, "viewc version %s (commit: %s, date: %s)\n", info.Version, info.Commit, info.Date)
			return err
		},
	}
}
