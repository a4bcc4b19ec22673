package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.trai.ch/viewc/internal/app"
	"go.trai.ch/viewc/internal/core/domain"
)

func addCompileFlags(flags *pflag.FlagSet) {
	flags.StringP("env", "e", "", "Environment name (overrides "+domain.EnvVar+")")
	flags.Bool("dev", false, "Force development mode on or off")
	flags.Bool("cache", false, "Force the compile cache on or off")
	flags.Bool("hydratable", true, "Emit hydration markers in rendered markup")
	flags.StringArrayP("replace", "r", nil, "Substitute an identifier with a value (key=value, repeatable)")
	flags.StringSlice("dedupe", nil, "Packages that must resolve to a single instance")
}

// compileFlags reads the shared compile flags. Mode switches are only set when given explicitly.
func compileFlags(cmd *cobra.Command) (app.CompileFlags, error) {
	flags := cmd.Flags()

	configPath, _ := flags.GetString("config")
	env, _ := flags.GetString("env")
	dedupe, _ := flags.GetStringSlice("dedupe")
	pairs, _ := flags.GetStringArray("replace")

	replace, err := app.ParseReplacements(pairs)
	if err != nil {
		return app.CompileFlags{}, err
	}

	return app.CompileFlags{
		ConfigPath: configPath,
		Env:        env,
		Dev:        changedBool(flags, "dev"),
		Cache:      changedBool(flags, "cache"),
		Hydratable: changedBool(flags, "hydratable"),
		Replace:    replace,
		Dedupe:     dedupe,
	}, nil
}

func changedBool(flags *pflag.FlagSet, name string) *bool {
	if !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetBool(name)
	return &v
}
