package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/milkywaygod2/sysutil/internal/envvars"
)

var (
	envPermanent bool
	envPathStart bool
)

// envCmd groups the environment-variable subcommands.
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Inspect and modify environment variables",
}

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "List environment variables",
	RunE: func(cmd *cobra.Command, args []string) error {
		all := envvars.All()
		names := make([]string, 0, len(all))
		for name := range all {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s=%s\n", name, all[name])
		}
		return nil
	},
}

var envGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print one environment variable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !envvars.Exists(args[0]) {
			return fmt.Errorf("%s is not set", args[0])
		}
		fmt.Println(envvars.Get(args[0], ""))
		return nil
	},
}

var envSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Set an environment variable",
	Long: `Set an environment variable for this process, or persist it with
--permanent (setx on Windows, a shell profile entry elsewhere).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if envPermanent {
			return envvars.SetPermanent(cmd.Context(), args[0], args[1])
		}
		return envvars.Set(args[0], args[1])
	},
}

var envPathCmd = &cobra.Command{
	Use:   "path [dir]",
	Short: "Show PATH entries, or add a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			for _, entry := range envvars.PathList() {
				fmt.Println(entry)
			}
			return nil
		}

		position := envvars.PositionEnd
		if envPathStart {
			position = envvars.PositionStart
		}
		return envvars.AddToPath(args[0], position)
	},
}

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envGetCmd)
	envCmd.AddCommand(envSetCmd)
	envCmd.AddCommand(envPathCmd)

	envSetCmd.Flags().BoolVar(&envPermanent, "permanent", false, "persist beyond this process")
	envPathCmd.Flags().BoolVar(&envPathStart, "front", false, "prepend instead of append")
}
