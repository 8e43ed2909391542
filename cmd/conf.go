package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milkywaygod2/sysutil/internal/configfile"
	"github.com/milkywaygod2/sysutil/internal/errors"
)

// configCmd groups the config-file subcommands. These operate on arbitrary
// JSON, YAML, and TOML files, not on sysutil's own configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read, edit, and merge JSON/YAML/TOML config files",
	Long: `Config-file chores with dotted-path access.

Examples:
  sysutil config get app.yml database.host
  sysutil config set app.yml database.port 5432
  sysutil config merge merged.yml base.yml override.yml
  sysutil config convert app.yml app.toml`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <file> <path>",
	Short: "Print the value at a dotted path",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configfile.Read(args[0])
		if err != nil {
			return err
		}

		value, ok := configfile.Get(cfg, args[1])
		if !ok {
			return errors.NewConfigError(errors.ErrCodeConfigInvalid,
				"no value at "+args[1]).WithPath(args[0])
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <file> <path> <value>",
	Short: "Set the value at a dotted path and rewrite the file",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configfile.Read(args[0])
		if err != nil {
			return err
		}

		if err := configfile.Set(cfg, args[1], args[2]); err != nil {
			return err
		}
		return configfile.Write(args[0], cfg)
	},
}

var configMergeCmd = &cobra.Command{
	Use:   "merge <out> <base> <override>...",
	Short: "Deep-merge config files, later files winning",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		merged, err := configfile.Read(args[1])
		if err != nil {
			return err
		}

		for _, path := range args[2:] {
			override, err := configfile.Read(path)
			if err != nil {
				return err
			}
			merged = configfile.Merge(merged, override)
		}
		return configfile.Write(args[0], merged)
	},
}

var configConvertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Rewrite a config file in the format the output extension names",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configfile.Read(args[0])
		if err != nil {
			return err
		}
		return configfile.Write(args[1], cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configMergeCmd)
	configCmd.AddCommand(configConvertCmd)
}
