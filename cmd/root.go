// Package cmd provides the command-line interface for sysutil with
// configuration from multiple sources.
//
// Configuration precedence, highest first:
//  1. Command-line flags (--config, --log-level, ...)
//  2. SYSUTIL_CONFIG_FILE environment variable
//  3. Individual SYSUTIL_<SECTION>_<OPTION> environment variables
//  4. .sysutil.yml in the current directory
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/milkywaygod2/sysutil/internal/config"
	"github.com/milkywaygod2/sysutil/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sysutil",
	Short: "OS utilities: run commands, manage environments, package Python apps",
	Long: `sysutil wraps the OS chores that scripts reach for every day:
child processes, environment variables, file batches, web fetching, and
Python packaging.

Quick Start:
  sysutil run "ls -la"                  Run a command and show its output
  sysutil env list                      List environment variables
  sysutil fetch https://example.com     Fetch a URL
  sysutil venv create myenv             Create a Python virtual environment
  sysutil build app.py -r reqs.txt      Package a script into an executable
  sysutil batch organize ~/Downloads    Sort a directory by file type
  sysutil doctor                        Check the host for required tools`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .sysutil.yml, can also use SYSUTIL_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig initializes the configuration system.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("SYSUTIL_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sysutil")
	}

	// SYSUTIL_PYTHON_INTERPRETER, SYSUTIL_BUILD_ONEFILE, and so on.
	viper.SetEnvPrefix("SYSUTIL")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig returns the merged configuration for a command invocation.
func loadConfig() (*config.Config, error) {
	return config.Load()
}

// newLogger builds the CLI logger from the merged configuration.
func newLogger(cfg *config.Config) *logging.SysLogger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
}
