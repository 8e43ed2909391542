package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/milkywaygod2/sysutil/internal/pyenv"
)

var (
	venvClear      bool
	venvSystemSite bool
	venvUpgrade    bool
	venvReqs       string
	venvVersion    string
)

// venvCmd groups the virtual-environment subcommands.
var venvCmd = &cobra.Command{
	Use:   "venv",
	Short: "Manage Python virtual environments",
	Long: `Create, inspect, and populate Python virtual environments. Named
environments live under the configured venv directory; a path argument
containing a separator is used as-is.

Examples:
  sysutil venv create myenv
  sysutil venv install myenv requests --version 2.31.0
  sysutil venv install myenv -r requirements.txt
  sysutil venv list myenv
  sysutil venv freeze myenv > requirements.txt
  sysutil venv remove myenv`,
}

// venvPath resolves a name to the configured venv directory; explicit
// paths pass through.
func venvPath(venvDir, name string) string {
	if filepath.Base(name) != name {
		return name
	}
	return filepath.Join(venvDir, name)
}

func venvManager() (*pyenv.Manager, string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, "", err
	}
	m := pyenv.NewManager(newLogger(cfg))
	if cfg.Python.Interpreter != "" {
		m.Python = cfg.Python.Interpreter
	}
	return m, cfg.Python.VenvDir, nil
}

var venvCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a virtual environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := pyenv.EnsureVenvName(args[0]); err != nil {
			return err
		}
		m, venvDir, err := venvManager()
		if err != nil {
			return err
		}
		path := venvPath(venvDir, args[0])
		if err := m.Create(cmd.Context(), path, pyenv.CreateOptions{
			SystemSitePackages: venvSystemSite,
			Clear:              venvClear,
		}); err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	},
}

var venvRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a virtual environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, venvDir, err := venvManager()
		if err != nil {
			return err
		}
		return m.Remove(cmd.Context(), venvPath(venvDir, args[0]))
	},
}

var venvInstallCmd = &cobra.Command{
	Use:   "install <name> [package]",
	Short: "Install a package or requirements file into an environment",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, venvDir, err := venvManager()
		if err != nil {
			return err
		}

		opts := pyenv.InstallOptions{
			Requirements: venvReqs,
			Version:      venvVersion,
			Upgrade:      venvUpgrade,
		}
		if len(args) == 2 {
			opts.Package = args[1]
		}
		return m.Install(cmd.Context(), venvPath(venvDir, args[0]), opts)
	},
}

var venvListCmd = &cobra.Command{
	Use:   "list <name>",
	Short: "List the packages installed in an environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, venvDir, err := venvManager()
		if err != nil {
			return err
		}
		packages, err := m.Packages(cmd.Context(), venvPath(venvDir, args[0]))
		if err != nil {
			return err
		}
		for _, pkg := range packages {
			fmt.Printf("%s==%s\n", pkg.Name, pkg.Version)
		}
		return nil
	},
}

var venvFreezeCmd = &cobra.Command{
	Use:   "freeze <name>",
	Short: "Print the environment's requirements",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, venvDir, err := venvManager()
		if err != nil {
			return err
		}
		return m.Freeze(cmd.Context(), venvPath(venvDir, args[0]), os.Stdout)
	},
}

var venvInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show an environment's interpreter and configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, venvDir, err := venvManager()
		if err != nil {
			return err
		}
		info, err := m.Info(venvPath(venvDir, args[0]))
		if err != nil {
			return err
		}
		fmt.Println("path:  ", info.Path)
		fmt.Println("python:", info.PythonPath)
		fmt.Println("pip:   ", info.PipPath)
		for key, value := range info.Config {
			fmt.Printf("%s: %s\n", key, value)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(venvCmd)
	venvCmd.AddCommand(venvCreateCmd)
	venvCmd.AddCommand(venvRemoveCmd)
	venvCmd.AddCommand(venvInstallCmd)
	venvCmd.AddCommand(venvListCmd)
	venvCmd.AddCommand(venvFreezeCmd)
	venvCmd.AddCommand(venvInfoCmd)

	venvCreateCmd.Flags().BoolVar(&venvClear, "clear", false, "recreate when the environment exists")
	venvCreateCmd.Flags().BoolVar(&venvSystemSite, "system-site-packages", false, "give the environment access to system packages")
	venvInstallCmd.Flags().StringVarP(&venvReqs, "requirements", "r", "", "requirements file to install")
	venvInstallCmd.Flags().StringVar(&venvVersion, "version", "", "exact version pin for the package")
	venvInstallCmd.Flags().BoolVarP(&venvUpgrade, "upgrade", "U", false, "upgrade the package if already installed")
}
