package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milkywaygod2/sysutil/internal/pybuild"
)

var (
	buildReqs    string
	buildVenvDir string
	buildOneFile bool
	buildConsole bool
	buildIcon    string
	buildName    string
	buildDist    string
	buildHidden  []string
	buildData    []string
	buildClean   bool
	buildAnalyze bool
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build <script.py>",
	Short: "Package a Python script into a standalone executable",
	Long: `Package a Python script with PyInstaller. With --requirements the
whole pipeline runs in a fresh virtual environment: create the env,
install the requirements, install the packager, build. Steps run in
order and the first failure stops the pipeline.

Examples:
  sysutil build app.py --onefile
  sysutil build app.py -r requirements.txt --onefile --name myapp
  sysutil build app.py --add-data assets:assets --hidden-import requests
  sysutil build app.py --analyze`,
	Args: cobra.ExactArgs(1),
	RunE: runBuildCommand,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildReqs, "requirements", "r", "", "requirements file; builds in a fresh virtual environment")
	buildCmd.Flags().StringVar(&buildVenvDir, "venv", "", "virtual environment directory for --requirements builds")
	buildCmd.Flags().BoolVar(&buildOneFile, "onefile", false, "bundle into a single executable")
	buildCmd.Flags().BoolVar(&buildConsole, "console", true, "keep the console window (Windows)")
	buildCmd.Flags().StringVar(&buildIcon, "icon", "", "icon file for the executable")
	buildCmd.Flags().StringVar(&buildName, "name", "", "executable name")
	buildCmd.Flags().StringVar(&buildDist, "dist", "", "output directory")
	buildCmd.Flags().StringSliceVar(&buildHidden, "hidden-import", nil, "module the static analysis misses (repeatable)")
	buildCmd.Flags().StringSliceVar(&buildData, "add-data", nil, "src:dest data pair to bundle (repeatable)")
	buildCmd.Flags().BoolVar(&buildClean, "clean", false, "wipe the packager cache before building")
	buildCmd.Flags().BoolVar(&buildAnalyze, "analyze", false, "only print the script's imported modules")

	addFlagValidation(buildCmd, "requirements", validateFileExists)
	addFlagValidation(buildCmd, "icon", validateFileExists)
}

func runBuildCommand(cmd *cobra.Command, args []string) error {
	script := args[0]

	if buildAnalyze {
		modules, err := pybuild.AnalyzeImports(script)
		if err != nil {
			return err
		}
		for _, module := range modules {
			fmt.Println(module)
		}
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := pybuild.BuildOptions{
		OneFile:       buildOneFile || cfg.Build.OneFile,
		Console:       buildConsole,
		Icon:          buildIcon,
		HiddenImports: buildHidden,
		Clean:         buildClean,
		DistDir:       buildDist,
		Name:          buildName,
	}
	if opts.DistDir == "" {
		opts.DistDir = cfg.Build.DistDir
	}
	for _, pair := range buildData {
		src, dest, ok := splitDataPair(pair)
		if !ok {
			return fmt.Errorf("invalid --add-data %q, want src:dest", pair)
		}
		opts.AddData = append(opts.AddData, [2]string{src, dest})
	}

	builder := pybuild.NewBuilder(cfg.Python.Interpreter, newLogger(cfg))
	ctx := cmd.Context()

	var executable string
	if buildReqs != "" {
		executable, err = builder.BuildFromRequirements(ctx, script, buildReqs, buildVenvDir, opts)
	} else {
		if err = builder.EnsureInstalled(ctx); err != nil {
			return err
		}
		executable, err = builder.Build(ctx, script, opts)
	}
	if err != nil {
		return err
	}

	fmt.Println("built", executable)
	return nil
}

// splitDataPair splits "src:dest" at the last colon so Windows drive
// letters survive.
func splitDataPair(pair string) (string, string, bool) {
	for i := len(pair) - 1; i >= 0; i-- {
		if pair[i] == ':' {
			if i == 0 || i == len(pair)-1 {
				return "", "", false
			}
			return pair[:i], pair[i+1:], true
		}
	}
	return "", "", false
}
