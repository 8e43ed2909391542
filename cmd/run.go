package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/milkywaygod2/sysutil/internal/shellexec"
)

var (
	runShell   bool
	runStream  bool
	runDir     string
	runTimeout time.Duration
	runStdin   string
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <command>",
	Short: "Run a command and report its outcome",
	Long: `Run a child process, capture its output, and exit with the child's
exit code. Without --shell the command line is split into arguments
directly; with --shell it goes through cmd /C or sh -c.

Examples:
  sysutil run "ls -la"
  sysutil run --shell "ls *.go | wc -l"
  sysutil run --stream "make test"
  sysutil run --timeout 30s "slow-tool --all"`,
	Args: cobra.ExactArgs(1),
	RunE: runRunCommand,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runShell, "shell", false, "run through the platform shell")
	runCmd.Flags().BoolVar(&runStream, "stream", false, "stream output line by line instead of capturing")
	runCmd.Flags().StringVar(&runDir, "dir", "", "working directory for the child")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "kill the child after this duration")
	runCmd.Flags().StringVar(&runStdin, "stdin", "", "string fed to the child's standard input")
}

func runRunCommand(cmd *cobra.Command, args []string) error {
	opts := shellexec.Options{
		Shell:   runShell,
		Dir:     runDir,
		Timeout: runTimeout,
		Stdin:   runStdin,
	}

	var result shellexec.Result
	var err error
	if runStream {
		result, err = shellexec.RunStreaming(cmd.Context(), args[0], opts, func(line string) {
			fmt.Println(line)
		})
	} else {
		result, err = shellexec.Run(cmd.Context(), args[0], opts)
		fmt.Print(result.Stdout)
		fmt.Fprint(os.Stderr, result.Stderr)
	}
	if err != nil {
		return err
	}

	if !result.Success() {
		os.Exit(result.ExitCode)
	}
	return nil
}
