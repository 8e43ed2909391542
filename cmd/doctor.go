package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/milkywaygod2/sysutil/internal/netutil"
	"github.com/milkywaygod2/sysutil/internal/pybuild"
	"github.com/milkywaygod2/sysutil/internal/shellexec"
)

var doctorFormat string

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the host for the tools sysutil relies on",
	Long: `Check the host environment: Python interpreter, pip, the packager,
network reachability, and platform specifics.

Examples:
  sysutil doctor                 # Full environment check
  sysutil doctor --format json   # Output as JSON for tooling`,
	RunE: runDoctor,
}

// DiagnosticResult represents the result of a diagnostic check
type DiagnosticResult struct {
	Name       string `json:"name"`
	Status     string `json:"status"` // "ok", "warning", "error"
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// DoctorReport represents the complete diagnostic report
type DoctorReport struct {
	Timestamp  time.Time          `json:"timestamp"`
	Platform   string             `json:"platform"`
	Results    []DiagnosticResult `json:"results"`
	ErrorCount int                `json:"error_count"`
	WarnCount  int                `json:"warning_count"`
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().StringVar(&doctorFormat, "format", "text", "Output format (text, json)")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	python := cfg.Python.Interpreter
	if python == "" {
		python = "python3"
		if runtime.GOOS == "windows" {
			python = "python"
		}
	}

	ctx := cmd.Context()
	report := DoctorReport{
		Timestamp: time.Now(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	report.add(checkInterpreter(ctx, python))
	report.add(checkPip(ctx, python))
	report.add(checkPackager(ctx, python))
	report.add(checkNetwork())
	if runtime.GOOS != "windows" {
		report.add(checkShell())
	}

	switch doctorFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "text":
		printReport(report)
		if report.ErrorCount > 0 {
			return fmt.Errorf("%d checks failed", report.ErrorCount)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", doctorFormat)
	}
}

func (r *DoctorReport) add(result DiagnosticResult) {
	r.Results = append(r.Results, result)
	switch result.Status {
	case "error":
		r.ErrorCount++
	case "warning":
		r.WarnCount++
	}
}

func checkInterpreter(ctx context.Context, python string) DiagnosticResult {
	if !shellexec.CommandExists(python) {
		return DiagnosticResult{
			Name:       "python",
			Status:     "error",
			Message:    python + " not found in PATH",
			Suggestion: "install Python or set python.interpreter in .sysutil.yml",
		}
	}

	result, err := shellexec.RunArgs(ctx, []string{python, "--version"}, shellexec.Options{})
	if err != nil || !result.Success() {
		return DiagnosticResult{
			Name:    "python",
			Status:  "error",
			Message: python + " found but failed to report its version",
		}
	}
	version := strings.TrimSpace(result.Stdout + result.Stderr)
	return DiagnosticResult{Name: "python", Status: "ok", Message: version}
}

func checkPip(ctx context.Context, python string) DiagnosticResult {
	result, err := shellexec.RunArgs(ctx, []string{python, "-m", "pip", "--version"}, shellexec.Options{})
	if err != nil || !result.Success() {
		return DiagnosticResult{
			Name:       "pip",
			Status:     "error",
			Message:    "pip is not available",
			Suggestion: "run: " + python + " -m ensurepip --upgrade",
		}
	}
	return DiagnosticResult{
		Name:    "pip",
		Status:  "ok",
		Message: strings.TrimSpace(result.Stdout),
	}
}

func checkPackager(ctx context.Context, python string) DiagnosticResult {
	builder := pybuild.NewBuilder(python, nil)
	version, err := builder.Version(ctx)
	if err != nil {
		return DiagnosticResult{
			Name:       "pyinstaller",
			Status:     "warning",
			Message:    "pyinstaller is not installed",
			Suggestion: "sysutil build installs it on demand, or run: " + python + " -m pip install pyinstaller",
		}
	}
	return DiagnosticResult{Name: "pyinstaller", Status: "ok", Message: "version " + version}
}

func checkNetwork() DiagnosticResult {
	if !netutil.HasInternet(3 * time.Second) {
		return DiagnosticResult{
			Name:       "network",
			Status:     "warning",
			Message:    "no internet connectivity",
			Suggestion: "package installation and fetch commands need a connection",
		}
	}
	return DiagnosticResult{Name: "network", Status: "ok", Message: "internet reachable"}
}

func checkShell() DiagnosticResult {
	if !shellexec.CommandExists("sh") {
		return DiagnosticResult{
			Name:    "shell",
			Status:  "error",
			Message: "sh not found; --shell commands will fail",
		}
	}
	return DiagnosticResult{Name: "shell", Status: "ok", Message: "sh available"}
}

func printReport(report DoctorReport) {
	marks := map[string]string{"ok": "✓", "warning": "!", "error": "✗"}
	fmt.Println("sysutil doctor on", report.Platform)
	for _, r := range report.Results {
		fmt.Printf("  %s %-12s %s\n", marks[r.Status], r.Name, r.Message)
		if r.Suggestion != "" {
			fmt.Printf("      %s\n", r.Suggestion)
		}
	}
	fmt.Printf("%d checks, %d warnings, %d errors\n",
		len(report.Results), report.WarnCount, report.ErrorCount)
}
