package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/milkywaygod2/sysutil/internal/shellexec"
)

// psCmd represents the ps command
var psCmd = &cobra.Command{
	Use:   "ps [name]",
	Short: "List running processes, optionally filtered by name",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		processes, err := shellexec.Processes(cmd.Context())
		if err != nil {
			return err
		}

		var filter string
		if len(args) == 1 {
			filter = strings.ToLower(args[0])
		}
		for _, p := range processes {
			if filter != "" && !strings.Contains(strings.ToLower(p.Name), filter) {
				continue
			}
			fmt.Println(processRow(p))
		}
		return nil
	},
}

func processRow(p shellexec.ProcessInfo) string {
	return fmt.Sprintf("%8s  %-20s %s", p.PID, p.User, p.Name)
}

// killCmd represents the kill command
var killCmd = &cobra.Command{
	Use:   "kill <name>",
	Short: "Kill every process with the given image name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return shellexec.KillByName(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(psCmd)
	rootCmd.AddCommand(killCmd)
}
