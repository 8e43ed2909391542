package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/milkywaygod2/sysutil/internal/csvutil"
)

// csvCmd groups the CSV subcommands.
var csvCmd = &cobra.Command{
	Use:   "csv",
	Short: "Inspect and reshape CSV files",
	Long: `Small CSV chores without opening a spreadsheet.

Examples:
  sysutil csv stats data.csv
  sysutil csv column data.csv email
  sysutil csv json data.csv
  sysutil csv merge out.csv part1.csv part2.csv`,
}

var csvStatsCmd = &cobra.Command{
	Use:   "stats <file.csv>",
	Short: "Show row, column, and empty-cell counts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := csvutil.Statistics(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("rows:        %d\n", stats.Rows)
		fmt.Printf("columns:     %d\n", stats.Columns)
		fmt.Printf("empty cells: %d\n", stats.EmptyCells)
		return nil
	},
}

var csvColumnCmd = &cobra.Command{
	Use:   "column <file.csv> <name>",
	Short: "Print one column's values",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := csvutil.Column(args[0], args[1])
		if err != nil {
			return err
		}
		for _, value := range values {
			fmt.Println(value)
		}
		return nil
	},
}

var csvJSONCmd = &cobra.Command{
	Use:   "json <file.csv>",
	Short: "Convert a CSV file to JSON on stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return csvutil.ToJSON(args[0], os.Stdout)
	},
}

var csvMergeCmd = &cobra.Command{
	Use:   "merge <out.csv> <in.csv>...",
	Short: "Concatenate CSV files, writing the header once",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return csvutil.Merge(args[0], args[1:]...)
	},
}

func init() {
	rootCmd.AddCommand(csvCmd)
	csvCmd.AddCommand(csvStatsCmd)
	csvCmd.AddCommand(csvColumnCmd)
	csvCmd.AddCommand(csvJSONCmd)
	csvCmd.AddCommand(csvMergeCmd)
}
