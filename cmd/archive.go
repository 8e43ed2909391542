package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milkywaygod2/sysutil/internal/archive"
)

// archiveCmd groups the archive subcommands.
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Create, list, and extract zip and tar.gz archives",
	Long: `The archive format follows the file extension: .zip, .tar.gz,
.tgz, or .tar.

Examples:
  sysutil archive create backup.tar.gz ./project
  sysutil archive list backup.tar.gz
  sysutil archive extract backup.tar.gz ./restored`,
}

var archiveCreateCmd = &cobra.Command{
	Use:   "create <archive> <source>",
	Short: "Archive a file or directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := archive.Create(args[0], args[1]); err != nil {
			return err
		}
		info, err := archive.GetInfo(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d entries, %d bytes compressed\n",
			args[0], info.Entries, info.CompressedSize)
		return nil
	},
}

var archiveListCmd = &cobra.Command{
	Use:   "list <archive>",
	Short: "List an archive's entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := archive.List(args[0])
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%10d  %s\n", e.Size, e.Name)
		}
		return nil
	},
}

var archiveExtractCmd = &cobra.Command{
	Use:   "extract <archive> [dest]",
	Short: "Extract an archive",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest := "."
		if len(args) == 2 {
			dest = args[1]
		}
		entry, _ := cmd.Flags().GetString("entry")
		if entry != "" {
			return archive.ExtractEntry(args[0], entry, dest)
		}
		return archive.Extract(args[0], dest)
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveCreateCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveExtractCmd)

	archiveExtractCmd.Flags().String("entry", "", "extract only this entry")
}
