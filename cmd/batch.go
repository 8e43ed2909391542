package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/milkywaygod2/sysutil/internal/batch"
)

var (
	batchPrefix   string
	batchSuffix   string
	batchNumbered bool
	batchPattern  string
	batchRemove   bool
)

// batchCmd groups the batch file-operation subcommands.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Apply an operation across every matching file in a directory",
	Long: `Batch operations over a directory: rename, convert extensions,
organize by file type, find duplicates, compress.

Examples:
  sysutil batch rename ./photos --prefix trip_ --numbered
  sysutil batch convert ./photos jpeg jpg
  sysutil batch organize ~/Downloads
  sysutil batch organize ~/Downloads --watch
  sysutil batch duplicates ./docs
  sysutil batch compress ./logs --pattern "*.log" --remove`,
}

func reportResult(result batch.Result) error {
	fmt.Printf("%d files processed\n", result.Processed)
	for _, fe := range result.Errors {
		fmt.Fprintln(os.Stderr, "failed:", fe.Error())
	}
	if !result.OK() {
		return fmt.Errorf("%d files failed", len(result.Errors))
	}
	return nil
}

var batchRenameCmd = &cobra.Command{
	Use:   "rename <dir>",
	Short: "Rename matching files with a prefix, suffix, or number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := batch.Rename(args[0], batchPattern, batch.RenameOptions{
			Prefix:   batchPrefix,
			Suffix:   batchSuffix,
			Numbered: batchNumbered,
		})
		if err != nil {
			return err
		}
		return reportResult(result)
	},
}

var batchConvertCmd = &cobra.Command{
	Use:   "convert <dir> <from-ext> <to-ext>",
	Short: "Rename every *.from file to *.to",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := batch.ConvertExtension(args[0], args[1], args[2])
		if err != nil {
			return err
		}
		return reportResult(result)
	},
}

var batchOrganizeCmd = &cobra.Command{
	Use:   "organize <dir>",
	Short: "Move files into per-extension subfolders",
	Long: `Move every file in a directory into a subfolder named after its
extension. With --watch the command keeps running and organizes files
as they arrive, until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")
		if !watch {
			result, err := batch.Organize(args[0])
			if err != nil {
				return err
			}
			return reportResult(result)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		watcher, err := batch.NewWatcher(args[0], cfg.Watch.Debounce(), newLogger(cfg))
		if err != nil {
			return err
		}
		defer watcher.Stop()

		watcher.Start(cmd.Context())
		fmt.Println("watching", args[0], "(ctrl-c to stop)")

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		select {
		case <-stop:
		case <-cmd.Context().Done():
		}
		return nil
	},
}

var batchDuplicatesCmd = &cobra.Command{
	Use:   "duplicates <dir>",
	Short: "Find files with identical content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")
		groups, err := batch.FindDuplicates(args[0], recursive)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			fmt.Println("no duplicates")
			return nil
		}
		for digest, group := range groups {
			fmt.Println(digest[:12] + ":")
			for _, path := range group {
				fmt.Println("  " + path)
			}
		}
		return nil
	},
}

var batchCompressCmd = &cobra.Command{
	Use:   "compress <dir>",
	Short: "Gzip matching files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := batch.Compress(args[0], batchPattern, batchRemove)
		if err != nil {
			return err
		}
		return reportResult(result)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.AddCommand(batchRenameCmd)
	batchCmd.AddCommand(batchConvertCmd)
	batchCmd.AddCommand(batchOrganizeCmd)
	batchCmd.AddCommand(batchDuplicatesCmd)
	batchCmd.AddCommand(batchCompressCmd)

	batchCmd.PersistentFlags().StringVar(&batchPattern, "pattern", "*", "glob pattern selecting files")
	batchRenameCmd.Flags().StringVar(&batchPrefix, "prefix", "", "prepend to each name")
	batchRenameCmd.Flags().StringVar(&batchSuffix, "suffix", "", "insert before the extension")
	batchRenameCmd.Flags().BoolVar(&batchNumbered, "numbered", false, "append a sequence number")
	batchOrganizeCmd.Flags().Bool("watch", false, "keep watching and organize new files")
	batchDuplicatesCmd.Flags().Bool("recursive", false, "descend into subdirectories")
	batchCompressCmd.Flags().BoolVar(&batchRemove, "remove", false, "remove originals after compressing")
}
