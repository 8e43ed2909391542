package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/milkywaygod2/sysutil/internal/textutil"
)

// textCmd groups the text subcommands.
var textCmd = &cobra.Command{
	Use:   "text",
	Short: "Convert encodings and extract from text files",
	Long: `Text chores: encoding conversion, tag stripping, extraction.

Examples:
  sysutil text convert legacy.txt --from euc-kr --to utf-8 -o out.txt
  sysutil text strip page.html
  sysutil text extract contacts.txt --emails
  sysutil text slug "Release Notes: v2.1"`,
}

var (
	textFrom   string
	textTo     string
	textOutput string
)

var textConvertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Re-encode a file between character encodings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		converted, err := textutil.Convert(data, textFrom, textTo)
		if err != nil {
			return err
		}

		if textOutput == "" {
			_, err = os.Stdout.Write(converted)
			return err
		}
		return os.WriteFile(textOutput, converted, 0644)
	},
}

var textStripCmd = &cobra.Command{
	Use:   "strip <file.html>",
	Short: "Strip HTML tags and print the remaining text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Println(textutil.NormalizeWhitespace(textutil.StripTags(string(data))))
		return nil
	},
}

var (
	extractEmails bool
	extractURLs   bool
)

var textExtractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "List email addresses or URLs found in a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		var found []string
		if extractEmails {
			found = append(found, textutil.ExtractEmails(string(data))...)
		}
		if extractURLs || !extractEmails {
			found = append(found, textutil.ExtractURLs(string(data))...)
		}
		for _, match := range found {
			fmt.Println(match)
		}
		return nil
	},
}

var textCountCmd = &cobra.Command{
	Use:   "count <file>",
	Short: "Count whitespace-separated words in a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Println(textutil.WordCount(string(data)))
		return nil
	},
}

var textSlugCmd = &cobra.Command{
	Use:   "slug <text>...",
	Short: "Turn text into a URL-safe slug",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(textutil.Slugify(strings.Join(args, " ")))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(textCmd)
	textCmd.AddCommand(textConvertCmd)
	textCmd.AddCommand(textStripCmd)
	textCmd.AddCommand(textExtractCmd)
	textCmd.AddCommand(textCountCmd)
	textCmd.AddCommand(textSlugCmd)

	textConvertCmd.Flags().StringVar(&textFrom, "from", "utf-8", "source encoding label")
	textConvertCmd.Flags().StringVar(&textTo, "to", "utf-8", "target encoding label")
	textConvertCmd.Flags().StringVarP(&textOutput, "output", "o", "", "write to a file instead of stdout")

	textExtractCmd.Flags().BoolVar(&extractEmails, "emails", false, "extract email addresses")
	textExtractCmd.Flags().BoolVar(&extractURLs, "urls", false, "extract URLs (default when no flag is given)")
}
