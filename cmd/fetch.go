package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milkywaygod2/sysutil/internal/webfetch"
)

var (
	fetchOutput string
	fetchLinks  bool
	fetchText   bool
	fetchCheck  bool
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Fetch a URL",
	Long: `Fetch a URL and print its body, save it to a file, or post-process
the HTML.

Examples:
  sysutil fetch https://example.com
  sysutil fetch https://example.com/file.zip -o file.zip
  sysutil fetch --links https://example.com
  sysutil fetch --text https://example.com
  sysutil fetch --check https://example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runFetchCommand,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "save the body to a file")
	fetchCmd.Flags().BoolVar(&fetchLinks, "links", false, "print the links found in the page")
	fetchCmd.Flags().BoolVar(&fetchText, "text", false, "print the page's visible text")
	fetchCmd.Flags().BoolVar(&fetchCheck, "check", false, "only report whether the URL responds")
}

func runFetchCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := webfetch.NewClient(cfg.Fetch.Timeout())
	url := args[0]
	ctx := cmd.Context()

	switch {
	case fetchCheck:
		if client.CheckURL(ctx, url) {
			fmt.Println("ok")
			return nil
		}
		return fmt.Errorf("%s is not reachable", url)
	case fetchOutput != "":
		if err := client.DownloadFile(ctx, url, fetchOutput); err != nil {
			return err
		}
		fmt.Println("saved to", fetchOutput)
		return nil
	case fetchLinks:
		body, err := client.Fetch(ctx, url)
		if err != nil {
			return err
		}
		links, err := webfetch.ExtractLinks(body, url)
		if err != nil {
			return err
		}
		for _, link := range links {
			fmt.Println(link)
		}
		return nil
	case fetchText:
		body, err := client.Fetch(ctx, url)
		if err != nil {
			return err
		}
		text, err := webfetch.ExtractText(body)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	default:
		body, err := client.Fetch(ctx, url)
		if err != nil {
			return err
		}
		fmt.Print(body)
		return nil
	}
}
