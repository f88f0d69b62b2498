package cmd

import (
	"context"
	"fmt"

	"github.com/cli/go-gh/v2/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/yahsan2/srs-exporter/pkg/args"
	"github.com/yahsan2/srs-exporter/pkg/output"
	"github.com/yahsan2/srs-exporter/pkg/project"
	"github.com/yahsan2/srs-exporter/pkg/workitem"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the top work items of the project",
	Long: `List the first work items returned by a query against the configured project.

The query selects Epics of the project ordered by stack rank or by state. Only
the first --limit items (default 10) are fetched, all read at the same point in
time as the query itself.`,
	Example: `  # List the top 10 Epics by rank
  srs-exporter list

  # List Epics by state, most recently changed first
  srs-exporter list --policy state

  # Include descriptions and print as JSON
  srs-exporter list --policy description -o json

  # Fetch 25 Features as CSV
  srs-exporter list --type Feature --limit 25 -o csv

  # Open the project's work items in the web browser
  srs-exporter list --web`,
	RunE: runList,
}

func init() {
	args.AddQueryFlags(listCmd, nil)
	listCmd.Flags().BoolP("web", "w", false, "Open the project's work items in the web browser")

	rootCmd.AddCommand(listCmd)
}

// ListCommand runs a listing with a prepared fetcher
type ListCommand struct {
	fetcher   *workitem.Fetcher
	formatter *output.Formatter
}

func runList(cmd *cobra.Command, cmdArgs []string) error {
	opts, err := args.ParseQueryFlags(cmd, nil)
	if err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	a, err := loadApp("list")
	if err != nil {
		return err
	}

	urls := project.NewURLBuilder(&a.config.Connection)

	if webMode, _ := cmd.Flags().GetBool("web"); webMode {
		return openInBrowser(cmd, urls.GetWorkItemsURL())
	}

	query, err := a.newQuery(opts.Order, opts.WorkItemType)
	if err != nil {
		return err
	}

	fetcher, err := a.newFetcher()
	if err != nil {
		return err
	}

	command := &ListCommand{
		fetcher:   fetcher,
		formatter: output.NewFormatterWithWriter(opts.Format, cmd.OutOrStdout()).WithURLs(urls),
	}

	err = command.Execute(cmd.Context(), query, opts.Policy)
	a.writeMetrics()
	if err != nil && opts.Format == output.FormatJSON {
		// JSON consumers read the failure from stdout as well
		_ = command.formatter.FormatError(err)
	}
	return err
}

// Execute fetches the records and writes them with the policy
func (c *ListCommand) Execute(ctx context.Context, query string, policy output.Policy) error {
	if ctx == nil {
		ctx = context.Background()
	}

	records, err := c.fetcher.FetchTopItems(ctx, query, policy.Fields())
	if err != nil {
		return err
	}

	return c.formatter.FormatRecords(records, policy)
}

func openInBrowser(cmd *cobra.Command, url string) error {
	if url == "" {
		return fmt.Errorf("no project URL configured")
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Opening %s in your browser.\n", url)
	return browser.New("", cmd.OutOrStdout(), cmd.ErrOrStderr()).Browse(url)
}
