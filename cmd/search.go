package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/naka-gawa/github-code-survey/internal/config"
	"github.com/naka-gawa/github-code-survey/internal/gateway"
	"github.com/naka-gawa/github-code-survey/internal/report"
	"github.com/naka-gawa/github-code-survey/internal/usecase"
	"github.com/spf13/cobra"
)

type searchOptions struct {
	planPath      string
	terms         []string
	orgs          []string
	language      string
	outPath       string
	top           int
	transportWait time.Duration
	apiURL        string
	token         string
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Searches every term in every organization and writes the findings as JSON",
	Long: `Searches GitHub code for each search term in each organization, one query at a time,
aggregates the matches per term and per repository, writes the findings to a JSON
file and prints a ranked summary.

Terms and organizations come from a plan file (--plan, YAML or JSON with
"terms"/"codeStrings" and "organizations" lists) and/or --term and --org flags.
With no organizations every term is searched once without an org qualifier.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)

		opts := searchOptions{}
		opts.planPath, _ = cmd.Flags().GetString("plan")
		opts.terms, _ = cmd.Flags().GetStringArray("term")
		opts.orgs, _ = cmd.Flags().GetStringSlice("org")
		opts.language, _ = cmd.Flags().GetString("language")
		opts.outPath, _ = cmd.Flags().GetString("out")
		opts.top, _ = cmd.Flags().GetInt("top")
		opts.transportWait, _ = cmd.Flags().GetDuration("transport-wait")
		opts.apiURL, _ = cmd.Flags().GetString("api-url")
		opts.token = os.Getenv("GITHUB_TOKEN")
		if opts.token == "" {
			fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
			os.Exit(1)
		}

		if err := runSearch(ctx, opts, cmd.OutOrStdout(), logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runSearch(ctx context.Context, opts searchOptions, out io.Writer, logger *log.Logger) error {
	plan := &config.Plan{}
	if opts.planPath != "" {
		var err error
		plan, err = config.LoadPlan(opts.planPath)
		if err != nil {
			return err
		}
	}
	plan.Merge(opts.terms, opts.orgs)
	if err := plan.Normalize(); err != nil {
		return err
	}

	githubGateway, err := gateway.NewGitHubGateway(opts.token, logger, gateway.Options{
		TransportWait: opts.transportWait,
		BaseURL:       opts.apiURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	fetcher := usecase.NewBackoffFetcher(githubGateway, logger, usecase.WithLanguage(opts.language))
	writer := report.NewFileWriter(opts.outPath, logger)
	runner := usecase.NewRunner(fetcher, writer, logger)

	findings, err := runner.Run(ctx, usecase.ExpandPlan(plan.Terms, plan.Organizations))
	if err != nil {
		return err
	}

	if err := report.WriteSummary(out, findings, opts.top); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	fmt.Fprintf(out, "\nFindings written to %s\n", writer.Path())
	return nil
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringP("plan", "p", "", "Search plan file (YAML or JSON) listing terms and organizations")
	searchCmd.Flags().StringArrayP("term", "t", nil, "Search term (repeatable, taken verbatim)")
	searchCmd.Flags().StringSliceP("org", "o", nil, "Organization to search in (repeatable)")
	searchCmd.Flags().String("language", usecase.DefaultLanguage, "Language qualifier added to every search (empty to disable)")
	searchCmd.Flags().String("out", report.DefaultOutputPath, "Path of the findings JSON file")
	searchCmd.Flags().Int("top", report.DefaultTop, "Rows per ranking in the summary")
	searchCmd.Flags().Duration("transport-wait", 0, "Let the HTTP transport absorb secondary rate limits up to this long (0 disables)")
	searchCmd.Flags().String("api-url", "", "GitHub API base URL (for GitHub Enterprise)")
}
