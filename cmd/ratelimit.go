package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/naka-gawa/github-code-survey/internal/gateway"
	"github.com/spf13/cobra"
)

var rateLimitCmd = &cobra.Command{
	Use:   "ratelimit",
	Short: "Shows the remaining GitHub API budget for searches",
	Long:  `Shows the core, search and code_search rate limit buckets for the current token (GITHUB_TOKEN, optional).`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)
		apiURL, _ := cmd.Flags().GetString("api-url")

		githubGateway, err := gateway.NewGitHubGateway(os.Getenv("GITHUB_TOKEN"), logger, gateway.Options{BaseURL: apiURL})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		buckets, err := githubGateway.FetchRateLimits(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printRateLimits(cmd.OutOrStdout(), buckets, time.Now())
	},
}

func printRateLimits(w io.Writer, buckets []gateway.RateLimitBucket, now time.Time) {
	for _, b := range buckets {
		resetIn := b.Reset.Sub(now).Truncate(time.Second)
		if resetIn < 0 {
			resetIn = 0
		}
		fmt.Fprintf(w, "%-12s %5d/%-5d resets in %s\n", b.Name, b.Remaining, b.Limit, resetIn)
	}
}

func init() {
	rootCmd.AddCommand(rateLimitCmd)
	rateLimitCmd.Flags().String("api-url", "", "GitHub API base URL (for GitHub Enterprise)")
}
