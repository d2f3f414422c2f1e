package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/ideagraph/internal/revisions"
	"github.com/dgallion1/ideagraph/internal/stats"
)

func newRevisionsCmd(logger func(*cobra.Command) *slog.Logger) *cobra.Command {
	var (
		token       string
		endpoint    string
		concurrency int
		summary     bool
	)

	cmd := &cobra.Command{
		Use:   "revisions <doc-id-or-link>",
		Short: "List a Google Docs document's revisions with their text",
		Example: `  ideagraph revisions 1AbCdEf --token "$DRIVE_ACCESS_TOKEN"
  ideagraph revisions https://docs.google.com/document/d/1AbCdEf/edit --summary`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = os.Getenv("DRIVE_ACCESS_TOKEN")
			}
			client := revisions.NewClient(revisions.Config{
				Endpoint:    endpoint,
				Concurrency: concurrency,
			}, stats.NewLatency(time.Hour), nil, logger(cmd))

			revs, err := client.List(cmd.Context(), token, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if summary {
				for _, r := range revs {
					fmt.Fprintf(out, "%s\t%s\t%d chars\n", r.ID, r.ModifiedTime, len([]rune(r.Content)))
				}
				return nil
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(revs)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Drive access token (default $DRIVE_ACCESS_TOKEN)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Drive API base URL override")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "parallel export downloads")
	cmd.Flags().BoolVar(&summary, "summary", false, "print one line per revision instead of JSON")
	return cmd
}
