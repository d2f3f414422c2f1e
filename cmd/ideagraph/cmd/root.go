package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the ideagraph command tree.
func NewRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "ideagraph",
		Short: "Turn indented outlines into mind maps",
		Long: `ideagraph reads outlines, markdown, HTML, CSV, PDF and DOCX files and
turns them into a mind map tree rooted at "Document".

It can also list the revision history of a Google Docs document together
with each revision's plain-text export.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	logger := func(cmd *cobra.Command) *slog.Logger {
		if !verbose {
			return slog.New(slog.DiscardHandler)
		}
		return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	root.AddCommand(
		newParseCmd(logger),
		newRevisionsCmd(logger),
		newServeCmd(),
		newVersionCmd(),
	)
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}
