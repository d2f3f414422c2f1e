package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/ideagraph/internal/mindmap"
	"github.com/dgallion1/ideagraph/internal/parser"
	"github.com/dgallion1/ideagraph/internal/render"
)

func newParseCmd(logger func(*cobra.Command) *slog.Logger) *cobra.Command {
	var (
		format    string
		tabWidth  int
		stdinName string
		noPdftext bool
	)

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a file into a mind map",
		Long: `Parse a file into a mind map and print it.

Use "-" to read standard input; --name then picks the parser by extension.`,
		Example: `  ideagraph parse notes.txt
  ideagraph parse plan.md --format mermaid
  cat ideas.txt | ideagraph parse - --format outline`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := render.ForFormat(format)
			if err != nil {
				return err
			}

			filename := args[0]
			var in io.Reader
			if filename == "-" {
				in = cmd.InOrStdin()
				filename = stdinName
			} else {
				f, err := os.Open(filename)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			data, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("read %s: %w", filename, err)
			}

			b := mindmap.NewBuilder(parser.Options{
				TabWidth:          tabWidth,
				FallbackPdftotext: !noPdftext,
			}, nil, logger(cmd))
			res, err := b.Build(data, filename)
			if err != nil {
				return err
			}
			return renderer.Write(cmd.OutOrStdout(), res.Root)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, mermaid or outline")
	cmd.Flags().IntVar(&tabWidth, "tab-width", 1, "columns per tab stop when measuring indentation")
	cmd.Flags().StringVar(&stdinName, "name", "stdin.txt", "file name used to pick a parser for standard input")
	cmd.Flags().BoolVar(&noPdftext, "no-pdftotext", false, "do not fall back to the pdftotext binary")
	return cmd
}
