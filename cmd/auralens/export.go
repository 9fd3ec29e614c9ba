package main

import (
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <pdf>",
	Short: "Re-assemble output from cached page text",
	Long: `Assemble output for an already-processed PDF without calling the VLM.

Reads the cached page texts and writes them in the requested format. Fails
if the document was never processed.

Examples:
  auralens export book.pdf --format md
  auralens export book.pdf --format epub --output ~/books/book.epub`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}

		path := exportOutput
		if path == "" {
			path = e.outputPath(args[0], extFor(exportFormat))
		}
		return e.export(args[0], exportFormat, path)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "txt", "output format: txt, md, or epub")
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "output path (default: outbox or next to the PDF)")
}
