package main

import (
	"github.com/spf13/cobra"
)

var processFormat string

var processCmd = &cobra.Command{
	Use:   "process <pdf>...",
	Short: "Extract and OCR one or more PDFs",
	Long: `Process PDFs through the extraction and OCR stages.

Each page is rendered to a cached JPEG, sent to the configured vision
language model, and the recognized text is cached alongside the image.
Interrupted runs resume from the cache. Output is saved incrementally as
pages complete, then assembled in the requested format.

Examples:
  auralens process book.pdf
  auralens process --format epub book.pdf
  auralens process a.pdf b.pdf c.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}

		for _, pdfPath := range args {
			if err := e.processDocument(cmd.Context(), pdfPath, processFormat); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	processCmd.Flags().StringVar(&processFormat, "format", "txt", "output format: txt, md, or epub")
}
