package main

import (
	"github.com/spf13/cobra"

	"github.com/auralens/auralens/version"
)

var (
	cfgFile string
	homeDir string
)

var rootCmd = &cobra.Command{
	Use:   "auralens",
	Short: "Resumable PDF text extraction with VLM-powered OCR",
	Long: `AuraLens converts scanned PDFs into clean text using a vision language
model for OCR.

Processing runs in two resumable stages:
  - Extraction renders each page to a cached JPEG
  - OCR sends each cached image to the VLM and caches the page text

Both stages skip work already present in the page cache, so an interrupted
run picks up where it left off. Results can be exported as plain text,
markdown, or ePub.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ~/.auralens/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "auralens home directory (default: ~/.auralens)",
	)

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(rescanCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
