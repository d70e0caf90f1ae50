package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docentlabs/docent/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "docent",
	Short: "Turn documents into Markdown tutorials with LLM-powered analysis",
	Long: `Docent transforms source documents (PDF files, web pages, local text)
into structured Markdown tutorials.

The pipeline includes:
  - Source retrieval from URLs or local files
  - Format-aware parsing into content blocks
  - Per-block role classification and summarization
  - Outline construction and tutorial drafting
  - A final review pass for clarity and consistency`,
	Version: version.GitRelease,
}

// exitError carries a process exit code out through cobra.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.docent/config.yaml)",
	)

	rootCmd.AddCommand(versionCmd)
}

// exitf builds an exitError with a formatted message.
func exitf(code int, format string, args ...any) *exitError {
	return &exitError{code: code, msg: fmt.Sprintf(format, args...)}
}
