package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	generateOutput string
	generateJSON   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <source>",
	Short: "Generate a Markdown tutorial from a document",
	Long: `Generate a Markdown tutorial from a source document.

The source is a URL (http:// or https://) or a local file path. PDF and
HTML sources are parsed format-aware; anything else is treated as plain
text.

Examples:
  docent generate https://example.com/guide.html
  docent generate ./paper.pdf -o tutorial.md
  docent generate ./notes.txt --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		source := args[0]

		// Local sources are checked up front so a typo'd path fails fast
		// with a distinct exit code instead of burning a pipeline run.
		if !isURL(source) {
			if _, err := os.Stat(source); errors.Is(err, fs.ErrNotExist) {
				return exitf(2, "source file not found: %s", source)
			}
		}

		logger := newLogger()
		cm, err := loadConfig()
		if err != nil {
			return err
		}

		pipe := buildPipeline(cm.Get(), logger)
		res := pipe.Run(cmd.Context(), source)

		var output string
		if generateJSON {
			data, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			output = string(data)
		} else {
			output = res.Draft.Content
		}

		if generateOutput != "" {
			if err := os.WriteFile(generateOutput, []byte(output+"\n"), 0o644); err != nil {
				return err
			}
		} else {
			fmt.Println(output)
		}

		if res.Failed() {
			return exitf(3, "generation failed at %s stage: %s", res.FailedStage, res.Draft.ErrorMessage)
		}
		return nil
	},
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func init() {
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Write the tutorial to a file instead of stdout")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Emit the full run result as JSON")

	rootCmd.AddCommand(generateCmd)
}
