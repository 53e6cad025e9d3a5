package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"igcaption/pkg/report"
	"igcaption/pkg/storage"
	"igcaption/pkg/ui"
)

var reportOutput string

// reportCmd renders the HTML report of an earlier run
var reportCmd = &cobra.Command{
	Use:     "report <results.json>",
	Short:   "Build an HTML report from a saved results file",
	Example: `  igcaption report instagram_posts.json -o report.html`,
	Args:    cobra.ExactArgs(1),
	Run:     runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "report file (default: results file with .html)")
}

func runReport(cmd *cobra.Command, args []string) {
	source := args[0]
	store, err := storage.NewManager(filepath.Dir(source))
	if err != nil {
		ui.PrintError("Failed to open results", err.Error())
		os.Exit(1)
	}
	batch, err := store.LoadResults(filepath.Base(source))
	if err != nil {
		ui.PrintError("Failed to read results", err.Error())
		os.Exit(1)
	}

	target := reportOutput
	if target == "" {
		target = strings.TrimSuffix(source, filepath.Ext(source)) + ".html"
	}
	if err := report.Save(target, batch, "igcaption "+filepath.Base(source)); err != nil {
		ui.PrintError("Failed to write report", err.Error())
		os.Exit(1)
	}

	ui.PrintInfo("Posts", fmt.Sprintf("%d (%s)", len(batch), ui.RunSummary(batch)))
	ui.PrintSuccess("Report written: " + target)
}
