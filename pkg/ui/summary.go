package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"photoarchiver/pkg/crawler"
)

// maxListedFiles caps the file list in the summary panel
const maxListedFiles = 10

// RenderSummary renders the end-of-run panel for report
func RenderSummary(report *crawler.Report) string {
	if report == nil {
		report = &crawler.Report{}
	}

	row := func(label string, value int, style lipgloss.Style) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render(label),
			style.Inherit(valueStyle).Render(fmt.Sprintf("%d", value)),
		)
	}

	rows := []string{
		titleStyle.Render("ARCHIVE RUN COMPLETE"),
		row("Listings", report.Listings, valueStyle),
		row("Details", report.Details, valueStyle),
		row("Saved", report.Saved, successStyle),
		row("Skipped", report.Skipped, warningStyle),
		row("Failed", report.Failed, errorStyle),
	}

	if len(report.Files) > 0 {
		var files []string
		for i, f := range report.Files {
			if i == maxListedFiles {
				files = append(files, fmt.Sprintf("... and %d more", len(report.Files)-maxListedFiles))
				break
			}
			files = append(files, filepath.Base(f.Path))
		}
		rows = append(rows, "", fileStyle.Render(strings.Join(files, "\n")))
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// PrintSummary prints the end-of-run panel
func PrintSummary(report *crawler.Report) {
	fmt.Fprintln(Output, RenderSummary(report))
}
