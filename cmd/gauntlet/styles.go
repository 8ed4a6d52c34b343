package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gauntlet/internal/results"
)

// Terminal styles for command output. Semantic colors only; no theming.
var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
)

// verdictStyle picks the color for a verdict string.
func verdictStyle(verdict string) lipgloss.Style {
	switch verdict {
	case results.VerdictPass:
		return passStyle
	case results.VerdictFail:
		return failStyle
	default:
		return errorStyle
	}
}

// renderTable lays out rows under headers with column widths computed from
// the widest cell. Styled cells are welcome; widths use lipgloss.Width so
// color codes do not skew the layout.
func renderTable(title string, headers []string, rows [][]string) string {
	var sb strings.Builder

	if title != "" {
		sb.WriteString(titleStyle.Render(title))
		sb.WriteString("\n")
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				if w := lipgloss.Width(cell); w > widths[i] {
					widths[i] = w
				}
			}
		}
	}
	for i := range widths {
		widths[i] += 2
	}

	total := len(headers) - 1
	for _, w := range widths {
		total += w
	}

	for i, h := range headers {
		sb.WriteString(headerStyle.Width(widths[i]).Render(h))
		if i < len(headers)-1 {
			sb.WriteString(mutedStyle.Render("|"))
		}
	}
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				sb.WriteString(cellStyle.Width(widths[i]).Render(cell))
				if i < len(row)-1 {
					sb.WriteString(mutedStyle.Render("|"))
				}
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderSummary renders the per-definition breakdown of a run followed by a
// totals line.
func renderSummary(sum results.Summary) string {
	rows := make([][]string, 0, len(sum.Definitions))
	for _, d := range sum.Definitions {
		rows = append(rows, []string{
			d.Definition,
			fmt.Sprintf("%d", d.Total),
			passStyle.Render(fmt.Sprintf("%d", d.Passed)),
			failStyle.Render(fmt.Sprintf("%d", d.Failed)),
			errorStyle.Render(fmt.Sprintf("%d", d.Errored)),
		})
	}

	var sb strings.Builder
	sb.WriteString(renderTable("Results", []string{"Definition", "Samples", "Pass", "Fail", "Error"}, rows))
	sb.WriteString(fmt.Sprintf("\nTotal: %d samples, %d passed, %d failed, %d errored (pass rate %.1f%%)\n",
		sum.Total, sum.Passed, sum.Failed, sum.Errored, sum.PassRate()*100))
	return sb.String()
}
