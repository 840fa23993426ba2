package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sonarchecker/sonarqube-checker/internal/i18n"
)

type Formatter interface {
	Format(report *Report) (string, error)
}

// analysisDateLayouts are the timestamp shapes the server is known to
// produce. SonarQube emits the first form (`2024-01-15T12:00:00+0000`).
var analysisDateLayouts = []string{
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.000-0700",
	time.RFC3339,
}

type MarkdownFormatter struct {
	labels i18n.Labels
}

func NewMarkdownFormatter(labels i18n.Labels) *MarkdownFormatter {
	return &MarkdownFormatter{labels: labels}
}

func (f *MarkdownFormatter) Format(report *Report) (string, error) {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("# %s\n\n", f.labels.ReportTitle))
	output.WriteString(fmt.Sprintf("%s: %s\n\n", f.labels.Generated,
		report.GeneratedAt.Format("2006-01-02 15:04:05")))
	output.WriteString("---\n\n")

	for i := range report.Projects {
		f.writeProjectSection(&output, &report.Projects[i])
	}

	return output.String(), nil
}

func (f *MarkdownFormatter) writeProjectSection(output *strings.Builder, project *ProjectReport) {
	output.WriteString(fmt.Sprintf("## %s: %s\n\n", f.labels.Project, project.ProjectKey))
	output.WriteString(fmt.Sprintf("**%s:** %s\n\n", f.labels.LastAnalysis,
		f.FormatAnalysisDate(project.LastAnalysis)))
	output.WriteString(fmt.Sprintf("**%s:**\n\n", f.labels.LatestIssues))
	output.WriteString(f.buildIssuesTable(project.Issues))
	output.WriteString("\n\n---\n\n")
}

// FormatAnalysisDate normalizes a server timestamp for display. An
// empty value means the project was never analyzed. Timestamps are
// shown as wall-clock time with the offset stripped, not converted;
// anything that fails to parse is returned verbatim.
func (f *MarkdownFormatter) FormatAnalysisDate(raw string) string {
	if raw == "" {
		return f.labels.NoAnalysisAvailable
	}

	for _, layout := range analysisDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02 15:04:05") + " UTC"
		}
	}

	return raw
}

func (f *MarkdownFormatter) buildIssuesTable(issues []Issue) string {
	if len(issues) == 0 {
		return f.labels.NoOpenIssues
	}

	var table strings.Builder
	table.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
		f.labels.Severity, f.labels.Message, f.labels.Component, f.labels.Line))
	table.WriteString("|----------|---------|-----------|------|\n")

	for _, issue := range issues {
		table.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			escapeCell(string(issue.Severity)),
			escapeCell(issue.Message),
			escapeCell(issue.Component),
			escapeCell(formatLine(issue.Line))))
	}

	return table.String()
}

// escapeCell escapes pipe characters so free-text fields cannot break
// table cells. Severity and line are enumerable/numeric but pass
// through the same function for uniformity.
func escapeCell(text string) string {
	return strings.ReplaceAll(text, "|", "\\|")
}

func formatLine(line int) string {
	if line <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", line)
}

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) Format(report *Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	return string(data), nil
}

func GetFormatter(format string, labels i18n.Labels) Formatter {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONFormatter()
	case "markdown", "md":
		fallthrough
	default:
		return NewMarkdownFormatter(labels)
	}
}
