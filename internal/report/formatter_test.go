package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sonarchecker/sonarqube-checker/internal/i18n"
)

func englishLabels(t *testing.T) i18n.Labels {
	t.Helper()
	labels, err := i18n.Load("en")
	if err != nil {
		t.Fatalf("Failed to load labels: %v", err)
	}
	return labels
}

func TestFormatAnalysisDate(t *testing.T) {
	formatter := NewMarkdownFormatter(englishLabels(t))

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"sonarqube offset format", "2024-01-15T12:00:00+0000", "2024-01-15 12:00:00 UTC"},
		{"another timestamp", "2024-01-15T10:30:00+0000", "2024-01-15 10:30:00 UTC"},
		{"non-zero offset is stripped, not converted", "2024-01-15T12:00:00+0300", "2024-01-15 12:00:00 UTC"},
		{"rfc3339", "2024-01-15T12:00:00Z", "2024-01-15 12:00:00 UTC"},
		{"fractional seconds", "2024-01-15T12:00:00.000+0000", "2024-01-15 12:00:00 UTC"},
		{"unparseable input returned verbatim", "not-a-date", "not-a-date"},
		{"absent timestamp", "", "No analysis available"},
	}

	for _, test := range tests {
		result := formatter.FormatAnalysisDate(test.input)
		if result != test.expected {
			t.Errorf("%s: for input %q, expected %q, got %q",
				test.name, test.input, test.expected, result)
		}
	}
}

func TestBuildIssuesTable_Empty(t *testing.T) {
	formatter := NewMarkdownFormatter(englishLabels(t))

	first := formatter.buildIssuesTable(nil)
	if first != "No open issues found." {
		t.Errorf("Expected placeholder for empty issues, got %q", first)
	}

	second := formatter.buildIssuesTable([]Issue{})
	if second != first {
		t.Errorf("Placeholder should be identical on repeated calls: %q vs %q", first, second)
	}
}

func TestBuildIssuesTable_Rows(t *testing.T) {
	formatter := NewMarkdownFormatter(englishLabels(t))

	issues := []Issue{
		{Severity: SeverityMajor, Message: "Remove unused variable", Component: "project:src/main.py", Line: 42},
		{Severity: SeverityMinor, Message: "Add comment", Component: "project:src/utils.py", Line: 15},
	}

	table := formatter.buildIssuesTable(issues)

	if !strings.Contains(table, "| Severity | Message | Component | Line |") {
		t.Error("Table should contain the header row")
	}

	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	if len(lines) != 2+len(issues) {
		t.Errorf("Expected %d lines (header + separator + rows), got %d", 2+len(issues), len(lines))
	}

	if !strings.Contains(lines[2], "Remove unused variable") || !strings.Contains(lines[3], "Add comment") {
		t.Error("Rows should appear in input order")
	}

	if strings.Contains(table, "\\") {
		t.Error("Pipe-free input should produce no escaping artifacts")
	}

	if !strings.Contains(table, "| MAJOR | Remove unused variable | project:src/main.py | 42 |") {
		t.Error("Row should render all four cells verbatim")
	}
}

func TestBuildIssuesTable_EscapesPipes(t *testing.T) {
	formatter := NewMarkdownFormatter(englishLabels(t))

	issues := []Issue{
		{Severity: SeverityMajor, Message: "Error: expected | got something else", Component: "project:file.py", Line: 10},
	}

	table := formatter.buildIssuesTable(issues)

	if !strings.Contains(table, `expected \| got`) {
		t.Errorf("Pipe in message should be escaped, got:\n%s", table)
	}
	if !strings.Contains(table, "| MAJOR |") || !strings.Contains(table, "| 10 |") {
		t.Error("Row should otherwise stay intact")
	}
}

func TestBuildIssuesTable_MissingLine(t *testing.T) {
	formatter := NewMarkdownFormatter(englishLabels(t))

	issues := []Issue{
		{Severity: SeverityInfo, Message: "File-level finding", Component: "project:README.md"},
	}

	table := formatter.buildIssuesTable(issues)
	if !strings.Contains(table, "| N/A |") {
		t.Errorf("Issues without a line should render the N/A placeholder, got:\n%s", table)
	}
}

func TestEscapeCell(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain text", "plain text"},
		{"a|b", `a\|b`},
		{"||", `\|\|`},
		{"", ""},
	}

	for _, test := range tests {
		result := escapeCell(test.input)
		if result != test.expected {
			t.Errorf("For input %q, expected %q, got %q", test.input, test.expected, result)
		}
	}
}

func TestMarkdownFormatter_Format(t *testing.T) {
	formatter := NewMarkdownFormatter(englishLabels(t))

	generatedAt := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	analysisReport := &Report{
		GeneratedAt: generatedAt,
		Projects: []ProjectReport{
			{
				ProjectKey:   "first-project",
				LastAnalysis: "2024-01-15T12:00:00+0000",
				Issues: []Issue{
					{Severity: SeverityCritical, Message: "Security vulnerability detected", Component: "first-project:src/auth.py", Line: 100},
				},
			},
			{
				// A project whose fetches degraded still gets a section.
				ProjectKey: "broken-project",
				Issues:     []Issue{},
			},
		},
	}

	output, err := formatter.Format(analysisReport)
	if err != nil {
		t.Fatalf("Failed to format report: %v", err)
	}

	if !strings.Contains(output, "# SonarQube Analysis Report") {
		t.Error("Output should contain the report title")
	}
	if !strings.Contains(output, "Generated: 2024-03-01 09:30:00") {
		t.Error("Output should contain the generation timestamp")
	}
	if !strings.Contains(output, "## Project: first-project") {
		t.Error("Output should contain the first project section")
	}
	if !strings.Contains(output, "**Last Analysis:** 2024-01-15 12:00:00 UTC") {
		t.Error("Output should contain the formatted analysis date")
	}
	if !strings.Contains(output, "Security vulnerability detected") {
		t.Error("Output should contain the issue message")
	}

	if !strings.Contains(output, "**Last Analysis:** No analysis available") {
		t.Error("Degraded project should render the no-analysis placeholder")
	}
	if !strings.Contains(output, "No open issues found.") {
		t.Error("Degraded project should render the no-issues placeholder")
	}

	first := strings.Index(output, "first-project")
	second := strings.Index(output, "broken-project")
	if first < 0 || second < 0 || first > second {
		t.Error("Sections should appear in request order")
	}
}

func TestMarkdownFormatter_RussianLabels(t *testing.T) {
	labels, err := i18n.Load("ru")
	if err != nil {
		t.Fatalf("Failed to load labels: %v", err)
	}
	formatter := NewMarkdownFormatter(labels)

	analysisReport := &Report{
		GeneratedAt: time.Now(),
		Projects: []ProjectReport{
			{ProjectKey: "test-project", LastAnalysis: "2024-01-15T12:00:00+0000", Issues: []Issue{}},
		},
	}

	output, err := formatter.Format(analysisReport)
	if err != nil {
		t.Fatalf("Failed to format report: %v", err)
	}

	if !strings.Contains(output, "# Отчёт анализа SonarQube") {
		t.Error("Output should contain the Russian report title")
	}
	if !strings.Contains(output, "## Проект: test-project") {
		t.Error("Output should contain the Russian project heading")
	}
	if !strings.Contains(output, "Открытых проблем не найдено.") {
		t.Error("Output should contain the Russian no-issues placeholder")
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	formatter := NewJSONFormatter()

	analysisReport := &Report{
		GeneratedAt: time.Now(),
		Projects: []ProjectReport{
			{
				ProjectKey:   "test-project",
				LastAnalysis: "2024-01-15T12:00:00+0000",
				Issues: []Issue{
					{Severity: SeverityMajor, Message: "Remove unused variable", Component: "test-project:src/main.py", Line: 42},
				},
			},
		},
	}

	output, err := formatter.Format(analysisReport)
	if err != nil {
		t.Fatalf("Failed to format report: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	projects, ok := result["projects"].([]interface{})
	if !ok {
		t.Fatal("Projects should be an array")
	}
	if len(projects) != 1 {
		t.Errorf("Expected 1 project in JSON, got %d", len(projects))
	}
}

func TestGetFormatter(t *testing.T) {
	labels := englishLabels(t)

	tests := []struct {
		format   string
		expected string
	}{
		{"markdown", "*report.MarkdownFormatter"},
		{"md", "*report.MarkdownFormatter"},
		{"json", "*report.JSONFormatter"},
		{"invalid", "*report.MarkdownFormatter"}, // Should default to markdown
		{"", "*report.MarkdownFormatter"},        // Should default to markdown
	}

	for _, test := range tests {
		formatter := GetFormatter(test.format, labels)
		formatterType := getFormatterType(formatter)
		if formatterType != test.expected {
			t.Errorf("For format '%s', expected %s, got %s",
				test.format, test.expected, formatterType)
		}
	}
}

func getFormatterType(formatter Formatter) string {
	switch formatter.(type) {
	case *MarkdownFormatter:
		return "*report.MarkdownFormatter"
	case *JSONFormatter:
		return "*report.JSONFormatter"
	default:
		return "unknown"
	}
}
