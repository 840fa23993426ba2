package report

import "time"

type Severity string

const (
	SeverityBlocker  Severity = "BLOCKER"
	SeverityCritical Severity = "CRITICAL"
	SeverityMajor    Severity = "MAJOR"
	SeverityMinor    Severity = "MINOR"
	SeverityInfo     Severity = "INFO"
)

// Issue is one open finding as returned by the issues-search endpoint.
// Issues keep the order the server returned them in; nothing re-sorts
// them afterwards.
type Issue struct {
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	Component string   `json:"component"`
	Line      int      `json:"line,omitempty"`
	Rule      string   `json:"rule,omitempty"`
}

// ProjectReport aggregates everything fetched for one project key.
// LastAnalysis holds the raw timestamp from the server, or is empty
// when the project has never been analyzed (or the fetch degraded).
type ProjectReport struct {
	ProjectKey   string  `json:"project_key"`
	LastAnalysis string  `json:"last_analysis,omitempty"`
	Issues       []Issue `json:"issues"`
}

type Report struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Projects    []ProjectReport `json:"projects"`
}
