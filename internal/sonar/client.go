// Package sonar is a thin client for the SonarQube web API. One resty
// session carries the credentials and timeout for every call; no other
// state is kept between requests.
package sonar

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/sonarchecker/sonarqube-checker/internal/report"
)

// ErrUnauthorized marks a credential rejection. It recurs for every
// project, so callers abort the run instead of degrading.
var ErrUnauthorized = errors.New("sonarqube rejected the credentials")

const (
	DefaultTimeout  = 30 * time.Second
	projectPageSize = 100
)

type Client struct {
	httpc  *resty.Client
	logger hclog.Logger
}

// New configures the shared session: trimmed base URL, token-based
// basic auth (token as username, empty password) and a fixed request
// timeout.
func New(baseURL, token string, timeout time.Duration, logger hclog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	httpc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetBasicAuth(token, "").
		SetTimeout(timeout).
		SetLogger(newHclogAdapter(logger))

	return &Client{
		httpc:  httpc,
		logger: logger,
	}
}

type analysisEntry struct {
	Date string `json:"date"`
}

type analysesResponse struct {
	Analyses []analysisEntry `json:"analyses"`
}

type issueEntry struct {
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	Component string `json:"component"`
	Line      int    `json:"line"`
	Rule      string `json:"rule"`
}

type issuesResponse struct {
	Issues []issueEntry `json:"issues"`
}

type projectComponent struct {
	Key string `json:"key"`
}

type paging struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
	Total     int `json:"total"`
}

type projectsResponse struct {
	Components []projectComponent `json:"components"`
	Paging     paging             `json:"paging"`
}

// LastAnalysisDate returns the raw timestamp of the most recent
// analysis for the project, or an empty string when the project has
// never been analyzed or is unknown to the server.
func (c *Client) LastAnalysisDate(projectKey string) (string, error) {
	var r analysesResponse
	resp, err := c.httpc.R().
		SetQueryParams(map[string]string{
			"project": projectKey,
			"ps":      "1",
		}).
		SetResult(&r).
		Get("/api/project_analyses/search")
	if err != nil {
		return "", fmt.Errorf("fetching analysis date for %s: %w", projectKey, err)
	}

	if err := c.checkStatus(resp); err != nil {
		return "", err
	}
	if resp.StatusCode() != http.StatusOK {
		c.logger.Warn("unexpected status fetching analysis date",
			"project", projectKey, "status", resp.StatusCode())
		return "", nil
	}

	if len(r.Analyses) == 0 {
		return "", nil
	}
	return r.Analyses[0].Date, nil
}

// OpenIssues returns up to maxIssues open or confirmed issues for the
// project, newest first, in the order the server returned them.
func (c *Client) OpenIssues(projectKey string, maxIssues int) ([]report.Issue, error) {
	var r issuesResponse
	resp, err := c.httpc.R().
		SetQueryParams(map[string]string{
			"componentKeys": projectKey,
			"statuses":      "OPEN,CONFIRMED",
			"ps":            fmt.Sprintf("%d", maxIssues),
			"s":             "CREATION_DATE",
			"asc":           "false",
		}).
		SetResult(&r).
		Get("/api/issues/search")
	if err != nil {
		return nil, fmt.Errorf("fetching issues for %s: %w", projectKey, err)
	}

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		c.logger.Warn("unexpected status fetching issues",
			"project", projectKey, "status", resp.StatusCode())
		return []report.Issue{}, nil
	}

	issues := make([]report.Issue, 0, len(r.Issues))
	for _, issue := range r.Issues {
		issues = append(issues, report.Issue{
			Severity:  report.Severity(valueOrNA(issue.Severity)),
			Message:   valueOrNA(issue.Message),
			Component: valueOrNA(issue.Component),
			Line:      issue.Line,
			Rule:      issue.Rule,
		})
	}
	return issues, nil
}

// ListProjects walks the paged project-search endpoint and returns all
// project keys, optionally filtered by a regular expression anchored
// at the start of the key.
func (c *Client) ListProjects(pattern string) ([]string, error) {
	var filter *regexp.Regexp
	if pattern != "" {
		var err error
		filter, err = regexp.Compile("^(?:" + pattern + ")")
		if err != nil {
			return nil, fmt.Errorf("invalid project pattern %q: %w", pattern, err)
		}
	}

	var keys []string
	for page := 1; ; page++ {
		var r projectsResponse
		resp, err := c.httpc.R().
			SetQueryParams(map[string]string{
				"ps": fmt.Sprintf("%d", projectPageSize),
				"p":  fmt.Sprintf("%d", page),
			}).
			SetResult(&r).
			Get("/api/projects/search")
		if err != nil {
			return nil, fmt.Errorf("listing projects: %w", err)
		}
		if err := c.checkStatus(resp); err != nil {
			return nil, err
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("%d on listing projects", resp.StatusCode())
		}

		if len(r.Components) == 0 {
			break
		}
		for _, component := range r.Components {
			if filter == nil || filter.MatchString(component.Key) {
				keys = append(keys, component.Key)
			}
		}

		if page*projectPageSize >= r.Paging.Total {
			break
		}
	}

	return keys, nil
}

// checkStatus classifies responses shared by every endpoint: 401/403
// abort the run, every other non-200 status (404 included) means
// "no data" and degrades at the caller.
func (c *Client) checkStatus(resp *resty.Response) error {
	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w (HTTP %d)", ErrUnauthorized, resp.StatusCode())
	default:
		return nil
	}
}

func valueOrNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}
