package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/sonarchecker/sonarqube-checker/internal/config"
	"github.com/sonarchecker/sonarqube-checker/internal/i18n"
	"github.com/sonarchecker/sonarqube-checker/internal/report"
	"github.com/sonarchecker/sonarqube-checker/internal/sonar"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch analysis data and generate a report",
	Long: `Fetch the last analysis date and latest open issues for each requested
project and generate a Markdown (or JSON) report.

Every setting can also come from a SONARQUBE_* environment variable or a
.env file in the working directory.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().String("url", "", "SonarQube base URL (SONARQUBE_URL)")
	reportCmd.Flags().String("token", "", "API token for authentication (SONARQUBE_TOKEN)")
	reportCmd.Flags().String("projects", "", "comma-separated list of project keys (SONARQUBE_PROJECTS)")
	reportCmd.Flags().String("project-pattern", "", "regexp to auto-discover projects when --projects is not set (SONARQUBE_PROJECT_PATTERN)")
	reportCmd.Flags().Int("max-issues", config.DefaultMaxIssues, "maximum number of issues to fetch per project (SONARQUBE_MAX_ISSUES)")
	reportCmd.Flags().String("language", config.DefaultLanguage, "report language, en or ru (SONARQUBE_REPORT_LANGUAGE)")
}

type reportContext struct {
	cfg     *config.Config
	labels  i18n.Labels
	client  *sonar.Client
	logger  hclog.Logger
	verbose bool
}

func runReport(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	rctx, err := setupReportContext(cmd)
	if err != nil {
		return err
	}

	projectKeys, err := resolveProjectKeys(rctx)
	if err != nil {
		return err
	}

	analysisReport, err := collectProjectData(rctx, projectKeys, startTime)
	if err != nil {
		return err
	}

	return outputResults(rctx, analysisReport)
}

func setupReportContext(cmd *cobra.Command) (*reportContext, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")

	level := hclog.Info
	if verbose {
		level = hclog.Debug
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "sonarqube-checker",
		Level:  level,
		Output: os.Stderr,
		Color:  hclog.AutoColor,
	})

	labels, err := i18n.Load(cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to load report labels: %w", err)
	}

	return &reportContext{
		cfg:     cfg,
		labels:  labels,
		client:  sonar.New(cfg.URL, cfg.Token, cfg.Timeout, logger),
		logger:  logger,
		verbose: verbose,
	}, nil
}

// resolveProjectKeys determines which projects the report covers:
// explicit keys first, then pattern discovery, then every project the
// server knows about.
func resolveProjectKeys(rctx *reportContext) ([]string, error) {
	if keys := rctx.cfg.ProjectKeys(); len(keys) > 0 {
		return keys, nil
	}

	if pattern := rctx.cfg.ProjectPattern; pattern != "" {
		if rctx.verbose {
			fmt.Fprintf(os.Stderr, "Auto-discovering projects matching pattern: %s\n", pattern)
		}
		keys, err := rctx.client.ListProjects(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to discover projects: %w", err)
		}
		if len(keys) == 0 {
			return nil, fmt.Errorf("no projects found matching pattern %q", pattern)
		}
		rctx.logger.Info("discovered projects", "pattern", pattern, "count", len(keys))
		return keys, nil
	}

	keys, err := rctx.client.ListProjects("")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	rctx.logger.Info("listed all projects", "count", len(keys))
	return keys, nil
}

// collectProjectData runs the fetch loop. A failed fetch degrades that
// project to its placeholders and the loop continues; a credential
// rejection aborts the run since it would recur for every project.
func collectProjectData(rctx *reportContext, projectKeys []string, startTime time.Time) (*report.Report, error) {
	analysisReport := &report.Report{
		GeneratedAt: startTime,
		Projects:    make([]report.ProjectReport, 0, len(projectKeys)),
	}

	for _, projectKey := range projectKeys {
		if rctx.verbose {
			color.New(color.FgCyan).Fprintf(os.Stderr, "Fetching data for project: %s...\n", projectKey)
		}

		project := report.ProjectReport{
			ProjectKey: projectKey,
			Issues:     []report.Issue{},
		}

		lastAnalysis, err := rctx.client.LastAnalysisDate(projectKey)
		if err != nil {
			if errors.Is(err, sonar.ErrUnauthorized) {
				return nil, err
			}
			rctx.logger.Warn("failed to fetch analysis date", "project", projectKey, "error", err)
		} else {
			project.LastAnalysis = lastAnalysis
		}

		issues, err := rctx.client.OpenIssues(projectKey, rctx.cfg.MaxIssues)
		if err != nil {
			if errors.Is(err, sonar.ErrUnauthorized) {
				return nil, err
			}
			rctx.logger.Warn("failed to fetch issues", "project", projectKey, "error", err)
		} else {
			project.Issues = issues
		}

		analysisReport.Projects = append(analysisReport.Projects, project)
	}

	return analysisReport, nil
}

func outputResults(rctx *reportContext, analysisReport *report.Report) error {
	formatter := report.GetFormatter(rctx.cfg.Format, rctx.labels)

	output, err := formatter.Format(analysisReport)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}

	if rctx.cfg.Output != "" {
		if err := writeOutputToFile(output, rctx.cfg.Output); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if rctx.verbose {
			fmt.Fprintf(os.Stderr, "Report saved to: %s\n", rctx.cfg.Output)
		}
		return nil
	}

	fmt.Print(output)
	return nil
}

func writeOutputToFile(content, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, []byte(content), 0644)
}
