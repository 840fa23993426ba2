// Package i18n provides the fixed label strings used in generated
// reports. Translations live in an embedded YAML table and are
// resolved once at startup; unknown languages fall back to English.
package i18n

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed translations.yaml
var translationsYAML []byte

const DefaultLanguage = "en"

// Labels is the resolved label set for one language. The report
// generator receives this value and stays locale-agnostic.
type Labels struct {
	ReportTitle         string `yaml:"report_title"`
	Generated           string `yaml:"generated"`
	Project             string `yaml:"project"`
	LastAnalysis        string `yaml:"last_analysis"`
	LatestIssues        string `yaml:"latest_issues"`
	NoAnalysisAvailable string `yaml:"no_analysis_available"`
	NoOpenIssues        string `yaml:"no_open_issues"`
	Severity            string `yaml:"severity"`
	Message             string `yaml:"message"`
	Component           string `yaml:"component"`
	Line                string `yaml:"line"`
}

func loadTranslations() (map[string]Labels, error) {
	translations := make(map[string]Labels)
	if err := yaml.Unmarshal(translationsYAML, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse embedded translations: %w", err)
	}
	if _, ok := translations[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("embedded translations missing %q table", DefaultLanguage)
	}
	return translations, nil
}

// Load resolves the label set for the given language code, falling
// back to English for unknown codes.
func Load(language string) (Labels, error) {
	translations, err := loadTranslations()
	if err != nil {
		return Labels{}, err
	}

	labels, ok := translations[language]
	if !ok {
		labels = translations[DefaultLanguage]
	}
	return labels, nil
}

// Supported reports whether a language code has its own label table.
func Supported(language string) bool {
	translations, err := loadTranslations()
	if err != nil {
		return false
	}
	_, ok := translations[language]
	return ok
}
