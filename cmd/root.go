package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version can be set at build time using ldflags
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "sonarqube-checker",
	Short: "A CLI tool for generating Markdown reports from SonarQube analysis data",
	Long: `SonarQube Checker connects to a SonarQube instance, retrieves project
analysis dates and the latest open issues, and generates a Markdown report.

Projects can be listed explicitly, auto-discovered by pattern, or pulled
from the server in full.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("SonarQube Checker - Use 'sonarqube-checker help' for available commands")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("format", "f", "markdown", "output format (markdown, json)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output file path (default: print to console)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sonarqube-checker version %s\n", Version)
		},
	})
}
