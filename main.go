package main

import (
	"os"

	"github.com/sonarchecker/sonarqube-checker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
