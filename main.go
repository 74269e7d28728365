// Package main is the entry point for the jira-export application.
package main

import (
	"fmt"
	"os"

	"github.com/danielolaszy/jira-export/cmd"
	"github.com/danielolaszy/jira-export/internal/logging"
)

func main() {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logging.Debug("starting jira-export", "version", "1.0.0", "log_level", logLevel)

	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
