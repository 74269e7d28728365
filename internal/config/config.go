// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration parameters for the application.
type Config struct {
	Jira   JiraConfig
	Export ExportConfig
	HTTP   HTTPConfig
}

// JiraConfig holds JIRA specific configuration.
type JiraConfig struct {
	URL        string
	Email      string
	Token      string
	SearchPath string
}

// ExportConfig controls pagination and the shape of exported rows.
type ExportConfig struct {
	PageSize       int
	MaxPages       int
	PreviewSize    int
	ResolvedStatus string
	// Timezone is an IANA zone name. Empty keeps each timestamp's own offset.
	Timezone string
	Fields   CustomFields
}

// CustomFields maps exported columns to site-specific custom field IDs.
type CustomFields struct {
	RequestCategory string
	ResolverGroup   string
	RequestType     string
	// Labels may be empty, in which case the labels column is not exported.
	// The environment value "none" clears it.
	Labels string
}

// HTTPConfig holds settings for the inbound HTTP server.
type HTTPConfig struct {
	Addr            string
	Env             string
	ShutdownTimeout time.Duration
}

const (
	defaultJiraURL        = "https://estaparjsm.atlassian.net"
	defaultSearchPath     = "rest/api/3/search"
	defaultPageSize       = 100
	defaultMaxPages       = 1000
	defaultPreviewSize    = 5
	defaultResolvedStatus = "Resolvido"
)

// LoadConfig initializes and loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("jira.url", "JIRA_URL")
	v.BindEnv("jira.email", "JIRA_EMAIL")
	v.BindEnv("jira.token", "JIRA_TOKEN")
	v.BindEnv("jira.search_path", "JIRA_SEARCH_PATH")
	v.BindEnv("export.page_size", "EXPORT_PAGE_SIZE")
	v.BindEnv("export.max_pages", "EXPORT_MAX_PAGES")
	v.BindEnv("export.preview_size", "EXPORT_PREVIEW_SIZE")
	v.BindEnv("export.resolved_status", "EXPORT_RESOLVED_STATUS")
	v.BindEnv("export.timezone", "EXPORT_TIMEZONE")
	v.BindEnv("export.field.request_category", "EXPORT_FIELD_REQUEST_CATEGORY")
	v.BindEnv("export.field.resolver_group", "EXPORT_FIELD_RESOLVER_GROUP")
	v.BindEnv("export.field.request_type", "EXPORT_FIELD_REQUEST_TYPE")
	v.BindEnv("export.field.labels", "EXPORT_FIELD_LABELS")
	v.BindEnv("http.addr", "HTTP_ADDR")
	v.BindEnv("http.env", "APP_ENV")
	v.BindEnv("http.shutdown_timeout", "HTTP_SHUTDOWN_TIMEOUT")

	v.SetDefault("jira.url", defaultJiraURL)
	v.SetDefault("jira.search_path", defaultSearchPath)
	v.SetDefault("export.page_size", defaultPageSize)
	v.SetDefault("export.max_pages", defaultMaxPages)
	v.SetDefault("export.preview_size", defaultPreviewSize)
	v.SetDefault("export.resolved_status", defaultResolvedStatus)
	v.SetDefault("export.field.request_category", "customfield_10680")
	v.SetDefault("export.field.resolver_group", "customfield_10767")
	v.SetDefault("export.field.request_type", "customfield_10010")
	v.SetDefault("export.field.labels", "customfield_10790")
	v.SetDefault("http.addr", ":8000")
	v.SetDefault("http.env", "prod")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	config := &Config{
		Jira: JiraConfig{
			URL:        v.GetString("jira.url"),
			Email:      v.GetString("jira.email"),
			Token:      v.GetString("jira.token"),
			SearchPath: v.GetString("jira.search_path"),
		},
		Export: ExportConfig{
			PageSize:       v.GetInt("export.page_size"),
			MaxPages:       v.GetInt("export.max_pages"),
			PreviewSize:    v.GetInt("export.preview_size"),
			ResolvedStatus: v.GetString("export.resolved_status"),
			Timezone:       v.GetString("export.timezone"),
			Fields: CustomFields{
				RequestCategory: v.GetString("export.field.request_category"),
				ResolverGroup:   v.GetString("export.field.resolver_group"),
				RequestType:     v.GetString("export.field.request_type"),
				Labels:          optionalField(v.GetString("export.field.labels")),
			},
		},
		HTTP: HTTPConfig{
			Addr:            v.GetString("http.addr"),
			Env:             v.GetString("http.env"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

func optionalField(id string) string {
	if strings.EqualFold(id, "none") {
		return ""
	}
	return id
}

// validateConfig checks values that have no sensible fallback.
func validateConfig(config *Config) error {
	if config.Export.PageSize <= 0 {
		return fmt.Errorf("EXPORT_PAGE_SIZE must be positive, got %d", config.Export.PageSize)
	}
	if config.Export.MaxPages < 0 {
		return fmt.Errorf("EXPORT_MAX_PAGES must not be negative, got %d", config.Export.MaxPages)
	}
	if config.Export.PreviewSize < 0 {
		return fmt.Errorf("EXPORT_PREVIEW_SIZE must not be negative, got %d", config.Export.PreviewSize)
	}
	if config.Export.Timezone != "" {
		if _, err := time.LoadLocation(config.Export.Timezone); err != nil {
			return fmt.Errorf("invalid EXPORT_TIMEZONE %q: %w", config.Export.Timezone, err)
		}
	}
	return nil
}

// ValidateJiraConfig validates JIRA-specific configuration.
func ValidateJiraConfig(config *Config) error {
	var missingVars []string

	if config.Jira.URL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if config.Jira.Email == "" {
		missingVars = append(missingVars, "JIRA_EMAIL")
	}
	if config.Jira.Token == "" {
		missingVars = append(missingVars, "JIRA_TOKEN")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}
