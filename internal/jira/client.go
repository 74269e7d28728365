// Package jira provides a search client for the JIRA Cloud REST API.
package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	jira "github.com/andygrunwald/go-jira"
	"github.com/danielolaszy/jira-export/internal/config"
	"github.com/danielolaszy/jira-export/internal/issue"
	"github.com/danielolaszy/jira-export/internal/logging"
)

// SearchFields is the fixed field list requested for every exported issue.
var SearchFields = []string{
	"project",
	"key",
	"issuetype",
	"status",
	"assignee",
	"reporter",
	"created",
	"resolutiondate",
}

var (
	// ErrInvalidJSON is returned when a search response body cannot be decoded.
	ErrInvalidJSON = errors.New("Response from Jira is not a valid JSON")
	// ErrNotObject is returned when a search response decodes to something other than an object.
	ErrNotObject = errors.New("Response JSON is not a dictionary")
)

// UpstreamError reports a non-2xx response from JIRA together with the raw body.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("jira search failed with status %d: %s", e.StatusCode, e.Body)
}

// PageRequest describes a single search page.
type PageRequest struct {
	JQL        string
	StartAt    int
	MaxResults int
	Fields     []string
	Expand     string
}

// Page is one decoded page of search results.
type Page struct {
	Issues []issue.Issue
	// Total is the server-reported match count, or -1 when the response
	// omits it.
	Total int
}

// Client handles interactions with the JIRA search API.
type Client struct {
	client     *jira.Client
	searchPath string
}

// NewClient creates a JIRA client authenticated with the configured email and
// API token. It fails fast when credentials are missing.
func NewClient(cfg *config.Config) (*Client, error) {
	if err := config.ValidateJiraConfig(cfg); err != nil {
		return nil, err
	}

	tp := jira.BasicAuthTransport{
		Username: cfg.Jira.Email,
		Password: cfg.Jira.Token,
	}

	client, err := jira.NewClient(tp.Client(), cfg.Jira.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	logging.Info("jira configuration",
		"url", cfg.Jira.URL,
		"email", cfg.Jira.Email,
		"token", logging.MaskSensitive(cfg.Jira.Token),
		"search_path", cfg.Jira.SearchPath)

	return &Client{
		client:     client,
		searchPath: cfg.Jira.SearchPath,
	}, nil
}

// SearchPage fetches a single page of issues. Non-2xx responses are reported
// as *UpstreamError and are never retried.
func (c *Client) SearchPage(ctx context.Context, req PageRequest) (*Page, error) {
	if c.client == nil {
		return nil, fmt.Errorf("JIRA client not initialized")
	}

	params := url.Values{}
	params.Set("jql", req.JQL)
	params.Set("startAt", strconv.Itoa(req.StartAt))
	params.Set("maxResults", strconv.Itoa(req.MaxResults))
	if len(req.Fields) > 0 {
		params.Set("fields", strings.Join(req.Fields, ","))
	}
	if req.Expand != "" {
		params.Set("expand", req.Expand)
	}

	httpReq, err := c.client.NewRequestWithContext(ctx, http.MethodGet, c.searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	logging.Debug("requesting search page",
		"start_at", req.StartAt,
		"max_results", req.MaxResults)

	// A nil target keeps the body open so both error and success paths can read it.
	resp, err := c.client.Do(httpReq, nil)
	if resp == nil {
		return nil, fmt.Errorf("jira search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return nil, fmt.Errorf("failed to read jira response: %w", readErr)
	}

	if err != nil {
		logging.Warn("jira search returned an error status",
			"status_code", resp.StatusCode,
			"start_at", req.StartAt)
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return decodePage(body)
}

func decodePage(body []byte) (*Page, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, ErrInvalidJSON
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}

	list, _ := obj["issues"].([]any)
	page := &Page{Issues: make([]issue.Issue, 0, len(list)), Total: -1}
	if total, ok := obj["total"].(float64); ok {
		page.Total = int(total)
	}
	for _, entry := range list {
		fields, ok := entry.(map[string]any)
		if !ok {
			// Keep a placeholder so offsets still advance by the server's count.
			fields = map[string]any{}
		}
		page.Issues = append(page.Issues, issue.Issue(fields))
	}

	return page, nil
}
