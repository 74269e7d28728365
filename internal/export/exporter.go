// Package export implements the paginated JIRA issue export: fetch every
// page of a JQL search, derive resolved dates from the changelog, flatten
// each issue into a row and summarize the result.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielolaszy/jira-export/internal/config"
	"github.com/danielolaszy/jira-export/internal/issue"
	"github.com/danielolaszy/jira-export/internal/jira"
	"github.com/danielolaszy/jira-export/internal/logging"
)

// ErrPageLimit is returned when a search keeps returning issues past the
// configured page cap.
var ErrPageLimit = errors.New("pagination page limit reached")

// Searcher fetches one page of JIRA search results.
type Searcher interface {
	SearchPage(ctx context.Context, req jira.PageRequest) (*jira.Page, error)
}

// Result is a successful export.
type Result struct {
	TotalIssues int   `json:"total_issues"`
	Preview     []Row `json:"preview"`
	// Rows holds every exported row; only the preview is serialized.
	Rows []Row `json:"-"`
}

// Exporter runs exports against a Searcher.
type Exporter struct {
	searcher Searcher
	cfg      config.ExportConfig
	loc      *time.Location
	fields   []string
}

// NewExporter creates an Exporter using the given export configuration.
func NewExporter(searcher Searcher, cfg config.ExportConfig) (*Exporter, error) {
	if searcher == nil {
		return nil, fmt.Errorf("searcher is required")
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", cfg.PageSize)
	}
	if cfg.PreviewSize < 0 {
		return nil, fmt.Errorf("preview size must not be negative, got %d", cfg.PreviewSize)
	}

	var loc *time.Location
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}

	fields := append([]string{}, jira.SearchFields...)
	for _, id := range []string{
		cfg.Fields.RequestCategory,
		cfg.Fields.ResolverGroup,
		cfg.Fields.RequestType,
		cfg.Fields.Labels,
	} {
		if id != "" {
			fields = append(fields, id)
		}
	}

	return &Exporter{
		searcher: searcher,
		cfg:      cfg,
		loc:      loc,
		fields:   fields,
	}, nil
}

// Export fetches every issue matching jql and returns the total count with a
// preview of the first rows. Any failure aborts the export without partial
// results.
func (e *Exporter) Export(ctx context.Context, jql string) (*Result, error) {
	issues, err := e.fetchAll(ctx, jql)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(issues))
	for _, is := range issues {
		rows = append(rows, e.project(is))
	}

	previewSize := min(e.cfg.PreviewSize, len(rows))

	logging.FromContext(ctx).Info("export complete",
		"total_issues", len(rows),
		"preview_rows", previewSize)

	return &Result{
		TotalIssues: len(rows),
		Preview:     rows[:previewSize],
		Rows:        rows,
	}, nil
}

// fetchAll pages through the search until the server returns an empty page,
// or until the offset reaches the total the server reported. The offset
// advances by the number of issues received, not the page size.
func (e *Exporter) fetchAll(ctx context.Context, jql string) ([]issue.Issue, error) {
	var all []issue.Issue
	startAt := 0

	for pages := 1; ; pages++ {
		page, err := e.searcher.SearchPage(ctx, jira.PageRequest{
			JQL:        jql,
			StartAt:    startAt,
			MaxResults: e.cfg.PageSize,
			Fields:     e.fields,
			Expand:     "changelog",
		})
		if err != nil {
			return nil, err
		}

		if len(page.Issues) == 0 {
			break
		}
		if e.cfg.MaxPages > 0 && pages > e.cfg.MaxPages {
			return nil, fmt.Errorf("%w: more than %d pages for a single export", ErrPageLimit, e.cfg.MaxPages)
		}

		for _, is := range page.Issues {
			is.Enrich(e.cfg.ResolvedStatus)
			all = append(all, is)
		}

		startAt += len(page.Issues)
		logging.FromContext(ctx).Debug("collected issues",
			"count", len(page.Issues),
			"total", len(all))

		if page.Total >= 0 && startAt >= page.Total {
			break
		}
	}

	return all, nil
}

// project flattens an enriched issue into a Row.
func (e *Exporter) project(is issue.Issue) Row {
	fields := is.Fields()

	created, ok := formatTimestamp(fields, "created", e.loc)
	if !ok {
		created = UnknownDate
	}
	resolved, ok := formatTimestamp(fields, issue.ResolvedDateField, e.loc)
	if !ok {
		resolved = NotResolved
	}

	row := Row{
		{Name: ColumnProject, Value: stringOr(fields, "project.name", UnknownProject)},
		{Name: ColumnIssueKey, Value: stringOr(is, "key", UnknownKey)},
		{Name: ColumnIssueType, Value: stringOr(fields, "issuetype.name", UnknownType)},
		{Name: ColumnStatus, Value: stringOr(fields, "status.name", UnknownStatus)},
		{Name: ColumnAssignee, Value: stringOr(fields, "assignee.displayName", Unassigned)},
		{Name: ColumnReporter, Value: stringOr(fields, "reporter.displayName", UnknownReporter)},
		{Name: ColumnCreatedDate, Value: created},
		{Name: ColumnResolvedDate, Value: resolved},
		{Name: ColumnRequestCategory, Value: valueOr(fields, e.cfg.Fields.RequestCategory, NotAvailable)},
		{Name: ColumnResolverGroup, Value: valueOr(fields, e.cfg.Fields.ResolverGroup+".value", NotAvailable)},
		{Name: ColumnRequestType, Value: valueOr(fields, e.cfg.Fields.RequestType+".requestType.name", NotAvailable)},
	}

	if e.cfg.Fields.Labels != "" {
		row = append(row, Column{Name: ColumnLabels, Value: joinLabels(fields, e.cfg.Fields.Labels)})
	}

	return row
}

func stringOr(root map[string]any, path, fallback string) string {
	if s, ok := issue.LookupString(root, path); ok {
		return s
	}
	return fallback
}

func valueOr(root map[string]any, path string, fallback any) any {
	if v, ok := issue.Lookup(root, path); ok {
		return v
	}
	return fallback
}

// joinLabels joins the "label" attribute of every element of a list-valued
// custom field. Absent, empty or non-list fields yield "".
func joinLabels(fields map[string]any, id string) string {
	v, ok := issue.Lookup(fields, id)
	if !ok {
		return ""
	}
	list, ok := v.([]any)
	if !ok {
		return ""
	}

	labels := make([]string, 0, len(list))
	for _, entry := range list {
		obj, _ := entry.(map[string]any)
		labels = append(labels, stringOr(obj, "label", NotAvailable))
	}
	return strings.Join(labels, labelJoinSeparator)
}
