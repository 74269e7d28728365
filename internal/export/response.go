package export

import (
	"errors"

	"github.com/danielolaszy/jira-export/internal/jira"
)

// NoIssuesMessage is reported when a query matches nothing.
const NoIssuesMessage = "No issues found for the given JQL."

// UpstreamFailure is the payload for a non-2xx JIRA response.
type UpstreamFailure struct {
	StatusCode int    `json:"status_code"`
	ErrorText  string `json:"error_text"`
}

// Failure is the payload for any other export error.
type Failure struct {
	Error string `json:"error"`
}

// Empty is the payload for an export that matched no issues.
type Empty struct {
	Message string `json:"message"`
}

// Payload maps the outcome of Export to the value written back to callers.
func Payload(result *Result, err error) any {
	if err != nil {
		var upstream *jira.UpstreamError
		if errors.As(err, &upstream) {
			return UpstreamFailure{StatusCode: upstream.StatusCode, ErrorText: upstream.Body}
		}
		return Failure{Error: err.Error()}
	}
	if result == nil || result.TotalIssues == 0 {
		return Empty{Message: NoIssuesMessage}
	}
	return result
}
