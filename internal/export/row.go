package export

import (
	"bytes"
	"encoding/json"
)

// Column names, in export order.
const (
	ColumnProject         = "Project"
	ColumnIssueKey        = "Issue Key"
	ColumnIssueType       = "Issue Type"
	ColumnStatus          = "Status"
	ColumnAssignee        = "Assignee"
	ColumnReporter        = "Reporter"
	ColumnCreatedDate     = "Created Date"
	ColumnResolvedDate    = "Resolved Date"
	ColumnRequestCategory = "Tipo de Requisição"
	ColumnResolverGroup   = "Grupo Solucionador"
	ColumnRequestType     = "Request Type"
	ColumnLabels          = "Garagens"
)

// Fallback values used when an issue lacks the source field.
const (
	NotAvailable       = "N/A"
	UnknownProject     = "Unknown Project"
	UnknownKey         = "Unknown Key"
	UnknownType        = "Unknown Type"
	UnknownStatus      = "Unknown Status"
	Unassigned         = "Unassigned"
	UnknownReporter    = "Unknown"
	UnknownDate        = "Unknown Date"
	NotResolved        = "Not resolved"
	DisplayDateLayout  = "02/01/2006 15:04"
	labelJoinSeparator = ", "
)

// Column is a single named cell of an exported row.
type Column struct {
	Name  string
	Value any
}

// Row is one flattened issue. Column order is preserved when encoding.
type Row []Column

// Get returns the value of the named column.
func (r Row) Get(name string) (any, bool) {
	for _, c := range r {
		if c.Name == name {
			return c.Value, true
		}
	}
	return nil, false
}

// Names returns the column names in order.
func (r Row) Names() []string {
	names := make([]string, len(r))
	for i, c := range r {
		names[i] = c.Name
	}
	return names
}

// MarshalJSON encodes the row as a JSON object keeping column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
