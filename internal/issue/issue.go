// Package issue provides access helpers for raw Jira issue payloads.
package issue

import (
	"strings"
)

// ResolvedDateField is the key under an issue's fields where the
// changelog-derived resolution timestamp is stored by Enrich.
const ResolvedDateField = "resolvedDate"

// Issue is a single Jira issue as decoded from the search API.
//
// Issues are kept as generic JSON objects because the set of custom
// fields and their shapes differ between Jira sites.
type Issue map[string]any

// Key returns the issue key (e.g. "SD-123").
func (i Issue) Key() (string, bool) {
	return LookupString(i, "key")
}

// Fields returns the issue's field group, or nil when it is absent or
// not an object.
func (i Issue) Fields() map[string]any {
	fields, _ := i["fields"].(map[string]any)
	return fields
}

// Lookup walks root along a dot-separated path. It returns false as soon
// as a segment is missing, an intermediate value is not an object, or the
// final value is null.
func Lookup(root map[string]any, path string) (any, bool) {
	if root == nil || path == "" {
		return nil, false
	}

	var current any = root
	for _, key := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}

	if current == nil {
		return nil, false
	}
	return current, true
}

// LookupString is Lookup restricted to string values.
func LookupString(root map[string]any, path string) (string, bool) {
	v, ok := Lookup(root, path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ResolvedDate scans the changelog histories in order and returns the
// creation timestamp of the last history holding a status transition to
// resolvedStatus.
func (i Issue) ResolvedDate(resolvedStatus string) (string, bool) {
	histories, ok := Lookup(i, "changelog.histories")
	if !ok {
		return "", false
	}
	list, ok := histories.([]any)
	if !ok {
		return "", false
	}

	var (
		resolved string
		found    bool
	)
	for _, h := range list {
		history, ok := h.(map[string]any)
		if !ok {
			continue
		}
		items, _ := history["items"].([]any)
		for _, it := range items {
			item, ok := it.(map[string]any)
			if !ok {
				continue
			}
			field, _ := item["field"].(string)
			to, _ := item["toString"].(string)
			if field != "status" || to != resolvedStatus {
				continue
			}
			created, _ := history["created"].(string)
			resolved = created
			found = created != ""
		}
	}

	return resolved, found
}

// Enrich stores the changelog-derived resolved date under
// fields.resolvedDate. Issues without a qualifying transition, or without a
// field group, are left untouched.
func (i Issue) Enrich(resolvedStatus string) {
	date, ok := i.ResolvedDate(resolvedStatus)
	if !ok {
		return
	}
	if fields := i.Fields(); fields != nil {
		fields[ResolvedDateField] = date
	}
}
