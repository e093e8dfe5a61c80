// Package project models GitHub Projects v2 items and turns them into
// CSV/TSV/JSON/Markdown exports.
package project

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Content types as reported by the GraphQL __typename field.
const (
	TypeIssue       = "Issue"
	TypePullRequest = "PullRequest"
	TypeDraftIssue  = "DraftIssue"
)

// Item is one row of a project board, mirroring the API response
// shape: the underlying content (issue, pull request or draft) plus
// the project's own field values.
type Item struct {
	ID          string       `json:"id"`
	Content     *Content     `json:"content"`
	FieldValues []FieldValue `json:"fieldValues,omitempty"`
}

type Content struct {
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Number    int        `json:"number,omitempty"`
	State     string     `json:"state,omitempty"`
	URL       string     `json:"url,omitempty"`
	Assignees []string   `json:"assignees,omitempty"`
	Labels    []string   `json:"labels,omitempty"`
	Milestone string     `json:"milestone,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// FieldValue is a single custom field value on an item. StartDate is
// only set for iteration fields.
type FieldValue struct {
	Field     string `json:"field"`
	Value     string `json:"value"`
	StartDate string `json:"startDate,omitempty"`
}

// Field returns the named custom field value, or "" if the item does
// not carry it.
func (i Item) Field(name string) string {
	for _, fv := range i.FieldValues {
		if fv.Field == name {
			return fv.Value
		}
	}

	return ""
}

// standardColumns is the fixed export prefix; custom project fields
// follow in lexical order.
var standardColumns = []string{
	"Type", "Title", "Number", "State", "URL",
	"Assignees", "Labels", "Created At", "Updated At",
}

// Flatten turns items into a header row and data rows. Items without
// content (pure drafts) get Type "Draft" and blank standard columns.
func Flatten(items []Item) ([]string, [][]string) {
	flattened := make([]map[string]string, 0, len(items))
	custom := map[string]bool{}

	for _, item := range items {
		row := flattenItem(item)
		flattened = append(flattened, row)

		for key := range row {
			if !isStandardColumn(key) {
				custom[key] = true
			}
		}
	}

	headers := append([]string{}, standardColumns...)

	customNames := make([]string, 0, len(custom))
	for name := range custom {
		customNames = append(customNames, name)
	}
	sort.Strings(customNames)
	headers = append(headers, customNames...)

	rows := make([][]string, 0, len(flattened))
	for _, row := range flattened {
		cells := make([]string, len(headers))
		for i, header := range headers {
			cells[i] = row[header]
		}
		rows = append(rows, cells)
	}

	return headers, rows
}

func isStandardColumn(name string) bool {
	for _, column := range standardColumns {
		if column == name {
			return true
		}
	}

	return false
}

func flattenItem(item Item) map[string]string {
	row := map[string]string{}

	if content := item.Content; content != nil {
		row["Type"] = content.Type
		row["Title"] = content.Title
		row["State"] = content.State
		row["URL"] = content.URL
		row["Assignees"] = strings.Join(content.Assignees, ", ")
		row["Labels"] = strings.Join(content.Labels, ", ")

		if content.Number != 0 {
			row["Number"] = fmt.Sprintf("%d", content.Number)
		}

		if content.CreatedAt != nil {
			row["Created At"] = content.CreatedAt.Format(time.RFC3339)
		}

		if content.UpdatedAt != nil {
			row["Updated At"] = content.UpdatedAt.Format(time.RFC3339)
		}
	} else {
		row["Type"] = "Draft"
	}

	for _, fv := range item.FieldValues {
		value := fv.Value
		if fv.StartDate != "" {
			value = fmt.Sprintf("%s (%s)", fv.Value, fv.StartDate)
		}

		row[fv.Field] = value
	}

	return row
}
