package project

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportItems() []Item {
	return []Item{
		{
			ID: "PVTI_1",
			Content: &Content{
				Type:   TypePullRequest,
				Title:  "Add retry handling, finally",
				Number: 5,
				State:  "OPEN",
				URL:    "https://github.com/acme/widgets/pull/5",
			},
			FieldValues: []FieldValue{
				{Field: "Status", Value: "In Review"},
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportItems()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	assert.True(t, strings.HasPrefix(lines[0], "Type,Title,Number,"))

	// the comma in the title forces quoting
	assert.Contains(t, lines[1], `"Add retry handling, finally"`)
	assert.Contains(t, lines[1], "In Review")
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTSV(&buf, exportItems()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	assert.True(t, strings.HasPrefix(lines[0], "Type\tTitle\tNumber\t"))
	assert.Contains(t, lines[1], "Add retry handling, finally\t")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, exportItems()))

	var decoded []Item
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, exportItems(), decoded)
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, "Project Export", exportItems()))

	rendered := buf.String()
	assert.Contains(t, rendered, "# Project Export")
	assert.Contains(t, rendered, "Add retry handling, finally")
	assert.Contains(t, rendered, "In Review")
}

func TestFilterOpenPullRequests(t *testing.T) {
	items := []Item{
		{
			Content: &Content{Type: TypePullRequest, Title: "keep", State: "OPEN"},
		},
		{
			Content: &Content{Type: TypePullRequest, Title: "merged", State: "MERGED"},
		},
		{
			Content: &Content{Type: TypeIssue, Title: "issue", State: "OPEN"},
		},
		{
			Content: &Content{Type: TypePullRequest, Title: "done status", State: "OPEN"},
			FieldValues: []FieldValue{
				{Field: "Status", Value: "Done"},
			},
		},
		{
			Content: &Content{Type: TypePullRequest, Title: "parked", State: "OPEN", Milestone: "Backlog"},
		},
		{
			Content: nil,
		},
	}

	filter := Filter{
		ExcludedStatuses:   []string{"Done"},
		ExcludedMilestones: []string{"Backlog"},
	}

	kept := filter.OpenPullRequests(items)

	require.Len(t, kept, 1)
	assert.Equal(t, "keep", kept[0].Content.Title)
}

func TestFilterEmptyValuesNeverMatch(t *testing.T) {
	items := []Item{
		{
			Content: &Content{Type: TypePullRequest, Title: "no status", State: "OPEN"},
		},
	}

	// exclusion lists never match items that lack the field entirely
	filter := Filter{
		ExcludedStatuses:   []string{""},
		ExcludedMilestones: []string{""},
	}

	assert.Len(t, filter.OpenPullRequests(items), 1)
}
