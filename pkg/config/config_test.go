package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	data := []byte(`{
		// repositories to process
		"repos": ["acme/widgets", "acme/gadgets"],
		/* milestone definitions,
		   one entry per milestone */
		"milestones": [
			{"name": "M1: Launch", "dueDate": "2026-09-30"},
			{"referenceMilestoneUrl": "https://github.com/acme/roadmap/milestone/7"},
		]
	}`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	require.Len(t, cfg.Repos, 2)
	assert.Equal(t, Repository{Owner: "acme", Name: "widgets"}, cfg.Repos[0])
	assert.Equal(t, "acme/gadgets", cfg.Repos[1].String())

	require.Len(t, cfg.Milestones, 2)
	assert.Equal(t, "M1: Launch", cfg.Milestones[0].Name)
	assert.Equal(t, FieldSet, cfg.Milestones[0].DueDate.State())
	assert.Equal(t, "https://github.com/acme/roadmap/milestone/7", cfg.Milestones[1].ReferenceMilestoneURL)
}

func TestParseCommentInsideString(t *testing.T) {
	data := []byte(`{
		"repos": ["acme/widgets"],
		"milestones": [
			{"name": "M1", "description": "see https://example.com/a // not a comment"}
		]
	}`)

	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "see https://example.com/a // not a comment", cfg.Milestones[0].Description.Value())
}

func TestParseInvalid(t *testing.T) {
	testcases := []struct {
		name string
		data string
	}{
		{
			name: "malformed JSON",
			data: `{"repos": [}`,
		},
		{
			name: "no repos",
			data: `{"repos": [], "milestones": [{"name": "M1"}]}`,
		},
		{
			name: "no milestones",
			data: `{"repos": ["acme/widgets"], "milestones": []}`,
		},
		{
			name: "bad repo name",
			data: `{"repos": ["widgets"], "milestones": [{"name": "M1"}]}`,
		},
		{
			name: "neither name nor reference",
			data: `{"repos": ["acme/widgets"], "milestones": [{"description": "x"}]}`,
		},
		{
			name: "both name and reference",
			data: `{"repos": ["acme/widgets"], "milestones": [{"name": "M1", "referenceMilestoneUrl": "https://github.com/a/b/milestone/1"}]}`,
		},
		{
			name: "malformed due date",
			data: `{"repos": ["acme/widgets"], "milestones": [{"name": "M1", "dueDate": "30.09.2026"}]}`,
		},
	}

	for _, testcase := range testcases {
		t.Run(testcase.name, func(t *testing.T) {
			_, err := Parse([]byte(testcase.data))
			assert.Error(t, err)
		})
	}
}

func TestParseRepository(t *testing.T) {
	repo, err := ParseRepository("acme/widgets")
	require.NoError(t, err)
	assert.Equal(t, "acme", repo.Owner)
	assert.Equal(t, "widgets", repo.Name)

	for _, invalid := range []string{"", "acme", "acme/", "/widgets", "a/b/c"} {
		_, err := ParseRepository(invalid)
		assert.Error(t, err, "expected %q to be rejected", invalid)
	}
}

func TestFieldUnmarshal(t *testing.T) {
	var spec Spec

	err := json.Unmarshal([]byte(`{"name": "M1"}`), &spec)
	if err != nil {
		t.Fatal(err)
	}
	if spec.Description.State() != FieldUnset {
		t.Errorf("absent field should be unset, got %v", spec.Description.State())
	}

	err = json.Unmarshal([]byte(`{"name": "M1", "description": null}`), &spec)
	if err != nil {
		t.Fatal(err)
	}
	if spec.Description.State() != FieldCleared {
		t.Errorf("null field should be cleared, got %v", spec.Description.State())
	}

	err = json.Unmarshal([]byte(`{"name": "M1", "description": ""}`), &spec)
	if err != nil {
		t.Fatal(err)
	}
	if spec.Description.State() != FieldCleared {
		t.Errorf("empty field should be cleared, got %v", spec.Description.State())
	}

	err = json.Unmarshal([]byte(`{"name": "M1", "description": "hello"}`), &spec)
	if err != nil {
		t.Fatal(err)
	}
	if spec.Description.State() != FieldSet || spec.Description.Value() != "hello" {
		t.Errorf("string field should be set, got %v (%q)", spec.Description.State(), spec.Description.Value())
	}

	err = json.Unmarshal([]byte(`{"name": "M1", "description": 42}`), &spec)
	if err == nil {
		t.Error("non-string field value should be rejected")
	}
}
