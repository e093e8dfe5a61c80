package milestone

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tpmtools/pkg/config"
)

func date(value string) *time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}

	parsed = parsed.UTC()

	return &parsed
}

func TestPlanCreate(t *testing.T) {
	spec := config.Spec{
		Name:        "M1: Launch",
		Description: config.SetField("Ship it."),
		DueDate:     config.SetField("2026-09-30"),
	}

	action, err := Plan(spec, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, ActionCreate, action.Kind)
	assert.Nil(t, action.Target)
	assert.Equal(t, "M1: Launch", action.Name)
	assert.Equal(t, "Ship it.", action.Description)
	require.NotNil(t, action.DueOn)
	assert.Equal(t, *date("2026-09-30"), *action.DueOn)
}

func TestPlanDescriptionUnsetKeepsExisting(t *testing.T) {
	spec := config.Spec{Name: "M1"}
	matched := &Existing{Number: 3, Name: "M1", Description: "current text", DueOn: date("2026-01-15")}

	action, err := Plan(spec, nil, matched)
	require.NoError(t, err)

	assert.Equal(t, ActionUpdate, action.Kind)
	assert.Equal(t, "current text", action.Description)
	require.NotNil(t, action.DueOn)
	assert.Equal(t, *date("2026-01-15"), *action.DueOn)
}

func TestPlanDescriptionClearedEmpties(t *testing.T) {
	matched := &Existing{Number: 3, Name: "M1", Description: "current text"}

	for _, field := range []config.Field{config.ClearedField(), config.SetField("")} {
		spec := config.Spec{Name: "M1", Description: field}

		action, err := Plan(spec, nil, matched)
		require.NoError(t, err)

		assert.Equal(t, "", action.Description)
	}
}

func TestPlanDueDateCleared(t *testing.T) {
	spec := config.Spec{Name: "M1", DueDate: config.ClearedField()}
	matched := &Existing{Number: 3, Name: "M1", DueOn: date("2026-01-15")}

	action, err := Plan(spec, nil, matched)
	require.NoError(t, err)

	assert.Nil(t, action.DueOn)
}

func TestPlanReferenceOverridesDescription(t *testing.T) {
	url := "https://github.com/acme/roadmap/milestone/7"

	spec := config.Spec{
		ReferenceMilestoneURL: url,
		Description:           config.SetField("this must be ignored"),
	}
	ref := &Reference{
		Name:      "M2: GA",
		DueOn:     date("2026-11-01"),
		SourceURL: url,
	}

	action, err := Plan(spec, ref, nil)
	require.NoError(t, err)

	assert.Equal(t, "M2: GA", action.Name)
	assert.Equal(t, "See "+url, action.Description)
	require.NotNil(t, action.DueOn)
	assert.Equal(t, *date("2026-11-01"), *action.DueOn)
}

func TestPlanRename(t *testing.T) {
	spec := config.Spec{
		Name:                 "M1: Launch",
		ExistingNameToRename: "M1 (draft)",
	}
	existing := []Existing{{Number: 4, Name: "M1 (draft)", Description: "keep me"}}

	matched := Match(existing, spec, nil)
	require.NotNil(t, matched)

	action, err := Plan(spec, nil, matched)
	require.NoError(t, err)

	assert.Equal(t, ActionUpdate, action.Kind)
	assert.Equal(t, "M1: Launch", action.Name)
	assert.Equal(t, "keep me", action.Description)
}

func TestPlanUnresolvedReference(t *testing.T) {
	spec := config.Spec{ReferenceMilestoneURL: "https://github.com/acme/roadmap/milestone/7"}

	_, err := Plan(spec, nil, nil)
	assert.Error(t, err)
}

func TestDiff(t *testing.T) {
	action := Action{
		Kind: ActionUpdate,
		Target: &Existing{
			Number:      3,
			Name:        "M1 (draft)",
			Description: "old text",
			DueOn:       date("2026-01-15"),
		},
		Name:        "M1: Launch",
		Description: "old text",
		DueOn:       date("2026-03-01"),
	}

	diff := action.Diff()
	lines := strings.Split(diff, "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "    Name: M1 (draft) → M1: Launch", lines[0])
	assert.Equal(t, "    Description: old text (unchanged)", lines[1])
	assert.Equal(t, "    Due Date: 2026-01-15 → 2026-03-01", lines[2])
}

func TestDiffCreate(t *testing.T) {
	action := Action{
		Kind: ActionCreate,
		Name: "M1",
	}

	diff := action.Diff()

	assert.Contains(t, diff, "Name: (not set) → M1")
	assert.Contains(t, diff, "Description: (not set) (unchanged)")
	assert.Contains(t, diff, "Due Date: (not set) (unchanged)")
}

func TestParseURL(t *testing.T) {
	owner, name, number, err := ParseURL("https://github.com/acme/roadmap/milestone/7")
	require.NoError(t, err)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "roadmap", name)
	assert.Equal(t, 7, number)

	invalid := []string{
		"https://github.com/acme/roadmap/milestones/7",
		"https://github.com/acme/milestone/7",
		"http://github.com/acme/roadmap/milestone/7",
		"https://github.com/acme/roadmap/milestone/seven",
	}

	for _, url := range invalid {
		_, _, _, err := ParseURL(url)
		assert.Error(t, err, "expected %q to be rejected", url)
	}
}
