// SPDX-FileCopyrightText: 2026 Christoph Mewes
// SPDX-License-Identifier: MIT

package milestone

import (
	"fmt"
	"strings"
	"time"

	"tpmtools/pkg/config"
)

// Plan computes the action for one (repository, spec) pair. matched is
// the milestone found by Match, or nil when none exists, in which case
// a create is planned.
//
// When the spec carries a reference milestone, name and due date are
// copied from it and the description is forced to a pointer at the
// reference URL, regardless of any description in the spec. Otherwise
// description and due date follow their three-state fields: an unset
// field keeps the matched milestone's current value, a cleared field
// empties it.
func Plan(spec config.Spec, ref *Reference, matched *Existing) (Action, error) {
	action := Action{
		Kind:   ActionCreate,
		Target: matched,
	}

	if matched != nil {
		action.Kind = ActionUpdate
	}

	if spec.ReferenceMilestoneURL != "" {
		if ref == nil {
			return Action{}, fmt.Errorf("reference milestone %s is not resolved", spec.ReferenceMilestoneURL)
		}

		action.Name = ref.Name
		action.Description = fmt.Sprintf("See %s", spec.ReferenceMilestoneURL)
		action.DueOn = ref.DueOn

		return action, nil
	}

	action.Name = spec.Name

	switch spec.Description.State() {
	case config.FieldUnset:
		if matched != nil {
			action.Description = matched.Description
		}
	case config.FieldCleared:
		action.Description = ""
	case config.FieldSet:
		action.Description = spec.Description.Value()
	}

	switch spec.DueDate.State() {
	case config.FieldUnset:
		if matched != nil {
			action.DueOn = matched.DueOn
		}
	case config.FieldCleared:
		action.DueOn = nil
	case config.FieldSet:
		due, err := time.Parse(config.DueDateFormat, spec.DueDate.Value())
		if err != nil {
			return Action{}, fmt.Errorf("invalid date format %q, expected YYYY-MM-DD", spec.DueDate.Value())
		}

		due = due.UTC()
		action.DueOn = &due
	}

	return action, nil
}

const notSet = "(not set)"

// Diff renders the field-level changes of an action as indented
// "field: old → new" lines, with "(unchanged)" markers for fields the
// action does not modify. The output is identical between a dry run
// and a real run given the same remote state.
func (a Action) Diff() string {
	var previousName, previousDescription string
	var previousDue *time.Time

	if a.Target != nil {
		previousName = a.Target.Name
		previousDescription = a.Target.Description
		previousDue = a.Target.DueOn
	}

	lines := []string{
		formatChange("Name", previousName, a.Name),
		formatChange("Description", previousDescription, a.Description),
		formatChange("Due Date", formatDueDate(previousDue), formatDueDate(a.DueOn)),
	}

	return strings.Join(lines, "\n")
}

func formatChange(field, previous, current string) string {
	previousDisplay := previous
	if previousDisplay == "" {
		previousDisplay = notSet
	}

	currentDisplay := current
	if currentDisplay == "" {
		currentDisplay = notSet
	}

	if previous == current {
		return fmt.Sprintf("    %s: %s (unchanged)", field, currentDisplay)
	}

	return fmt.Sprintf("    %s: %s → %s", field, previousDisplay, currentDisplay)
}

func formatDueDate(due *time.Time) string {
	if due == nil {
		return ""
	}

	return due.Format(config.DueDateFormat)
}
