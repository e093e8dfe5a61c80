// SPDX-FileCopyrightText: 2026 Christoph Mewes
// SPDX-License-Identifier: MIT

// Package milestone implements the milestone reconciliation logic:
// matching configured milestone specs against the live milestones of a
// repository, computing the create-or-update action and its field-level
// diff, and applying it unless running in dry-run mode.
package milestone

import (
	"fmt"
	"time"
)

// Existing is the live state of a milestone in a target repository,
// owned by the remote service. It is fetched fresh on every run and
// never cached beyond it.
type Existing struct {
	Number      int
	Name        string
	Description string
	DueOn       *time.Time
	State       string
}

// Reference is a milestone resolved from a referenceMilestoneUrl,
// immutable after fetching.
type Reference struct {
	Name        string
	Description string
	DueOn       *time.Time
	SourceURL   string
}

type ActionKind string

const (
	ActionCreate ActionKind = "create"
	ActionUpdate ActionKind = "update"
)

// Action is the planned create or update for one (repository, spec)
// pair. Name, Description and DueOn hold the fully resolved state the
// milestone will have after the action is applied.
type Action struct {
	Kind        ActionKind
	Target      *Existing // nil for creates
	Name        string
	Description string
	DueOn       *time.Time
}

// URL returns the milestone's web URL for the given repository.
func URL(owner, name string, number int) string {
	return fmt.Sprintf("https://github.com/%s/%s/milestone/%d", owner, name, number)
}
