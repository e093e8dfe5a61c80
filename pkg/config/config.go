// SPDX-FileCopyrightText: 2026 Christoph Mewes
// SPDX-License-Identifier: MIT

// Package config loads and validates the milestone configuration file.
// The file is JSON extended with // line comments, /* block comments */
// and trailing commas; comments are stripped before unmarshalling.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
)

type Repository struct {
	Owner string
	Name  string
}

func (r Repository) String() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

func ParseRepository(value string) (Repository, error) {
	parts := strings.Split(value, "/")

	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, errors.New(`not a valid repository name, must be "owner/name"`)
	}

	return Repository{
		Owner: parts[0],
		Name:  parts[1],
	}, nil
}

// Spec describes a single milestone to create or update in every
// configured repository. Exactly one of Name or ReferenceMilestoneURL
// must be set.
type Spec struct {
	Name                  string `json:"name"`
	ReferenceMilestoneURL string `json:"referenceMilestoneUrl"`
	ExistingNameToRename  string `json:"existingNameToRename"`
	Description           Field  `json:"description"`
	DueDate               Field  `json:"dueDate"`
}

// Label returns a human-readable identifier for the spec, used in
// warnings and the run summary.
func (s Spec) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ReferenceMilestoneURL
}

type Config struct {
	Repos      []Repository
	Milestones []Spec
}

type rawConfig struct {
	Repos      []string `json:"repos"`
	Milestones []Spec   `json:"milestones"`
}

// DueDateFormat is the date layout accepted for the dueDate field.
const DueDateFormat = "2006-01-02"

// Parse strips JSONC comments from data, unmarshals and validates it.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON in configuration file: %w", err)
	}

	if len(raw.Repos) == 0 {
		return nil, errors.New("no repos defined")
	}

	if len(raw.Milestones) == 0 {
		return nil, errors.New("no milestones defined")
	}

	config := &Config{
		Milestones: raw.Milestones,
	}

	for i, repo := range raw.Repos {
		parsed, err := ParseRepository(repo)
		if err != nil {
			return nil, fmt.Errorf("repos[%d] (%q): %w", i, repo, err)
		}

		config.Repos = append(config.Repos, parsed)
	}

	for i, spec := range raw.Milestones {
		if err := validateSpec(spec); err != nil {
			return nil, fmt.Errorf("milestones[%d]: %w", i, err)
		}
	}

	return config, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	return Parse(data)
}

func validateSpec(spec Spec) error {
	hasName := spec.Name != ""
	hasReference := spec.ReferenceMilestoneURL != ""

	if hasName == hasReference {
		return errors.New(`exactly one of "name" and "referenceMilestoneUrl" must be set`)
	}

	if spec.DueDate.State() == FieldSet {
		if _, err := time.Parse(DueDateFormat, spec.DueDate.Value()); err != nil {
			return fmt.Errorf("invalid date format %q, expected YYYY-MM-DD", spec.DueDate.Value())
		}
	}

	return nil
}
