package milestone

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"tpmtools/pkg/config"
)

// API is the subset of the GitHub API the reconciliation needs. Dry
// runs only ever call the two read methods.
type API interface {
	GetMilestone(ctx context.Context, owner, name string, number int) (*Existing, error)
	ListMilestones(ctx context.Context, owner, name string) ([]Existing, error)
	CreateMilestone(ctx context.Context, owner, name string, action Action) (*Existing, error)
	UpdateMilestone(ctx context.Context, owner, name string, action Action) (*Existing, error)
}

// ResolveReference fetches the milestone a referenceMilestoneUrl points
// at from its source repository.
func ResolveReference(ctx context.Context, api API, url string) (*Reference, error) {
	owner, name, number, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	existing, err := api.GetMilestone(ctx, owner, name, number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reference milestone %s: %w", url, err)
	}

	return &Reference{
		Name:        existing.Name,
		Description: existing.Description,
		DueOn:       existing.DueOn,
		SourceURL:   url,
	}, nil
}

// Result records the outcome for one (repository, spec) pair.
type Result struct {
	Repo   config.Repository
	Spec   config.Spec
	Action Action
	Number int
	Err    error
}

// Runner reconciles the configured milestone specs against every
// configured repository. Failures for individual pairs are recorded
// and skipped so that one bad reference or repository does not block
// unrelated work.
type Runner struct {
	API    API
	Log    logrus.FieldLogger
	Out    io.Writer
	DryRun bool
}

func (r *Runner) Run(ctx context.Context, cfg *config.Config) []Result {
	fmt.Fprintf(r.Out, "Processing %d milestone(s) across %d repository(ies)...\n", len(cfg.Milestones), len(cfg.Repos))
	if r.DryRun {
		fmt.Fprintln(r.Out, "DRY RUN MODE - No changes will be made")
	}

	// resolve every reference milestone exactly once, up front; a
	// failed reference skips its spec in every repository
	references := map[string]*Reference{}
	referenceErrors := map[string]error{}

	for _, spec := range cfg.Milestones {
		url := spec.ReferenceMilestoneURL
		if url == "" {
			continue
		}

		if _, resolved := references[url]; resolved {
			continue
		}

		if _, failed := referenceErrors[url]; failed {
			continue
		}

		ref, err := ResolveReference(ctx, r.API, url)
		if err != nil {
			r.Log.WithField("url", url).Warnf("Skipping reference milestone: %v", err)
			referenceErrors[url] = err

			continue
		}

		references[url] = ref
	}

	results := []Result{}

	for _, repo := range cfg.Repos {
		fmt.Fprintf(r.Out, "\nRepository: %s\n", repo)
		fmt.Fprintln(r.Out, strings.Repeat("-", 80))

		existing, err := r.API.ListMilestones(ctx, repo.Owner, repo.Name)
		if err != nil {
			r.Log.WithField("repo", repo.String()).Warnf("Skipping repository: %v", err)

			for _, spec := range cfg.Milestones {
				results = append(results, Result{
					Repo: repo,
					Spec: spec,
					Err:  fmt.Errorf("failed to list milestones: %w", err),
				})
			}

			continue
		}

		for _, spec := range cfg.Milestones {
			result := r.processSpec(ctx, repo, spec, existing, references, referenceErrors)
			results = append(results, result)

			if result.Err != nil {
				fmt.Fprintf(r.Out, "  Error: %v\n", result.Err)
			}
		}
	}

	return results
}

func (r *Runner) processSpec(ctx context.Context, repo config.Repository, spec config.Spec, existing []Existing, references map[string]*Reference, referenceErrors map[string]error) Result {
	result := Result{
		Repo: repo,
		Spec: spec,
	}

	var ref *Reference
	if url := spec.ReferenceMilestoneURL; url != "" {
		if err := referenceErrors[url]; err != nil {
			result.Err = err
			return result
		}

		ref = references[url]
	}

	matched := Match(existing, spec, ref)

	action, err := Plan(spec, ref, matched)
	if err != nil {
		result.Err = err
		return result
	}

	result.Action = action

	if r.DryRun {
		switch action.Kind {
		case ActionCreate:
			fmt.Fprintf(r.Out, "  Would CREATE: %s\n", action.Name)
		case ActionUpdate:
			result.Number = matched.Number
			fmt.Fprintf(r.Out, "  Would UPDATE: %s (milestone #%d)\n", action.Name, matched.Number)
		}

		fmt.Fprintln(r.Out, action.Diff())

		return result
	}

	var applied *Existing

	switch action.Kind {
	case ActionCreate:
		applied, err = r.API.CreateMilestone(ctx, repo.Owner, repo.Name, action)
	case ActionUpdate:
		applied, err = r.API.UpdateMilestone(ctx, repo.Owner, repo.Name, action)
	}

	if err != nil {
		result.Err = fmt.Errorf("failed to %s milestone %q: %w", action.Kind, action.Name, err)
		return result
	}

	result.Number = applied.Number

	switch action.Kind {
	case ActionCreate:
		fmt.Fprintf(r.Out, "  Created: %s - %s\n", action.Name, URL(repo.Owner, repo.Name, applied.Number))
	case ActionUpdate:
		fmt.Fprintf(r.Out, "  Updated: %s - %s\n", action.Name, URL(repo.Owner, repo.Name, applied.Number))
	}

	fmt.Fprintln(r.Out, action.Diff())

	return result
}

// PrintSummary writes the per-repository and total counts after a run.
func (r *Runner) PrintSummary(results []Result) {
	fmt.Fprintf(r.Out, "\n%s\n", strings.Repeat("=", 80))
	if r.DryRun {
		fmt.Fprintln(r.Out, "DRY RUN SUMMARY")
	} else {
		fmt.Fprintln(r.Out, "EXECUTION SUMMARY")
	}
	fmt.Fprintln(r.Out, strings.Repeat("=", 80))

	var created, updated, failed int

	repoOrder := []string{}
	byRepo := map[string][]Result{}

	for _, result := range results {
		key := result.Repo.String()
		if _, seen := byRepo[key]; !seen {
			repoOrder = append(repoOrder, key)
		}

		byRepo[key] = append(byRepo[key], result)
	}

	for _, repo := range repoOrder {
		fmt.Fprintf(r.Out, "\n%s:\n", repo)

		for _, result := range byRepo[repo] {
			switch {
			case result.Err != nil:
				failed++
				fmt.Fprintf(r.Out, "  Error: %s: %v\n", result.Spec.Label(), result.Err)
			case result.Action.Kind == ActionCreate:
				created++
				fmt.Fprintf(r.Out, "  %s: %s\n", createdLabel(r.DryRun), result.Action.Name)
			case result.Action.Kind == ActionUpdate:
				updated++
				fmt.Fprintf(r.Out, "  %s: %s (milestone #%d)\n", updatedLabel(r.DryRun), result.Action.Name, result.Number)
			}
		}
	}

	fmt.Fprintf(r.Out, "\nTotal: %d created, %d updated, %d errors\n", created, updated, failed)
}

func createdLabel(dryRun bool) string {
	if dryRun {
		return "Would create"
	}
	return "Created"
}

func updatedLabel(dryRun bool) string {
	if dryRun {
		return "Would update"
	}
	return "Updated"
}
