package report

import (
	"fmt"
	"io"

	md "github.com/nao1215/markdown"
	"github.com/olekukonko/tablewriter"
)

func repoCountRows(counts []RepoCount) [][]string {
	total := 0
	rows := make([][]string, 0, len(counts)+1)

	for _, count := range counts {
		total += count.Count
		rows = append(rows, []string{count.Repo, fmt.Sprintf("%d", count.Count)})
	}

	rows = append(rows, []string{"TOTAL", fmt.Sprintf("%d", total)})

	return rows
}

// WriteRepoTable renders the per-repository open PR counts followed by
// the recent PR details as terminal tables.
func WriteRepoTable(w io.Writer, counts []RepoCount, recent []PullRequest, months int) error {
	fmt.Fprintln(w, "Open non-draft PRs per repository:")

	summary := tablewriter.NewTable(w)
	summary.Header("Repository", "Open Non-Draft PRs")

	for _, cells := range repoCountRows(counts) {
		if err := summary.Append(cells[0], cells[1]); err != nil {
			return err
		}
	}

	if err := summary.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nPR details (last %d months):\n", months)

	if len(recent) == 0 {
		fmt.Fprintln(w, "No PRs created or updated in the period.")
		return nil
	}

	details := tablewriter.NewTable(w)

	header := make([]any, 0, len(headers()))
	for _, h := range headers() {
		header = append(header, h)
	}
	details.Header(header...)

	for _, pr := range recent {
		cells := make([]any, 0, 7)
		for _, cell := range row(pr) {
			cells = append(cells, cell)
		}

		if err := details.Append(cells...); err != nil {
			return err
		}
	}

	return details.Render()
}

// WriteRepoMarkdown renders the repository report as a Markdown
// document.
func WriteRepoMarkdown(w io.Writer, counts []RepoCount, recent []PullRequest, months int) error {
	doc := md.NewMarkdown(w)
	doc.H1("Repository PR Report")

	doc.H2("Open Non-Draft PRs")

	doc.Table(md.TableSet{
		Header: []string{"Repository", "Open Non-Draft PRs"},
		Rows:   repoCountRows(counts),
	})

	doc.H2(fmt.Sprintf("PR Details (Last %d Months)", months))

	if len(recent) == 0 {
		doc.PlainText("No PRs created or updated in the period.")
		return doc.Build()
	}

	rows := make([][]string, 0, len(recent))
	for _, pr := range recent {
		cells := row(pr)
		cells[2] = fmt.Sprintf("[#%d](%s)", pr.Number, pr.URL)
		rows = append(rows, cells)
	}

	doc.Table(md.TableSet{
		Header: headers(),
		Rows:   rows,
	})

	return doc.Build()
}
