package report

import (
	"fmt"
	"io"

	md "github.com/nao1215/markdown"
	"github.com/olekukonko/tablewriter"
)

// WriteTable renders the report as a terminal table followed by
// per-user totals.
func WriteTable(w io.Writer, prs []PullRequest) error {
	if len(prs) == 0 {
		fmt.Fprintln(w, "No open PRs found for any team members.")
		return nil
	}

	table := tablewriter.NewTable(w)

	header := make([]any, 0, len(headers()))
	for _, h := range headers() {
		header = append(header, h)
	}
	table.Header(header...)

	for _, pr := range prs {
		cells := make([]any, 0, 7)
		for _, cell := range row(pr) {
			cells = append(cells, cell)
		}

		if err := table.Append(cells...); err != nil {
			return err
		}
	}

	if err := table.Render(); err != nil {
		return err
	}

	writeTotals(w, prs)

	return nil
}

// WriteMarkdown renders the report as a Markdown document.
func WriteMarkdown(w io.Writer, prs []PullRequest) error {
	doc := md.NewMarkdown(w)
	doc.H1("Team PR Report")

	if len(prs) == 0 {
		doc.PlainText("No open PRs found for any team members.")
		return doc.Build()
	}

	rows := make([][]string, 0, len(prs))
	for _, pr := range prs {
		cells := row(pr)
		// link the PR number instead of a separate URL column
		cells[2] = fmt.Sprintf("[#%d](%s)", pr.Number, pr.URL)
		rows = append(rows, cells)
	}

	doc.Table(md.TableSet{
		Header: headers(),
		Rows:   rows,
	})

	doc.H2("Totals")

	order, counts := Totals(prs)
	items := make([]string, 0, len(order))
	for _, user := range order {
		items = append(items, fmt.Sprintf("%s: %d open PR(s)", user, counts[user]))
	}
	doc.BulletList(items...)

	return doc.Build()
}

func writeTotals(w io.Writer, prs []PullRequest) {
	order, counts := Totals(prs)

	fmt.Fprintf(w, "\nTotals (%d open PRs):\n", len(prs))
	for _, user := range order {
		fmt.Fprintf(w, "  %s: %d\n", user, counts[user])
	}
}
