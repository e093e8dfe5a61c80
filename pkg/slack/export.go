package slack

import (
	"encoding/json"
	"fmt"
	"io"

	md "github.com/nao1215/markdown"
)

// Export mirrors the JSON export shape: one entry per query with the
// messages that matched it.
type Export struct {
	Queries []QueryResult `json:"queries"`
}

type QueryResult struct {
	Query   string   `json:"query"`
	Total   int      `json:"total"`
	Results []Result `json:"results"`
}

type Result struct {
	Channel   string `json:"channel"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
	Permalink string `json:"permalink,omitempty"`
}

func WriteExport(w io.Writer, export *Export) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(export)
}

func ReadExport(r io.Reader) (*Export, error) {
	var export Export
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("invalid search export: %w", err)
	}

	return &export, nil
}

// RenderMarkdown renders an export as a Markdown document. Message
// texts are emitted verbatim as plain paragraphs.
func RenderMarkdown(w io.Writer, export *Export) error {
	doc := md.NewMarkdown(w)
	doc.H1("Slack Search Results")

	for _, query := range export.Queries {
		doc.H2(fmt.Sprintf("Query: %s", query.Query))
		doc.PlainTextf("Total matches: %d, showing %d.", query.Total, len(query.Results))
		doc.LF()

		for _, result := range query.Results {
			doc.H3(fmt.Sprintf("#%s / %s / %s", result.Channel, result.User, result.Timestamp))
			doc.PlainText(result.Text)
			if result.Permalink != "" {
				doc.PlainText(fmt.Sprintf("Link: %s", result.Permalink))
			}
			doc.LF()
		}
	}

	return doc.Build()
}
