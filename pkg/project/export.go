package project

import (
	"encoding/csv"
	"encoding/json"
	"io"

	md "github.com/nao1215/markdown"
)

func WriteCSV(w io.Writer, items []Item) error {
	return writeDelimited(w, items, ',')
}

func WriteTSV(w io.Writer, items []Item) error {
	return writeDelimited(w, items, '\t')
}

func writeDelimited(w io.Writer, items []Item, delimiter rune) error {
	headers, rows := Flatten(items)

	writer := csv.NewWriter(w)
	writer.Comma = delimiter

	if err := writer.Write(headers); err != nil {
		return err
	}

	if err := writer.WriteAll(rows); err != nil {
		return err
	}

	writer.Flush()

	return writer.Error()
}

// WriteJSON exports the items in their raw (unflattened) shape.
func WriteJSON(w io.Writer, items []Item) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(items)
}

func WriteMarkdown(w io.Writer, title string, items []Item) error {
	headers, rows := Flatten(items)

	doc := md.NewMarkdown(w)

	if title != "" {
		doc.H1(title)
	}

	doc.Table(md.TableSet{
		Header: headers,
		Rows:   rows,
	})

	return doc.Build()
}
