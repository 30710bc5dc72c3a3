// Package docparser defines the injected document-parsing boundary (§6):
// the pipeline never opens a PDF itself, it calls a Parser.
package docparser

import "context"

// Page is one parsed page of source text.
type Page struct {
	Number int
	Text   string
}

// Document is the parsed result of a source PDF.
type Document struct {
	Pages []Page
}

// FullText concatenates every page in order, separated by a form feed, so
// downstream chunkers can still recover page boundaries if they need to.
func (d Document) FullText() string {
	out := ""
	for i, p := range d.Pages {
		if i > 0 {
			out += "\f"
		}
		out += p.Text
	}
	return out
}

// Parser extracts text from a PDF at path. Implementations may shell out to
// an external tool, bind a native library, or (in tests) return canned text.
type Parser interface {
	Parse(ctx context.Context, path string) (Document, error)
}
