package docparser

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// PdftotextParser implements Parser by shelling out to poppler's pdftotext
// binary (§6), the shell-out path docparser.go's own contract allows.
// pdftotext -layout preserves the source's column structure, which the
// downstream chunker's even-split heuristic (phases.BuildCanonPolicyPackage)
// depends on to keep policy-area text together.
type PdftotextParser struct {
	// BinaryPath overrides where pdftotext is looked up. Empty means
	// resolve "pdftotext" from PATH.
	BinaryPath string
}

// NewPdftotextParser builds a parser using the named binary, or "pdftotext"
// from PATH when path is empty.
func NewPdftotextParser(path string) *PdftotextParser {
	return &PdftotextParser{BinaryPath: path}
}

// Parse implements Parser by running pdftotext and splitting its output on
// the form-feed page separator it emits between pages.
func (p *PdftotextParser) Parse(ctx context.Context, path string) (Document, error) {
	bin := p.BinaryPath
	if bin == "" {
		bin = "pdftotext"
	}

	cmd := exec.CommandContext(ctx, bin, "-layout", path, "-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Document{}, fmt.Errorf("docparser: pdftotext %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}

	rawPages := strings.Split(stdout.String(), "\f")
	pages := make([]Page, 0, len(rawPages))
	for i, text := range rawPages {
		if i == len(rawPages)-1 && strings.TrimSpace(text) == "" {
			continue // pdftotext emits a trailing form feed after the last page
		}
		pages = append(pages, Page{Number: i + 1, Text: text})
	}
	if len(pages) == 0 {
		pages = append(pages, Page{Number: 1, Text: ""})
	}

	return Document{Pages: pages}, nil
}
