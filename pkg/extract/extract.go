package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/auditpulse/evalengine/internal/models"
)

// Extractor normalizes source documents into flat text for comparison.
// Extraction failures are local: a missing or unreadable file produces an
// empty string so a batch can continue past one bad input.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content. The format is
// chosen from the file extension; unknown extensions are read as plain text.
func (e *Extractor) Extract(path string) string {
	switch FormatFor(path) {
	case models.FormatPDF:
		return e.extractPDF(path)
	case models.FormatJSON:
		return e.extractJSON(path)
	case models.FormatMarkdown:
		return e.extractMarkdown(path)
	case models.FormatHTML:
		return e.extractHTML(path)
	default:
		return e.extractText(path)
	}
}

// FormatFor maps a file extension to a document format.
func FormatFor(path string) models.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return models.FormatPDF
	case ".json":
		return models.FormatJSON
	case ".md", ".markdown":
		return models.FormatMarkdown
	case ".html", ".htm":
		return models.FormatHTML
	default:
		return models.FormatText
	}
}

func (e *Extractor) extractText(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("extract: unable to read %s: %v", path, err)
		return ""
	}
	return string(data)
}

// extractPDF concatenates per-page text in page order. Pages with no
// extractable text (scanned images) contribute nothing.
func (e *Extractor) extractPDF(path string) string {
	f, reader, err := pdf.Open(path)
	if err != nil {
		log.Printf("extract: unable to open pdf %s: %v", path, err)
		return ""
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil || text == "" {
			continue
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n")
}

// extractJSON flattens a JSON object into "key: value" lines, in the order
// the keys appear in the document so the same file always yields the same
// text. A top-level array is flattened entry by entry the same way.
// Malformed JSON yields a diagnostic placeholder instead of failing the
// batch.
func (e *Extractor) extractJSON(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("extract: unable to read %s: %v", path, err)
		return ""
	}

	invalid := fmt.Sprintf("Invalid JSON format in %s\n\n", path)
	if !json.Valid(data) {
		return invalid
	}

	var b strings.Builder
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return invalid
	}

	switch tok {
	case json.Delim('{'):
		if err := writeJSONEntries(&b, dec); err != nil {
			return invalid
		}
	case json.Delim('['):
		for dec.More() {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return invalid
			}
			entry := bytes.TrimSpace(raw)
			if len(entry) == 0 || entry[0] != '{' {
				continue
			}
			inner := json.NewDecoder(bytes.NewReader(entry))
			if _, err := inner.Token(); err != nil {
				return invalid
			}
			if err := writeJSONEntries(&b, inner); err != nil {
				return invalid
			}
		}
	}
	return b.String()
}

// writeJSONEntries emits one "key: value" line per object member, walking
// the decoder token stream so document key order is preserved.
func writeJSONEntries(b *strings.Builder, dec *json.Decoder) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key token %v", tok)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return err
		}
		fmt.Fprintf(b, "%s: %v\n\n", key, value)
	}
	_, err := dec.Token()
	return err
}

// extractMarkdown strips the visual noise of lightly marked-up text: leading
// heading, emphasis, list and code markers. This is a heuristic cleanup, not
// a markdown parser.
func (e *Extractor) extractMarkdown(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("extract: unable to read %s: %v", path, err)
		return ""
	}

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(strings.TrimLeft(line, "#*-` \t"))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
