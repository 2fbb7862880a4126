package extract

import (
	"log"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractHTML pulls the visible text out of an HTML document, one line per
// text block with blank lines dropped. SEC filings are the usual input here.
func (e *Extractor) extractHTML(path string) string {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("extract: unable to read %s: %v", path, err)
		return ""
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		log.Printf("extract: unable to parse html %s: %v", path, err)
		return ""
	}

	doc.Find("script, style, noscript").Remove()

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}
