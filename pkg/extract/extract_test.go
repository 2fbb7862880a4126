package extract_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditpulse/evalengine/internal/models"
	"github.com/auditpulse/evalengine/pkg/extract"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want models.Format
	}{
		{"report.pdf", models.FormatPDF},
		{"config.JSON", models.FormatJSON},
		{"notes.md", models.FormatMarkdown},
		{"notes.markdown", models.FormatMarkdown},
		{"filing.htm", models.FormatHTML},
		{"plain.txt", models.FormatText},
		{"no_extension", models.FormatText},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extract.FormatFor(tt.path), tt.path)
	}
}

func TestExtract_PlainText(t *testing.T) {
	path := writeFile(t, "doc.txt", "The cat sat on the mat.")
	assert.Equal(t, "The cat sat on the mat.", extract.New().Extract(path))
}

func TestExtract_MissingFile(t *testing.T) {
	assert.Empty(t, extract.New().Extract(filepath.Join(t.TempDir(), "nope.txt")))
}

func TestExtract_JSONObject(t *testing.T) {
	path := writeFile(t, "doc.json", `{"company": "Acme", "year": 2023}`)

	text := extract.New().Extract(path)
	assert.Contains(t, text, "company: Acme\n\n")
	assert.Contains(t, text, "year: 2023\n\n")
}

func TestExtract_JSONKeepsDocumentKeyOrder(t *testing.T) {
	content := `{"j": 10, "a": 1, "h": 8, "c": 3, "f": 6, "b": 2, "i": 9, "d": 4, "g": 7, "e": 5}`
	want := "j: 10\n\na: 1\n\nh: 8\n\nc: 3\n\nf: 6\n\nb: 2\n\ni: 9\n\nd: 4\n\ng: 7\n\ne: 5\n\n"
	path := writeFile(t, "doc.json", content)

	e := extract.New()
	for i := 0; i < 50; i++ {
		require.Equal(t, want, e.Extract(path))
	}
}

func TestExtract_JSONArrayOfObjects(t *testing.T) {
	path := writeFile(t, "doc.json", `[{"a": "one"}, {"b": "two"}]`)

	text := extract.New().Extract(path)
	assert.Contains(t, text, "a: one\n\n")
	assert.Contains(t, text, "b: two\n\n")
}

func TestExtract_MalformedJSON(t *testing.T) {
	path := writeFile(t, "doc.json", `{"broken":`)

	text := extract.New().Extract(path)
	assert.Contains(t, text, "Invalid JSON format in")
	assert.Contains(t, text, path)
}

func TestExtract_Markdown(t *testing.T) {
	path := writeFile(t, "doc.md", "# Title\n- Bullet")
	assert.Equal(t, "Title\nBullet", extract.New().Extract(path))
}

func TestExtract_MarkdownMixedMarkers(t *testing.T) {
	path := writeFile(t, "doc.md", "## Heading\n* item one\n`code`\nplain text")

	text := extract.New().Extract(path)
	assert.Contains(t, text, "Heading")
	assert.Contains(t, text, "item one")
	assert.Contains(t, text, "plain text")
	assert.NotContains(t, text, "#")
	assert.NotContains(t, text, "*")
}

func TestExtract_HTML(t *testing.T) {
	path := writeFile(t, "filing.html", `<html><head><style>p{color:red}</style>
<script>var x = 1;</script></head>
<body><h1>Annual Report</h1><p>Revenue grew.</p></body></html>`)

	text := extract.New().Extract(path)
	assert.Contains(t, text, "Annual Report")
	assert.Contains(t, text, "Revenue grew.")
	assert.NotContains(t, text, "var x")
	assert.NotContains(t, text, "color:red")
}

func TestExtract_CorruptPDF(t *testing.T) {
	path := writeFile(t, "broken.pdf", "this is not a pdf")
	assert.Empty(t, extract.New().Extract(path))
}
