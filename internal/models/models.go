package models

import (
	"encoding/json"
	"math"
)

// Format tags a document's on-disk representation.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Document is one unit of text content handed to the extraction layer.
type Document struct {
	Path   string
	Format Format
}

// Score is a similarity value in [-1, 1]. NaN marks an encoder that failed
// and serializes as JSON null so the history file stays valid JSON.
type Score float64

func (s Score) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(s)) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(s))
}

func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Score(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = Score(f)
	return nil
}

// ComparedFiles names the two sides of a comparison.
type ComparedFiles struct {
	File1 string `json:"file_1"`
	File2 string `json:"file_2"`
}

// ComparisonRecord is one persisted evaluation outcome. The JSON field names,
// including the historical "Compaired_files" spelling, are the on-disk contract
// of the comparison history file and must not change.
type ComparisonRecord struct {
	ID            int              `json:"id"`
	Date          string           `json:"date"`
	ComparedFiles ComparedFiles    `json:"Compaired_files"`
	Scores        map[string]Score `json:"score"`
}

// EvaluationTask is one generated artifact awaiting scoring, as surfaced by
// the external runs table.
type EvaluationTask struct {
	RunID      string
	ReportPath string
	PromptPath string
}

// MetricsRow is the per-task row written to the metrics table once every
// configured encoder has produced a score (or a NaN sentinel).
type MetricsRow struct {
	FileName   string
	RunID      string
	PromptPath string
	Scores     map[string]Score
}
