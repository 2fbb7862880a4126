package evaluator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/auditpulse/evalengine/internal/models"
	"github.com/auditpulse/evalengine/internal/types"
	"github.com/auditpulse/evalengine/pkg/encoder"
	"github.com/auditpulse/evalengine/pkg/scoring"
	"github.com/auditpulse/evalengine/pkg/similarity"
)

// ErrNoText marks a comparison skipped because extraction produced nothing
// for at least one side. A comparison is never recorded with missing input.
var ErrNoText = errors.New("no text extracted")

type EvaluatorConfig struct {
	Extractor     types.Extractor
	Registry      types.EncoderRegistry
	History       types.HistoryStore
	References    types.ReferenceStore
	Tasks         types.TaskRepository
	Overlap       int    // token overlap between chunk windows
	CharChunkSize int    // character chunk size for streaming reads
	ReferenceID   string // reference document id scored against by the worker
}

// Evaluator drives extraction and scoring over document pairs and manages
// the comparison history and evaluation task lifecycle.
type Evaluator struct {
	config EvaluatorConfig
	scorer *scoring.Scorer
}

func NewWithConfig(config EvaluatorConfig) *Evaluator {
	if config.Overlap == 0 {
		config.Overlap = 256
	}
	if config.CharChunkSize == 0 {
		config.CharChunkSize = 1000
	}
	if config.ReferenceID == "" {
		config.ReferenceID = "golden-report"
	}

	return &Evaluator{
		config: config,
		scorer: scoring.NewWithConfig(scoring.ScorerConfig{
			Registry: config.Registry,
			Overlap:  config.Overlap,
		}),
	}
}

// CompareDocuments extracts both documents, scores them under every
// configured encoder and appends one record to the comparison history.
// Returns ErrNoText without persisting anything when either side is empty.
func (e *Evaluator) CompareDocuments(ctx context.Context, pathA, pathB string) (*models.ComparisonRecord, error) {
	textA := e.config.Extractor.Extract(pathA)
	textB := e.config.Extractor.Extract(pathB)
	if textA == "" || textB == "" {
		log.Printf("evaluator: skipping comparison of %s vs %s: missing input text", pathA, pathB)
		return nil, ErrNoText
	}

	scores := e.scorer.ScoreAll(ctx, textA, textB, e.config.Registry.Names())

	record, err := e.config.History.Append(filepath.Base(pathA), filepath.Base(pathB), scores)
	if err != nil {
		return nil, fmt.Errorf("failed to record comparison: %w", err)
	}
	return record, nil
}

// CompareAgainstReference streams the generated document in fixed-size
// character chunks, encodes each chunk, averages, and scores the result
// against the persisted reference embedding for (encoderName, refID).
// The character boundary bounds memory on arbitrarily large artifacts and is
// independent of the token windows used inside each chunk's encoding.
func (e *Evaluator) CompareAgainstReference(ctx context.Context, path, encoderName, refID string) (float64, error) {
	enc, err := e.config.Registry.Get(encoderName)
	if err != nil {
		return 0, err
	}

	reference, err := e.config.References.Load(ctx, encoderName, refID)
	if err != nil {
		return 0, err
	}

	vec, err := e.encodeStreaming(ctx, enc, path)
	if err != nil {
		return 0, err
	}

	return similarity.Cosine(vec, reference)
}

// encodeStreaming reads the document rune by rune so line structure never
// matters: a newline-free artifact chunks the same way as a line-oriented one.
func (e *Evaluator) encodeStreaming(ctx context.Context, enc types.TextEncoder, path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var vectors [][]float32
	encodeBuffer := func(text string) error {
		vec, err := encoder.EncodeChunked(ctx, enc, text, e.config.Overlap)
		if err != nil {
			return err
		}
		vectors = append(vectors, vec)
		return nil
	}

	reader := bufio.NewReader(f)
	var buffer strings.Builder
	for {
		r, _, err := reader.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		buffer.WriteRune(r)
		if buffer.Len() >= e.config.CharChunkSize {
			if err := encodeBuffer(buffer.String()); err != nil {
				return nil, err
			}
			buffer.Reset()
		}
	}
	if buffer.Len() > 0 {
		if err := encodeBuffer(buffer.String()); err != nil {
			return nil, err
		}
	}

	return similarity.Mean(vectors)
}

// PrecomputeReference extracts and encodes a canonical document and persists
// its embedding for later comparisons.
func (e *Evaluator) PrecomputeReference(ctx context.Context, path, encoderName, refID string) error {
	text := e.config.Extractor.Extract(path)
	if text == "" {
		return ErrNoText
	}

	enc, err := e.config.Registry.Get(encoderName)
	if err != nil {
		return err
	}

	vec, err := encoder.EncodeChunked(ctx, enc, text, e.config.Overlap)
	if err != nil {
		return err
	}

	return e.config.References.Save(ctx, encoderName, refID, vec)
}

// TaskResult summarizes one drained evaluation task.
type TaskResult struct {
	Task   models.EvaluationTask
	Scores map[string]models.Score
	Err    error
}

// DrainPending scores every pending evaluation task against the reference
// embeddings and completes each one: metrics row first, evaluated flag last.
// A failure anywhere leaves the flag untouched so the task is retried on the
// next pass (at-least-once). A task where no encoder produced a usable score
// is left pending too, so it is picked up again once its reference embedding
// exists. onResult, if set, is called once per task.
func (e *Evaluator) DrainPending(ctx context.Context, onResult func(TaskResult)) (int, error) {
	pending, err := e.config.Tasks.FindPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to discover pending evaluations: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	completed := 0
	for _, task := range pending {
		result := TaskResult{Task: task, Scores: e.scoreTask(ctx, task)}

		if !hasUsableScore(result.Scores) {
			result.Err = errors.New("no encoder produced a score")
			log.Printf("evaluator: run %s left pending for retry: %v", task.RunID, result.Err)
		} else if result.Err = e.completeTask(ctx, task, result.Scores); result.Err != nil {
			log.Printf("evaluator: run %s left pending for retry: %v", task.RunID, result.Err)
		} else {
			completed++
		}
		if onResult != nil {
			onResult(result)
		}
	}

	return completed, nil
}

func (e *Evaluator) scoreTask(ctx context.Context, task models.EvaluationTask) map[string]models.Score {
	scores := make(map[string]models.Score)
	for _, name := range e.config.Registry.Names() {
		display := e.config.Registry.DisplayName(name)
		score, err := e.CompareAgainstReference(ctx, task.ReportPath, name, e.config.ReferenceID)
		if err != nil {
			log.Printf("evaluator: run %s encoder %s failed: %v", task.RunID, name, err)
			scores[display] = models.Score(math.NaN())
			continue
		}
		scores[display] = models.Score(score)
	}
	return scores
}

func hasUsableScore(scores map[string]models.Score) bool {
	for _, s := range scores {
		if !math.IsNaN(float64(s)) {
			return true
		}
	}
	return false
}

func (e *Evaluator) completeTask(ctx context.Context, task models.EvaluationTask, scores map[string]models.Score) error {
	row := models.MetricsRow{
		FileName:   filepath.Base(task.ReportPath),
		RunID:      task.RunID,
		PromptPath: task.PromptPath,
		Scores:     scores,
	}
	if err := e.config.Tasks.InsertMetrics(ctx, row); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	if err := e.config.Tasks.MarkEvaluated(ctx, task.RunID); err != nil {
		return fmt.Errorf("failed to flip evaluation flag: %w", err)
	}
	return nil
}
