package types

import (
	"context"

	"github.com/auditpulse/evalengine/internal/models"
)

// Core interfaces

// TextEncoder maps text to a fixed-length vector. Implementations are named
// and declare the widest token window a single Encode call accepts.
type TextEncoder interface {
	Name() string
	MaxTokens() int
	Encode(ctx context.Context, text string) ([]float32, error)
}

// EncoderRegistry resolves encoder names to lazily constructed, process-cached
// TextEncoder instances.
type EncoderRegistry interface {
	Get(name string) (TextEncoder, error)
	Names() []string
	DisplayName(name string) string
}

// Extractor converts a document on disk into flat UTF-8 text. An empty string
// means "no text produced" (missing, corrupt or empty input); extraction never
// fails a batch.
type Extractor interface {
	Extract(path string) string
}

// HistoryStore is the append-only comparison history.
type HistoryStore interface {
	Load() ([]models.ComparisonRecord, error)
	Append(fileA, fileB string, scores map[string]models.Score) (*models.ComparisonRecord, error)
}

// ReferenceStore persists precomputed reference embeddings keyed by
// (encoder name, reference id).
type ReferenceStore interface {
	Save(ctx context.Context, encoder, refID string, embedding []float32) error
	Load(ctx context.Context, encoder, refID string) ([]float32, error)
}

// TaskRepository fronts the external runs and metrics tables.
type TaskRepository interface {
	FindPending(ctx context.Context) ([]models.EvaluationTask, error)
	InsertMetrics(ctx context.Context, row models.MetricsRow) error
	MarkEvaluated(ctx context.Context, runID string) error
}
