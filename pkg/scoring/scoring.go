package scoring

import (
	"context"
	"log"
	"math"

	"github.com/auditpulse/evalengine/internal/models"
	"github.com/auditpulse/evalengine/internal/types"
	"github.com/auditpulse/evalengine/pkg/encoder"
	"github.com/auditpulse/evalengine/pkg/similarity"
)

// Scorer runs a set of named encoders over document pairs.
type Scorer struct {
	registry types.EncoderRegistry
	overlap  int
}

type ScorerConfig struct {
	Registry types.EncoderRegistry
	Overlap  int // token overlap between chunk windows
}

func NewWithConfig(config ScorerConfig) *Scorer {
	if config.Overlap == 0 {
		config.Overlap = 256
	}
	return &Scorer{
		registry: config.Registry,
		overlap:  config.Overlap,
	}
}

// ScoreAll scores textA against textB under every named encoder. Encoder
// failures are isolated: a failed encoder contributes NaN and a log line, and
// the result always has one entry per requested name, keyed by display name.
func (s *Scorer) ScoreAll(ctx context.Context, textA, textB string, names []string) map[string]models.Score {
	scores := make(map[string]models.Score, len(names))

	for _, name := range names {
		display := s.registry.DisplayName(name)
		score, err := s.scoreOne(ctx, textA, textB, name)
		if err != nil {
			log.Printf("scoring: encoder %s failed: %v", name, err)
			scores[display] = models.Score(math.NaN())
			continue
		}
		scores[display] = models.Score(score)
	}

	return scores
}

func (s *Scorer) scoreOne(ctx context.Context, textA, textB, name string) (float64, error) {
	enc, err := s.registry.Get(name)
	if err != nil {
		return 0, err
	}

	vecA, err := encoder.EncodeChunked(ctx, enc, textA, s.overlap)
	if err != nil {
		return 0, err
	}
	vecB, err := encoder.EncodeChunked(ctx, enc, textB, s.overlap)
	if err != nil {
		return 0, err
	}

	// Both vectors come from the same encoder by construction; a dimension
	// mismatch here is a real bug and propagates.
	return similarity.Cosine(vecA, vecB)
}
