package encoder_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditpulse/evalengine/pkg/encoder"
	"github.com/auditpulse/evalengine/pkg/similarity"
)

// letterEncoder is a deterministic local stub: the vector is the letter
// frequency histogram of the input.
type letterEncoder struct {
	name      string
	maxTokens int
	calls     int
	failWith  error
}

func (l *letterEncoder) Name() string   { return l.name }
func (l *letterEncoder) MaxTokens() int { return l.maxTokens }

func (l *letterEncoder) Encode(_ context.Context, text string) ([]float32, error) {
	l.calls++
	if l.failWith != nil {
		return nil, l.failWith
	}
	if strings.TrimSpace(text) == "" {
		return nil, similarity.ErrEmptyInput
	}
	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	return vec, nil
}

func TestEncodeChunked_ShortTextMatchesDirectPass(t *testing.T) {
	enc := &letterEncoder{name: "stub", maxTokens: 512}
	text := "The cat sat on the mat."

	direct, err := enc.Encode(context.Background(), text)
	require.NoError(t, err)

	chunked, err := encoder.EncodeChunked(context.Background(), enc, text, 256)
	require.NoError(t, err)

	assert.Equal(t, direct, chunked)
	assert.Equal(t, 2, enc.calls, "short text must produce exactly one window")
}

func TestEncodeChunked_LongTextUsesMultipleWindows(t *testing.T) {
	enc := &letterEncoder{name: "stub", maxTokens: 8}
	text := strings.Repeat("auditors examine financial statements carefully ", 20)

	vec, err := encoder.EncodeChunked(context.Background(), enc, text, 4)
	require.NoError(t, err)

	assert.Len(t, vec, 26)
	assert.Greater(t, enc.calls, 1, "long text must be windowed")
}

func TestEncodeChunked_RepeatedTextKeepsDirection(t *testing.T) {
	// Averaging windows of a self-similar document should stay almost
	// perfectly aligned with a single-pass encoding of one window.
	enc := &letterEncoder{name: "stub", maxTokens: 8}
	unit := "the quick brown fox jumps over the lazy dog "

	single, err := enc.Encode(context.Background(), unit)
	require.NoError(t, err)

	chunked, err := encoder.EncodeChunked(context.Background(), enc, strings.Repeat(unit, 30), 4)
	require.NoError(t, err)

	score, err := similarity.Cosine(single, chunked)
	require.NoError(t, err)
	assert.Greater(t, score, 0.95)
}

func TestEncodeChunked_EmptyInput(t *testing.T) {
	enc := &letterEncoder{name: "stub", maxTokens: 512}

	_, err := encoder.EncodeChunked(context.Background(), enc, "", 256)
	assert.ErrorIs(t, err, similarity.ErrEmptyInput)
	assert.Zero(t, enc.calls)
}

func TestEncodeChunked_EncoderFailurePropagates(t *testing.T) {
	boom := errors.New("model unavailable")
	enc := &letterEncoder{name: "stub", maxTokens: 512, failWith: boom}

	_, err := encoder.EncodeChunked(context.Background(), enc, "some text", 256)
	assert.ErrorIs(t, err, boom)
}

func TestEncodeChunked_BadOverlapFallsBack(t *testing.T) {
	// An overlap as wide as the window would never advance; the chunker must
	// still terminate.
	enc := &letterEncoder{name: "stub", maxTokens: 8}
	text := strings.Repeat("overlap handling ", 20)

	_, err := encoder.EncodeChunked(context.Background(), enc, text, 8)
	require.NoError(t, err)
}
