package encoder

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/auditpulse/evalengine/internal/types"
	"github.com/auditpulse/evalengine/pkg/similarity"
)

const tokenEncoding = "cl100k_base"

var (
	tokenizerOnce sync.Once
	tokenizer     *tiktoken.Tiktoken
	tokenizerErr  error
)

func getTokenizer() (*tiktoken.Tiktoken, error) {
	tokenizerOnce.Do(func() {
		tokenizer, tokenizerErr = tiktoken.GetEncoding(tokenEncoding)
	})
	return tokenizer, tokenizerErr
}

// EncodeChunked encodes text of any length with enc. Input that fits the
// encoder's token window is encoded in one pass; longer input is split into
// overlapping windows which are encoded independently and averaged.
//
// Windows overlap by `overlap` tokens so a sentence cut at one boundary is
// seen whole in the next window; only the final window may be short.
func EncodeChunked(ctx context.Context, enc types.TextEncoder, text string, overlap int) ([]float32, error) {
	tk, err := getTokenizer()
	if err != nil {
		return nil, fmt.Errorf("tokenizer init failed: %w", err)
	}

	tokens := tk.Encode(text, nil, nil)
	if len(tokens) == 0 {
		return nil, similarity.ErrEmptyInput
	}

	maxTokens := enc.MaxTokens()
	if maxTokens <= 0 {
		maxTokens = 512
	}
	if overlap < 0 || overlap >= maxTokens {
		overlap = maxTokens / 2
	}
	step := maxTokens - overlap

	var vectors [][]float32
	for start := 0; ; start += step {
		end := start + maxTokens
		if end > len(tokens) {
			end = len(tokens)
		}

		vec, err := enc.Encode(ctx, tk.Decode(tokens[start:end]))
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vec)

		if end == len(tokens) {
			break
		}
	}

	if len(vectors) == 1 {
		return vectors[0], nil
	}
	return similarity.Mean(vectors)
}
