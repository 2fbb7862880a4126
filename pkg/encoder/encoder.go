package encoder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"github.com/auditpulse/evalengine/pkg/similarity"
)

// Config describes one named text-encoding model.
type Config struct {
	Name      string `yaml:"name"`
	Display   string `yaml:"display"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	Provider  string `yaml:"provider"` // "ollama" (default) or "openai"
}

// embeddingClient is the slice of the langchaingo model clients we use.
type embeddingClient interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// Remote encodes text through a served embedding model. One instance per
// model family; the model name is the only thing that differs between them.
type Remote struct {
	name      string
	maxTokens int
	client    embeddingClient
	limiter   *rate.Limiter
}

// NewOllama builds an encoder backed by an ollama-compatible server.
func NewOllama(config Config, baseURL string, limiter *rate.Limiter) (*Remote, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("encoder %s: model name is required", config.Name)
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	client, err := ollama.New(
		ollama.WithModel(config.Model),
		ollama.WithServerURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("encoder %s: failed to initialize client: %w", config.Name, err)
	}

	return newRemote(config, client, limiter), nil
}

// NewOpenAI builds the optional OpenAI embedding encoder. The key is read
// from keyEnv; an unset key disables the encoder rather than failing later
// with an opaque API error.
func NewOpenAI(config Config, keyEnv string, limiter *rate.Limiter) (*Remote, error) {
	key := os.Getenv(keyEnv)
	if key == "" {
		return nil, fmt.Errorf("encoder %s: missing API key in env %s", config.Name, keyEnv)
	}
	if config.Model == "" {
		config.Model = "text-embedding-ada-002"
	}

	client, err := openai.New(
		openai.WithToken(key),
		openai.WithEmbeddingModel(config.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("encoder %s: failed to initialize client: %w", config.Name, err)
	}

	return newRemote(config, client, limiter), nil
}

func newRemote(config Config, client embeddingClient, limiter *rate.Limiter) *Remote {
	if config.MaxTokens == 0 {
		config.MaxTokens = 512
	}
	return &Remote{
		name:      config.Name,
		maxTokens: config.MaxTokens,
		client:    client,
		limiter:   limiter,
	}
}

func (r *Remote) Name() string { return r.name }

func (r *Remote) MaxTokens() int { return r.maxTokens }

// Encode returns the model's vector for a single text. Text longer than the
// token window belongs in EncodeChunked, not here.
func (r *Remote) Encode(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, similarity.ErrEmptyInput
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	embeddings, err := r.client.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("encoder %s: embedding failed: %w", r.name, err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("encoder %s: server returned no embedding", r.name)
	}

	return embeddings[0], nil
}
