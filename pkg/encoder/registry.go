package encoder

import (
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/auditpulse/evalengine/internal/types"
)

// RegistryConfig wires a set of named encoders to one inference endpoint.
type RegistryConfig struct {
	BaseURL      string
	RateLimit    float64 // embedding requests per second, 0 = default
	OpenAIKeyEnv string
	Encoders     []Config
}

// Registry resolves encoder names to process-cached TextEncoder instances.
// Construction is lazy: loading a model client is the dominant setup cost and
// is paid once per name per process, not once per document.
type Registry struct {
	config   RegistryConfig
	limiter  *rate.Limiter
	mu       sync.Mutex
	byName   map[string]Config
	order    []string
	encoders map[string]types.TextEncoder
}

var _ types.EncoderRegistry = (*Registry)(nil)

func NewRegistry(config RegistryConfig) *Registry {
	if len(config.Encoders) == 0 {
		config.Encoders = DefaultEncoders()
	}
	if config.RateLimit == 0 {
		config.RateLimit = 4
	}

	r := &Registry{
		config:   config,
		limiter:  rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		byName:   make(map[string]Config, len(config.Encoders)),
		encoders: make(map[string]types.TextEncoder, len(config.Encoders)),
	}
	for _, enc := range config.Encoders {
		r.byName[enc.Name] = enc
		r.order = append(r.order, enc.Name)
	}
	return r
}

// DefaultEncoders is the standard comparison set: the same model families the
// evaluation pipeline has always scored with, served as embedding models.
func DefaultEncoders() []Config {
	return []Config{
		{Name: "t5", Display: "T5", Model: "t5-small", MaxTokens: 512},
		{Name: "sbert", Display: "Sentence Bert", Model: "sbert-base-nli-v2", MaxTokens: 512},
		{Name: "roberta", Display: "RoBERTa", Model: "roberta-base", MaxTokens: 512},
		{Name: "bert", Display: "Bert", Model: "bert-base-uncased", MaxTokens: 512},
		{Name: "modernbert", Display: "Modern BERT", Model: "modernbert-base", MaxTokens: 8192},
	}
}

// Get returns the encoder registered under name, constructing it on first use.
func (r *Registry) Get(name string) (types.TextEncoder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if enc, ok := r.encoders[name]; ok {
		return enc, nil
	}

	config, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown encoder %q", name)
	}

	var (
		enc *Remote
		err error
	)
	switch config.Provider {
	case "openai":
		enc, err = NewOpenAI(config, r.config.OpenAIKeyEnv, r.limiter)
	default:
		enc, err = NewOllama(config, r.config.BaseURL, r.limiter)
	}
	if err != nil {
		return nil, err
	}

	r.encoders[name] = enc
	return enc, nil
}

// Names returns the configured encoder names in configuration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// DisplayName returns the encoder's reporting name as used in the comparison
// history and metrics rows.
func (r *Registry) DisplayName(name string) string {
	if config, ok := r.byName[name]; ok && config.Display != "" {
		return config.Display
	}
	return name
}
