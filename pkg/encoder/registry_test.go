package encoder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditpulse/evalengine/pkg/encoder"
)

func TestRegistry_Defaults(t *testing.T) {
	reg := encoder.NewRegistry(encoder.RegistryConfig{})

	names := reg.Names()
	assert.Equal(t, []string{"t5", "sbert", "roberta", "bert", "modernbert"}, names)
	assert.Equal(t, "Sentence Bert", reg.DisplayName("sbert"))
	assert.Equal(t, "Modern BERT", reg.DisplayName("modernbert"))
}

func TestRegistry_DisplayNameFallsBackToName(t *testing.T) {
	reg := encoder.NewRegistry(encoder.RegistryConfig{
		Encoders: []encoder.Config{{Name: "custom", Model: "custom-model"}},
	})
	assert.Equal(t, "custom", reg.DisplayName("custom"))
}

func TestRegistry_GetUnknownEncoder(t *testing.T) {
	reg := encoder.NewRegistry(encoder.RegistryConfig{})

	_, err := reg.Get("word2vec")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "word2vec")
}

func TestRegistry_GetCachesInstances(t *testing.T) {
	reg := encoder.NewRegistry(encoder.RegistryConfig{BaseURL: "http://localhost:11434"})

	first, err := reg.Get("bert")
	require.NoError(t, err)
	second, err := reg.Get("bert")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "bert", first.Name())
	assert.Equal(t, 512, first.MaxTokens())
}

func TestRegistry_OpenAIRequiresKey(t *testing.T) {
	t.Setenv("EVAL_OPENAI_KEY", "")
	reg := encoder.NewRegistry(encoder.RegistryConfig{
		OpenAIKeyEnv: "EVAL_OPENAI_KEY",
		Encoders: []encoder.Config{
			{Name: "openai", Display: "OpenAI score", Provider: "openai"},
		},
	})

	_, err := reg.Get("openai")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "EVAL_OPENAI_KEY")
}
