package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/auditpulse/evalengine/pkg/encoder"
)

type Config struct {
	Inference struct {
		BaseURL      string  `yaml:"base_url"`
		RateLimit    float64 `yaml:"rate_limit"`
		Timeout      int     `yaml:"timeout_seconds"`
		OpenAIKeyEnv string  `yaml:"openai_key_env"`
	} `yaml:"inference"`

	Database struct {
		URL          string `yaml:"url"`
		RefTable     string `yaml:"ref_table"`
		RunsTable    string `yaml:"runs_table"`
		MetricsTable string `yaml:"metrics_table"`
	} `yaml:"database"`

	History struct {
		Path string `yaml:"path"`
	} `yaml:"history"`

	Chunking struct {
		Overlap       int `yaml:"overlap"`
		CharChunkSize int `yaml:"char_chunk_size"`
	} `yaml:"chunking"`

	Evaluation struct {
		ReferenceID string `yaml:"reference_id"`
	} `yaml:"evaluation"`

	Encoders []encoder.Config `yaml:"encoders"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/evalengine/config.yaml"),
			"/etc/evalengine/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Inference.BaseURL == "" {
		config.Inference.BaseURL = "http://localhost:11434"
	}
	if config.Inference.RateLimit == 0 {
		config.Inference.RateLimit = 4.0
	}
	if config.Inference.Timeout == 0 {
		config.Inference.Timeout = 120
	}

	if config.Database.RefTable == "" {
		config.Database.RefTable = "reference_embeddings"
	}
	if config.Database.RunsTable == "" {
		config.Database.RunsTable = "runs"
	}
	if config.Database.MetricsTable == "" {
		config.Database.MetricsTable = "metrics"
	}

	if config.History.Path == "" {
		config.History.Path = filepath.Join("Database", "metrics", "comparisons.json")
	}

	if config.Chunking.Overlap == 0 {
		config.Chunking.Overlap = 256
	}
	if config.Chunking.CharChunkSize == 0 {
		config.Chunking.CharChunkSize = 1000
	}

	if config.Evaluation.ReferenceID == "" {
		config.Evaluation.ReferenceID = "golden-report"
	}

	if len(config.Encoders) == 0 {
		config.Encoders = encoder.DefaultEncoders()
	}
}

func mergeWithEnv(config *Config) {
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.Inference.BaseURL = baseURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
}
