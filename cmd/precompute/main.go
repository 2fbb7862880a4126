package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/auditpulse/evalengine/pkg/config"
	"github.com/auditpulse/evalengine/pkg/encoder"
	"github.com/auditpulse/evalengine/pkg/evaluator"
	"github.com/auditpulse/evalengine/pkg/extract"
	"github.com/auditpulse/evalengine/pkg/refstore"
)

func main() {
	var configPath, dbURL, file, encoders, refID string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&dbURL, "db-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	flag.StringVar(&file, "file", "", "Reference document to embed")
	flag.StringVar(&encoders, "encoders", "", "Comma-separated encoder names (default: all configured)")
	flag.StringVar(&refID, "ref-id", "", "Reference id to store under")
	flag.Parse()

	if file == "" {
		fmt.Fprintf(os.Stderr, "usage: %s -file <reference-document> [-encoders t5,sbert] [-ref-id id]\n", os.Args[0])
		os.Exit(2)
	}

	if err := run(configPath, dbURL, file, encoders, refID); err != nil {
		log.Fatal(err)
	}
}

func run(configPath, dbURL, file, encoderList, refID string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}
	if dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if refID == "" {
		refID = cfg.Evaluation.ReferenceID
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid config: %v", errs[0])
	}

	refs, err := refstore.NewWithConfig(refstore.StoreConfig{
		ConnString: cfg.Database.URL,
		TableName:  cfg.Database.RefTable,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize reference store: %v", err)
	}
	defer refs.Close()

	registry := encoder.NewRegistry(encoder.RegistryConfig{
		BaseURL:      cfg.Inference.BaseURL,
		RateLimit:    cfg.Inference.RateLimit,
		OpenAIKeyEnv: cfg.Inference.OpenAIKeyEnv,
		Encoders:     cfg.Encoders,
	})

	eval := evaluator.NewWithConfig(evaluator.EvaluatorConfig{
		Extractor:  extract.New(),
		Registry:   registry,
		References: refs,
		Overlap:    cfg.Chunking.Overlap,
	})

	names := registry.Names()
	if encoderList != "" {
		names = strings.Split(encoderList, ",")
		for i := range names {
			names[i] = strings.TrimSpace(names[i])
		}
	}

	color.Blue("\nPrecomputing reference embeddings for %s (ref id %q)\n", file, refID)
	bar := progressbar.NewOptions(len(names),
		progressbar.OptionSetDescription(color.BlueString("Encoding reference...")),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)

	failed := 0
	for _, name := range names {
		ctx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Inference.Timeout)*time.Second)
		err := eval.PrecomputeReference(ctx, file, name, refID)
		cancel()
		bar.Add(1)
		if err != nil {
			failed++
			color.Red("\n✗ %s: %v", name, err)
			continue
		}
		color.Green("\n✓ %s stored", name)
	}
	bar.Finish()

	if failed > 0 {
		return fmt.Errorf("%d of %d encoders failed", failed, len(names))
	}
	color.Cyan("\nReference embeddings stored for %d encoder(s)\n", len(names))
	return nil
}
