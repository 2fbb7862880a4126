package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/auditpulse/evalengine/pkg/config"
	"github.com/auditpulse/evalengine/pkg/encoder"
	"github.com/auditpulse/evalengine/pkg/evaluator"
	"github.com/auditpulse/evalengine/pkg/extract"
	"github.com/auditpulse/evalengine/pkg/history"
	"github.com/auditpulse/evalengine/pkg/refstore"
	"github.com/auditpulse/evalengine/pkg/tasks"
)

func main() {
	var configPath, dbURL string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&dbURL, "db-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	flag.Parse()

	if err := run(configPath, dbURL); err != nil {
		log.Fatal(err)
	}
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("tasks"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(configPath, dbURL string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}
	if dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid config: %v", errs[0])
	}

	repo, err := tasks.NewWithConfig(tasks.RepositoryConfig{
		ConnString:   cfg.Database.URL,
		RunsTable:    cfg.Database.RunsTable,
		MetricsTable: cfg.Database.MetricsTable,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize task repository: %v", err)
	}
	defer repo.Close()

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
		Extractor:     extract.New(),
		Registry:      registry,
		History:       history.NewWithConfig(history.StoreConfig{Path: cfg.History.Path}),
		References:    refs,
		Tasks:         repo,
		Overlap:       cfg.Chunking.Overlap,
		CharChunkSize: cfg.Chunking.CharChunkSize,
		ReferenceID:   cfg.Evaluation.ReferenceID,
	})

	timeout := time.Duration(cfg.Inference.Timeout) * time.Second
	total, failed := 0, 0

	for {
		pending, err := repo.FindPending(context.Background())
		if err != nil {
			return fmt.Errorf("failed to query pending evaluations: %v", err)
		}
		if len(pending) == 0 {
			break
		}

		color.Blue("\nFound %d pending evaluation(s)\n", len(pending))
		bar := getProgressBar(len(pending), "Scoring generated reports...")

		ctx, cancel := context.WithTimeout(context.Background(), timeout*time.Duration(len(pending)))
		completed, err := eval.DrainPending(ctx, func(result evaluator.TaskResult) {
			bar.Add(1)
			if result.Err != nil {
				failed++
				color.Red("\n✗ run %s: %v", result.Task.RunID, result.Err)
				return
			}
			color.Green("\n✓ run %s evaluated", result.Task.RunID)
		})
		cancel()
		bar.Finish()
		if err != nil {
			return err
		}

		total += completed
		if completed == 0 {
			// Everything still pending failed this pass; leave it for the
			// next worker invocation instead of spinning on it.
			break
		}
	}

	if total == 0 && failed == 0 {
		color.Cyan("No pending evaluations\n")
		return nil
	}

	color.Cyan("\nEvaluated %d task(s), %d failed\n", total, failed)
	return nil
}
