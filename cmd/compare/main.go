package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/auditpulse/evalengine/pkg/config"
	"github.com/auditpulse/evalengine/pkg/encoder"
	"github.com/auditpulse/evalengine/pkg/evaluator"
	"github.com/auditpulse/evalengine/pkg/extract"
	"github.com/auditpulse/evalengine/pkg/history"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [-config file] <document-a> <document-b>\n", os.Args[0])
		os.Exit(2)
	}

	if err := run(configPath, flag.Arg(0), flag.Arg(1)); err != nil {
		if errors.Is(err, evaluator.ErrNoText) {
			color.Yellow("Skipped: no text could be extracted from one or both documents")
			return
		}
		log.Fatal(err)
	}
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(configPath, pathA, pathB string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("invalid config: %v", errs[0])
	}

	registry := encoder.NewRegistry(encoder.RegistryConfig{
		BaseURL:      cfg.Inference.BaseURL,
		RateLimit:    cfg.Inference.RateLimit,
		OpenAIKeyEnv: cfg.Inference.OpenAIKeyEnv,
		Encoders:     cfg.Encoders,
	})

	eval := evaluator.NewWithConfig(evaluator.EvaluatorConfig{
		Extractor: extract.New(),
		Registry:  registry,
		History:   history.NewWithConfig(history.StoreConfig{Path: cfg.History.Path}),
		Overlap:   cfg.Chunking.Overlap,
	})

	color.Blue("\nComparing %s vs %s\n", pathA, pathB)
	spinner := getSpinner("Scoring documents...")

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Inference.Timeout)*time.Second)
	defer cancel()

	record, err := eval.CompareDocuments(ctx, pathA, pathB)
	spinner.Finish()
	fmt.Print("\r")
	if err != nil {
		return err
	}

	names := make([]string, 0, len(record.Scores))
	for name := range record.Scores {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println()
	for _, name := range names {
		score := float64(record.Scores[name])
		if math.IsNaN(score) {
			color.Red("%-16s failed", name)
			continue
		}
		color.Green("%-16s %.4f", name, score)
	}
	color.Cyan("\nSaved comparison #%d\n", record.ID)

	return nil
}
