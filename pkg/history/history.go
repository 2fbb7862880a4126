package history

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/auditpulse/evalengine/internal/models"
)

const dateLayout = "2006-01-02 15:04:05"

// Store is the append-only comparison history: a single JSON array of
// records, rewritten whole on every append. Record volume is one entry per
// evaluation run, so the read-modify-write is cheap; it does assume a single
// writer process at a time.
type Store struct {
	path string
}

type StoreConfig struct {
	Path string
}

func NewWithConfig(config StoreConfig) *Store {
	if config.Path == "" {
		config.Path = filepath.Join("Database", "metrics", "comparisons.json")
	}
	return &Store{path: config.Path}
}

// Load reads the current history. A missing file is an empty history; an
// unparseable file is treated as empty with a warning so one corrupt store
// never blocks new evaluations.
func (s *Store) Load() ([]models.ComparisonRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history %s: %w", s.path, err)
	}

	var records []models.ComparisonRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("history: %s is not valid JSON, starting fresh: %v", s.path, err)
		return nil, nil
	}
	return records, nil
}

// Append allocates the next id, stamps the current time and atomically
// rewrites the store with the new record included.
func (s *Store) Append(fileA, fileB string, scores map[string]models.Score) (*models.ComparisonRecord, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}

	nextID := 1
	for _, r := range records {
		if r.ID >= nextID {
			nextID = r.ID + 1
		}
	}

	record := models.ComparisonRecord{
		ID:   nextID,
		Date: time.Now().Format(dateLayout),
		ComparedFiles: models.ComparedFiles{
			File1: fileA,
			File2: fileB,
		},
		Scores: scores,
	}
	records = append(records, record)

	if err := s.write(records); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) write(records []models.ComparisonRecord) error {
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	// Write-then-rename so a crash mid-write never truncates the store.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace history: %w", err)
	}
	return nil
}
