package refstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ErrNotFound is returned when no embedding exists for (encoder, ref id).
var ErrNotFound = errors.New("reference embedding not found")

type StoreConfig struct {
	ConnString string
	TableName  string
}

// Store keeps precomputed reference embeddings in Postgres, keyed by
// (encoder name, reference document id). References are written once by a
// precompute step and read many times by later comparisons.
type Store struct {
	config StoreConfig
	pool   *pgxpool.Pool
}

func NewWithConfig(config StoreConfig) (*Store, error) {
	if config.TableName == "" {
		config.TableName = "reference_embeddings"
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	s := &Store{
		config: config,
		pool:   pool,
	}

	if err := s.initialize(); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) initialize() error {
	ctx := context.Background()

	_, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %v", err)
	}

	// The embedding column is dimensionless: each encoder family has its own
	// dimensionality and rows are only ever fetched by primary key.
	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			encoder TEXT NOT NULL,
			ref_id TEXT NOT NULL,
			embedding vector NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (encoder, ref_id)
		)`, s.config.TableName)

	_, err = s.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	return nil
}

// Save writes the embedding for (encoder, refID), replacing any previous one.
// Overwrite is explicit: the same key written twice is a deliberate refresh
// of the reference, never an accident of the read path.
func (s *Store) Save(ctx context.Context, encoder, refID string, embedding []float32) error {
	stmt := fmt.Sprintf(`
		INSERT INTO %s (encoder, ref_id, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT (encoder, ref_id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			created_at = now()`,
		s.config.TableName)

	_, err := s.pool.Exec(ctx, stmt, encoder, refID, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to save reference embedding: %v", err)
	}
	return nil
}

// Load fetches the embedding for (encoder, refID).
func (s *Store) Load(ctx context.Context, encoder, refID string) ([]float32, error) {
	query := fmt.Sprintf(
		"SELECT embedding FROM %s WHERE encoder = $1 AND ref_id = $2",
		s.config.TableName)

	var vec pgvector.Vector
	err := s.pool.QueryRow(ctx, query, encoder, refID).Scan(&vec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, encoder, refID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reference embedding: %v", err)
	}

	return vec.Slice(), nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
