// Package vector stores interaction embeddings in PostgreSQL with the
// pgvector extension and retrieves similar past interactions for prompt
// context.
package vector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config contains configuration for the vector index.
type Config struct {
	// DSN is the PostgreSQL connection string. If empty, DB must be provided.
	DSN string

	// DB is an existing database connection to reuse. If provided, DSN is
	// ignored and the index will not close the connection.
	DB *sql.DB

	// Dimension is the embedding dimension. Defaults to 1536 for
	// text-embedding-3-small.
	Dimension int
}

// Index implements similarity search over recorded interactions.
type Index struct {
	db        *sql.DB
	embedder  Embedder
	dimension int
	ownsDB    bool
}

// New creates a vector index backed by pgvector.
func New(cfg Config, embedder Embedder) (*Index, error) {
	if cfg.Dimension == 0 {
		cfg.Dimension = 1536
	}

	var db *sql.DB
	var ownsDB bool
	var err error

	if cfg.DB != nil {
		db = cfg.DB
	} else if cfg.DSN != "" {
		db, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		ownsDB = true

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
	} else {
		return nil, fmt.Errorf("either DSN or DB must be provided")
	}

	return &Index{
		db:        db,
		embedder:  embedder,
		dimension: cfg.Dimension,
		ownsDB:    ownsDB,
	}, nil
}

// Close releases the database connection if the index owns it.
func (i *Index) Close() error {
	if i.ownsDB {
		return i.db.Close()
	}
	return nil
}

// AddInteraction embeds and stores an interaction for later retrieval.
func (i *Index) AddInteraction(ctx context.Context, customerID, content string, success bool) error {
	embedding, err := i.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embed interaction: %w", err)
	}
	if err := i.validateEmbedding(embedding); err != nil {
		return err
	}

	_, err = i.db.ExecContext(ctx, `
		INSERT INTO interaction_embeddings (id, customer_id, content, success, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5::vector, $6)
	`, uuid.NewString(), customerID, content, success, encodeEmbedding(embedding), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert interaction embedding: %w", err)
	}
	return nil
}

// SimilarInteractions returns the content of the k most similar successful
// interactions for the customer, most similar first.
func (i *Index) SimilarInteractions(ctx context.Context, customerID, query string, k int) ([]string, error) {
	if k <= 0 {
		k = 3
	}

	embedding, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if err := i.validateEmbedding(embedding); err != nil {
		return nil, err
	}

	rows, err := i.db.QueryContext(ctx, `
		SELECT content, 1 - (embedding <=> $1::vector) AS similarity
		FROM interaction_embeddings
		WHERE customer_id = $2 AND success
		ORDER BY embedding <=> $1::vector ASC
		LIMIT $3
	`, encodeEmbedding(embedding), customerID, k)
	if err != nil {
		return nil, fmt.Errorf("query similar interactions: %w", err)
	}
	defer rows.Close()

	var results []string
	for rows.Next() {
		var content string
		var similarity float64
		if err := rows.Scan(&content, &similarity); err != nil {
			return nil, fmt.Errorf("scan similar interaction: %w", err)
		}
		results = append(results, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("similar interactions: %w", err)
	}
	return results, nil
}

func (i *Index) validateEmbedding(embedding []float32) error {
	if len(embedding) != i.dimension {
		return fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(embedding), i.dimension)
	}
	return nil
}

// encodeEmbedding renders an embedding in pgvector's text format.
func encodeEmbedding(embedding []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, f := range embedding {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%g", f)
	}
	sb.WriteByte(']')
	return sb.String()
}
