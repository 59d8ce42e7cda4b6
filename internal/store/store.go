// Package store provides the relational CRM backend: customer profiles,
// support tickets, interaction history, and the outbound email log. It backs
// the outreach agent's context assembly.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Customer is a CRM customer profile.
type Customer struct {
	ID          string
	Name        string
	Email       string
	Preferences map[string]any
}

// Ticket is a customer support ticket.
type Ticket struct {
	ID          string
	Title       string
	Status      string
	Priority    string
	Description string
	Tags        []string
	CreatedAt   time.Time
}

// Interaction is a recorded exchange with a customer.
type Interaction struct {
	ID        string
	Type      string
	Content   string
	Metadata  map[string]any
	CreatedAt time.Time
}

// Config contains configuration for the CRM store.
type Config struct {
	// DSN is the PostgreSQL connection string. If empty, DB must be provided.
	DSN string

	// DB is an existing database connection to reuse. If provided, DSN is
	// ignored and the store will not close the connection.
	DB *sql.DB
}

// Store implements the CRM data access layer over PostgreSQL.
type Store struct {
	db     *sql.DB
	ownsDB bool
}

// New creates a CRM store.
func New(cfg Config) (*Store, error) {
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

	return &Store{db: db, ownsDB: ownsDB}, nil
}

// Close releases the database connection if the store owns it.
func (s *Store) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

// GetCustomer retrieves a customer profile by ID. Returns nil when the
// customer does not exist.
func (s *Store) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	var c Customer
	var preferencesJSON sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, preferences
		FROM users
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Email, &preferencesJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query customer: %w", err)
	}

	if preferencesJSON.Valid && preferencesJSON.String != "" {
		if err := json.Unmarshal([]byte(preferencesJSON.String), &c.Preferences); err != nil {
			return nil, fmt.Errorf("unmarshal customer preferences: %w", err)
		}
	}

	return &c, nil
}

// RecentTickets returns the customer's most recent tickets, newest first.
func (s *Store) RecentTickets(ctx context.Context, customerID string, limit int) ([]Ticket, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, status, priority, description, tags, created_at
		FROM tickets
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	var tickets []Ticket
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.Title, &t.Status, &t.Priority, &t.Description,
			pq.Array(&t.Tags), &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tickets: %w", err)
	}
	return tickets, nil
}

// RecentInteractions returns the customer's most recent interactions, newest
// first.
func (s *Store) RecentInteractions(ctx context.Context, customerID string, limit int) ([]Interaction, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, content, metadata, created_at
		FROM interactions
		WHERE author_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	var interactions []Interaction
	for rows.Next() {
		var in Interaction
		var metadataJSON sql.NullString
		if err := rows.Scan(&in.ID, &in.Type, &in.Content, &metadataJSON, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		if metadataJSON.Valid && metadataJSON.String != "" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &in.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal interaction metadata: %w", err)
			}
		}
		interactions = append(interactions, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("interactions: %w", err)
	}
	return interactions, nil
}

// CustomerContext assembles the full formatted context for a customer:
// profile, recent tickets, recent interactions, and recorded preferences.
func (s *Store) CustomerContext(ctx context.Context, customerID string) (string, error) {
	customer, err := s.GetCustomer(ctx, customerID)
	if err != nil {
		return "", err
	}
	if customer == nil {
		return "", fmt.Errorf("no customer found for ID %s", customerID)
	}

	tickets, err := s.RecentTickets(ctx, customerID, 5)
	if err != nil {
		return "", err
	}

	interactions, err := s.RecentInteractions(ctx, customerID, 5)
	if err != nil {
		return "", err
	}

	return formatCustomerContext(customer, tickets, interactions), nil
}

// RecordInteraction persists a generated message as an interaction of type
// "outreach".
func (s *Store) RecordInteraction(ctx context.Context, customerID, message string, success bool) error {
	metadata, err := json.Marshal(map[string]any{
		"success":   success,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal interaction metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO interactions (id, author_id, type, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.NewString(), customerID, "outreach", message, string(metadata), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

// LogEmail records an outbound email delivery in the email log.
func (s *Store) LogEmail(ctx context.Context, customerID, recipient, subject, providerID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO email_log (id, customer_id, recipient, subject, provider_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.NewString(), customerID, recipient, subject, providerID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert email log: %w", err)
	}
	return nil
}
