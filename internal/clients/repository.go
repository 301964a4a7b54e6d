package clients

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/agendazap/agendazap/pkg/logging"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies it.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository is the client directory backed by Postgres.
type Repository struct {
	db     DB
	logger *logging.Logger
}

// NewRepository initializes the directory.
func NewRepository(db DB, logger *logging.Logger) *Repository {
	if db == nil {
		panic("clients: db required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Repository{db: db, logger: logger}
}

// FindOrCreate returns the client for a phone, creating the row on first
// contact. When the channel supplies a real profile name for an existing
// client still carrying the default placeholder, the stored name is
// refreshed.
func (r *Repository) FindOrCreate(ctx context.Context, phone, profileName string) (*Client, error) {
	normalized := NormalizePhone(phone)
	if !ValidPhone(normalized) {
		return nil, ErrInvalidPhone
	}
	if profileName != "" && profileName != DefaultName && !ValidName(profileName) {
		return nil, ErrInvalidName
	}

	var c Client
	err := r.db.QueryRow(ctx,
		`SELECT id, nome, telefone FROM clientes WHERE telefone = $1`,
		normalized,
	).Scan(&c.ID, &c.Name, &c.Phone)

	if err == nil {
		if profileName != "" && profileName != DefaultName && c.Name == DefaultName {
			if _, err := r.db.Exec(ctx,
				`UPDATE clientes SET nome = $1 WHERE id = $2`,
				profileName, c.ID,
			); err != nil {
				return nil, fmt.Errorf("clients: refresh name: %w", err)
			}
			c.Name = profileName
		}
		return &c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("clients: lookup by phone: %w", err)
	}

	name := profileName
	if name == "" {
		name = DefaultName
	}
	if err := r.db.QueryRow(ctx,
		`INSERT INTO clientes (nome, telefone) VALUES ($1, $2) RETURNING id`,
		name, normalized,
	).Scan(&c.ID); err != nil {
		return nil, fmt.Errorf("clients: insert: %w", err)
	}
	c.Name = name
	c.Phone = normalized
	r.logger.Info("client created", "client_id", c.ID, "name", name)
	return &c, nil
}

// FindByPhone returns an existing client or ErrClientNotFound, never creating.
func (r *Repository) FindByPhone(ctx context.Context, phone string) (*Client, error) {
	normalized := NormalizePhone(phone)
	if !ValidPhone(normalized) {
		return nil, ErrInvalidPhone
	}

	var c Client
	err := r.db.QueryRow(ctx,
		`SELECT id, nome, telefone FROM clientes WHERE telefone = $1`,
		normalized,
	).Scan(&c.ID, &c.Name, &c.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("clients: lookup by phone: %w", err)
	}
	return &c, nil
}

// Rename updates the display name and returns the fresh row.
func (r *Repository) Rename(ctx context.Context, id int64, newName string) (*Client, error) {
	if !ValidName(newName) {
		return nil, ErrInvalidName
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE clientes SET nome = $1 WHERE id = $2`,
		newName, id,
	)
	if err != nil {
		return nil, fmt.Errorf("clients: rename: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrClientNotFound
	}

	var c Client
	if err := r.db.QueryRow(ctx,
		`SELECT id, nome, telefone FROM clientes WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Phone); err != nil {
		return nil, fmt.Errorf("clients: reload after rename: %w", err)
	}
	r.logger.Info("client renamed", "client_id", id, "name", newName)
	return &c, nil
}
