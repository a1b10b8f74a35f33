package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/scoreboard/models"
)

// MatchStateRepository keeps the single in-progress match so it survives restarts.
type MatchStateRepository interface {
	Save(ctx context.Context, match *models.Match) error
	Get(ctx context.Context) (*models.Match, error)
	Delete(ctx context.Context) error
	// Size returns the length of the stored payload in bytes, 0 when empty.
	Size(ctx context.Context) (int, error)
}

type sqlMatchStateRepository struct {
	db      *sql.DB
	dialect dialect
}

func NewPostgresMatchStateRepository(db *sql.DB) MatchStateRepository {
	return &sqlMatchStateRepository{db: db, dialect: dialectPostgres}
}

func NewSQLiteMatchStateRepository(db *sql.DB) MatchStateRepository {
	return &sqlMatchStateRepository{db: db, dialect: dialectSQLite}
}

func (r *sqlMatchStateRepository) Save(ctx context.Context, match *models.Match) error {
	if match == nil {
		return errors.New("match is required")
	}
	payload, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("failed to encode match %s: %w", match.ID, err)
	}
	query := r.dialect.rebind(`
		INSERT INTO current_match (slot, match_id, payload, updated_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (slot) DO UPDATE
		SET match_id = excluded.match_id, payload = excluded.payload, updated_at = excluded.updated_at`)
	if _, err := r.db.ExecContext(ctx, query, match.ID, string(payload), toMillis(time.Now())); err != nil {
		return fmt.Errorf("failed to save current match %s: %w", match.ID, err)
	}
	return nil
}

// Get returns nil, nil when nothing is stored.
func (r *sqlMatchStateRepository) Get(ctx context.Context) (*models.Match, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM current_match WHERE slot = 1`).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load current match: %w", err)
	}
	var match models.Match
	if err := json.Unmarshal([]byte(payload), &match); err != nil {
		return nil, fmt.Errorf("failed to decode current match: %w", err)
	}
	return &match, nil
}

func (r *sqlMatchStateRepository) Delete(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM current_match WHERE slot = 1`); err != nil {
		return fmt.Errorf("failed to delete current match: %w", err)
	}
	return nil
}

func (r *sqlMatchStateRepository) Size(ctx context.Context) (int, error) {
	var n sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT SUM(LENGTH(payload)) FROM current_match`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to measure current match: %w", err)
	}
	return int(n.Int64), nil
}
