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

var ErrSettingNotFound = errors.New("setting not found")

type SettingsRepository interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Put(ctx context.Context, key string, value json.RawMessage) error
	All(ctx context.Context) (models.Settings, error)
	Clear(ctx context.Context) error
	Size(ctx context.Context) (int, error)
}

type sqlSettingsRepository struct {
	db      *sql.DB
	dialect dialect
}

func NewPostgresSettingsRepository(db *sql.DB) SettingsRepository {
	return &sqlSettingsRepository{db: db, dialect: dialectPostgres}
}

func NewSQLiteSettingsRepository(db *sql.DB) SettingsRepository {
	return &sqlSettingsRepository{db: db, dialect: dialectSQLite}
}

func (r *sqlSettingsRepository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var value string
	query := r.dialect.rebind(`SELECT value FROM settings WHERE name = $1`)
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingNotFound
		}
		return nil, fmt.Errorf("failed to load setting %q: %w", key, err)
	}
	return json.RawMessage(value), nil
}

func (r *sqlSettingsRepository) Put(ctx context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("setting %q is not valid JSON", key)
	}
	query := r.dialect.rebind(`
		INSERT INTO settings (name, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	if _, err := r.db.ExecContext(ctx, query, key, string(value), toMillis(time.Now())); err != nil {
		return fmt.Errorf("failed to save setting %q: %w", key, err)
	}
	return nil
}

func (r *sqlSettingsRepository) All(ctx context.Context) (models.Settings, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, value FROM settings ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	settings := models.Settings{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings[key] = json.RawMessage(value)
	}
	return settings, rows.Err()
}

func (r *sqlSettingsRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM settings`); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}
	return nil
}

func (r *sqlSettingsRepository) Size(ctx context.Context) (int, error) {
	var n sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT SUM(LENGTH(value)) FROM settings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to measure settings: %w", err)
	}
	return int(n.Int64), nil
}
