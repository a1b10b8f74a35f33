package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Dosada05/scoreboard/models"
)

// HistoryLimit is the number of finished matches kept, newest first.
const HistoryLimit = 50

type HistoryRepository interface {
	Append(ctx context.Context, record *models.HistoryRecord) error
	List(ctx context.Context) ([]models.HistoryRecord, error)
	Clear(ctx context.Context) error
	// ReplaceAll swaps the whole log for records (newest first), trimmed to the limit.
	ReplaceAll(ctx context.Context, records []models.HistoryRecord) error
}

type sqlHistoryRepository struct {
	db      *sql.DB
	dialect dialect
	limit   int
}

// NewPostgresHistoryRepository keeps at most limit records; limits outside
// 1..HistoryLimit fall back to HistoryLimit.
func NewPostgresHistoryRepository(db *sql.DB, limit int) HistoryRepository {
	return &sqlHistoryRepository{db: db, dialect: dialectPostgres, limit: clampLimit(limit)}
}

func NewSQLiteHistoryRepository(db *sql.DB, limit int) HistoryRepository {
	return &sqlHistoryRepository{db: db, dialect: dialectSQLite, limit: clampLimit(limit)}
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > HistoryLimit {
		return HistoryLimit
	}
	return limit
}

func (r *sqlHistoryRepository) Append(ctx context.Context, record *models.HistoryRecord) error {
	payload, err := json.Marshal(record.MatchResult)
	if err != nil {
		return fmt.Errorf("failed to encode history record %s: %w", record.ID, err)
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := r.insert(ctx, tx, record, payload); err != nil {
			return err
		}
		return r.trim(ctx, tx)
	})
}

func (r *sqlHistoryRepository) insert(ctx context.Context, exec SQLExecutor, record *models.HistoryRecord, payload []byte) error {
	query := r.dialect.rebind(`
		INSERT INTO match_history (id, game_kind, winner_name, payload, completed_at)
		VALUES ($1, $2, $3, $4, $5)`)
	_, err := exec.ExecContext(ctx, query,
		record.ID,
		record.GameKind,
		record.Winner.Name,
		string(payload),
		toMillis(record.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history record %s: %w", record.ID, err)
	}
	return nil
}

// trim удаляет самые старые записи сверх лимита.
func (r *sqlHistoryRepository) trim(ctx context.Context, exec SQLExecutor) error {
	query := r.dialect.rebind(`
		DELETE FROM match_history
		WHERE seq NOT IN (SELECT seq FROM match_history ORDER BY seq DESC LIMIT $1)`)
	if _, err := exec.ExecContext(ctx, query, r.limit); err != nil {
		return fmt.Errorf("failed to trim match history: %w", err)
	}
	return nil
}

func (r *sqlHistoryRepository) List(ctx context.Context) ([]models.HistoryRecord, error) {
	query := r.dialect.rebind(`
		SELECT id, payload, completed_at
		FROM match_history
		ORDER BY seq DESC
		LIMIT $1`)
	rows, err := r.db.QueryContext(ctx, query, r.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query match history: %w", err)
	}
	defer rows.Close()

	records := make([]models.HistoryRecord, 0)
	for rows.Next() {
		var (
			rec       models.HistoryRecord
			payload   string
			completed int64
		)
		if err := rows.Scan(&rec.ID, &payload, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &rec.MatchResult); err != nil {
			return nil, fmt.Errorf("failed to decode history record %s: %w", rec.ID, err)
		}
		rec.CompletedAt = fromMillis(completed)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return records, nil
}

func (r *sqlHistoryRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM match_history`); err != nil {
		return fmt.Errorf("failed to clear match history: %w", err)
	}
	return nil
}

func (r *sqlHistoryRepository) ReplaceAll(ctx context.Context, records []models.HistoryRecord) error {
	if len(records) > r.limit {
		records = records[:r.limit]
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM match_history`); err != nil {
			return fmt.Errorf("failed to clear match history: %w", err)
		}
		// Вставляем от старых к новым, чтобы seq сохранил порядок.
		for i := len(records) - 1; i >= 0; i-- {
			rec := records[i]
			payload, err := json.Marshal(rec.MatchResult)
			if err != nil {
				return fmt.Errorf("failed to encode history record %s: %w", rec.ID, err)
			}
			if err := r.insert(ctx, tx, &rec, payload); err != nil {
				return err
			}
		}
		return nil
	})
}
