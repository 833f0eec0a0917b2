package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	queryGetUsage = `
		SELECT to_char(usage_date, 'YYYY-MM-DD'), count
		FROM usage_records
		WHERE identity_key = $1
	`

	// the conflict branch only runs when the ceiling allows it; a refused
	// update returns no row
	queryIncrementUsage = `
		INSERT INTO usage_records (identity_key, usage_date, count)
		VALUES ($1, $2::date, 1)
		ON CONFLICT (identity_key) DO UPDATE SET
			count = CASE
				WHEN usage_records.usage_date = EXCLUDED.usage_date THEN usage_records.count + 1
				ELSE 1
			END,
			usage_date = EXCLUDED.usage_date,
			updated_at = NOW()
		WHERE $3::int < 0
			OR usage_records.usage_date <> EXCLUDED.usage_date
			OR usage_records.count < $3::int
		RETURNING to_char(usage_date, 'YYYY-MM-DD'), count
	`
)

// implements Store on the usage_records table
type PostgresStore struct {
	db *pgxpool.Pool
}

// creates a new Postgres-backed usage store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (UsageRecord, bool, error) {
	var rec UsageRecord

	err := s.db.QueryRow(ctx, queryGetUsage, key).Scan(&rec.Date, &rec.Count)
	if errors.Is(err, pgx.ErrNoRows) {
		return UsageRecord{}, false, nil
	}

	if err != nil {
		return UsageRecord{}, false, fmt.Errorf("failed to read usage: %w", err)
	}

	return rec, true, nil
}

func (s *PostgresStore) IncrementWithCeiling(ctx context.Context, key, today string, limit int) (UsageRecord, error) {
	var rec UsageRecord

	err := s.db.QueryRow(ctx, queryIncrementUsage, key, today, limit).Scan(&rec.Date, &rec.Count)
	if errors.Is(err, pgx.ErrNoRows) {
		current, _, getErr := s.Get(ctx, key)
		if getErr != nil {
			return UsageRecord{}, getErr
		}

		return current, ErrQuotaExceeded
	}

	if err != nil {
		return UsageRecord{}, fmt.Errorf("failed to increment usage: %w", err)
	}

	return rec, nil
}
