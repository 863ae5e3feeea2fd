// Package postgres implements the repository interfaces on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shopalert/internal/domain/entity"
	"shopalert/internal/repository"
)

type AlertRepo struct{ db *sql.DB }

func NewAlertRepo(db *sql.DB) repository.AlertRepository {
	return &AlertRepo{db: db}
}

// scanAlert is a helper function to scan an alert message row.
func scanAlert(rows *sql.Rows) (*entity.AlertRecord, error) {
	var rec entity.AlertRecord
	if err := rows.Scan(
		&rec.ID, &rec.ShopID, (*string)(&rec.EventType), &rec.Message,
		(*string)(&rec.Status), &rec.ErrorDetail, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (repo *AlertRepo) Create(ctx context.Context, record *entity.AlertRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	const query = `
INSERT INTO alert_messages (id, shop_id, event_type, message, status, error_detail, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, query,
		record.ID, record.ShopID, string(record.EventType),
		record.Message, string(record.Status), record.ErrorDetail, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *AlertRepo) UpdateStatus(ctx context.Context, id string, status entity.AlertStatus, errorDetail string) error {
	const query = `
UPDATE alert_messages SET
       status       = $1,
       error_detail = $2
WHERE id = $3`
	res, err := repo.db.ExecContext(ctx, query, string(status), errorDetail, id)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("UpdateStatus: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *AlertRepo) Get(ctx context.Context, id string) (*entity.AlertRecord, error) {
	const query = `
SELECT id, shop_id, event_type, message, status, error_detail, created_at
FROM alert_messages
WHERE id = $1
LIMIT 1`
	var rec entity.AlertRecord
	err := repo.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.ShopID, (*string)(&rec.EventType), &rec.Message,
		(*string)(&rec.Status), &rec.ErrorDetail, &rec.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &rec, nil
}

func (repo *AlertRepo) ListByShop(ctx context.Context, shopID string, offset, limit int) ([]*entity.AlertRecord, error) {
	const query = `
SELECT id, shop_id, event_type, message, status, error_detail, created_at
FROM alert_messages
WHERE shop_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := repo.db.QueryContext(ctx, query, shopID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ListByShop: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]*entity.AlertRecord, 0, limit)
	for rows.Next() {
		rec, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByShop: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (repo *AlertRepo) CountByShop(ctx context.Context, shopID string) (int64, error) {
	const query = `SELECT COUNT(*) FROM alert_messages WHERE shop_id = $1`
	var total int64
	if err := repo.db.QueryRowContext(ctx, query, shopID).Scan(&total); err != nil {
		return 0, fmt.Errorf("CountByShop: %w", err)
	}
	return total, nil
}

func (repo *AlertRepo) MarkInterrupted(ctx context.Context, id string, errorDetail string) (bool, error) {
	const query = `
UPDATE alert_messages SET
       status       = 'ERROR',
       error_detail = $1
WHERE id = $2
AND   status = 'PENDING'`
	res, err := repo.db.ExecContext(ctx, query, errorDetail, id)
	if err != nil {
		return false, fmt.Errorf("MarkInterrupted: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (repo *AlertRepo) ListStuckPending(ctx context.Context, cutoff time.Time, limit int) ([]*entity.AlertRecord, error) {
	const query = `
SELECT id, shop_id, event_type, message, status, error_detail, created_at
FROM alert_messages
WHERE status = 'PENDING'
AND   created_at < $1
ORDER BY created_at ASC
LIMIT $2`
	rows, err := repo.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("ListStuckPending: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]*entity.AlertRecord, 0, limit)
	for rows.Next() {
		rec, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("ListStuckPending: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
