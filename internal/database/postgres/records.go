package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/eventfoto/face-indexer/internal/database"
)

// RecordRepository stores per-photo indexing outcomes in PostgreSQL.
// It implements database.RecordStore.
type RecordRepository struct {
	pool *Pool
}

func NewRecordRepository(pool *Pool) *RecordRepository {
	return &RecordRepository{pool: pool}
}

// MarkIndexed upserts a successful outcome. A previous error row for the same
// (event, normalized id) is overwritten, which is what makes repair runs
// converge instead of accumulating stale failures.
func (r *RecordRepository) MarkIndexed(ctx context.Context, photo database.IndexedPhoto) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO index_records (event_id, file_name, normalized_id, full_path, storage_key, collection_id,
			status, face_count, face_id, file_size, width, height, error_message, indexed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'indexed', $7, $8, $9, $10, $11, '', NOW(), NOW())
		ON CONFLICT (event_id, normalized_id) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			full_path = EXCLUDED.full_path,
			storage_key = EXCLUDED.storage_key,
			collection_id = EXCLUDED.collection_id,
			status = 'indexed',
			face_count = EXCLUDED.face_count,
			face_id = EXCLUDED.face_id,
			file_size = EXCLUDED.file_size,
			width = EXCLUDED.width,
			height = EXCLUDED.height,
			error_message = '',
			indexed_at = NOW(),
			updated_at = NOW()
	`, photo.EventID, photo.FileName, photo.NormalizedID, photo.FullPath, photo.StorageKey, photo.CollectionID,
		photo.FaceCount, photo.FaceID, photo.FileSize, photo.Width, photo.Height)
	if err != nil {
		return fmt.Errorf("mark indexed: %w", err)
	}
	return nil
}

func (r *RecordRepository) MarkError(ctx context.Context, eventID, fileName, normalizedID, message string) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO index_records (event_id, file_name, normalized_id, status, face_count, error_message, updated_at)
		VALUES ($1, $2, $3, 'error', 0, $4, NOW())
		ON CONFLICT (event_id, normalized_id) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			status = 'error',
			error_message = EXCLUDED.error_message,
			updated_at = NOW()
	`, eventID, fileName, normalizedID, message)
	if err != nil {
		return fmt.Errorf("mark error: %w", err)
	}
	return nil
}

func (r *RecordRepository) ListIndexedIDs(ctx context.Context, eventID string) ([]string, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT normalized_id FROM index_records
		WHERE event_id = $1 AND status = 'indexed'
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query indexed ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan indexed id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate indexed ids: %w", err)
	}
	return ids, nil
}

func (r *RecordRepository) GetRecord(ctx context.Context, eventID, normalizedID string) (*database.IndexRecord, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, event_id, file_name, normalized_id, full_path, storage_key, collection_id,
			status, face_count, face_id, file_size, width, height, error_message, indexed_at, created_at, updated_at
		FROM index_records
		WHERE event_id = $1 AND normalized_id = $2
	`, eventID, normalizedID)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

func (r *RecordRepository) ListRecords(ctx context.Context, eventID string) ([]database.IndexRecord, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, event_id, file_name, normalized_id, full_path, storage_key, collection_id,
			status, face_count, face_id, file_size, width, height, error_message, indexed_at, created_at, updated_at
		FROM index_records
		WHERE event_id = $1
		ORDER BY normalized_id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []database.IndexRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func (r *RecordRepository) Stats(ctx context.Context, eventID string) (*database.EventStats, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(face_count), 0)
		FROM index_records
		WHERE event_id = $1
		GROUP BY status
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := &database.EventStats{EventID: eventID}
	for rows.Next() {
		var status string
		var count, faces int
		if err := rows.Scan(&status, &count, &faces); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		stats.Total += count
		switch database.RecordStatus(status) {
		case database.StatusIndexed:
			stats.Indexed = count
			stats.TotalFaces += faces
		case database.StatusError:
			stats.Failed = count
		case database.StatusProcessing:
			stats.Processing = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats rows: %w", err)
	}
	return stats, nil
}

func (r *RecordRepository) DeleteByNormalizedIDs(ctx context.Context, eventID string, normalizedIDs []string) (int64, error) {
	if len(normalizedIDs) == 0 {
		return 0, nil
	}
	res, err := r.pool.db.ExecContext(ctx, `
		DELETE FROM index_records
		WHERE event_id = $1 AND normalized_id = ANY($2)
	`, eventID, pq.Array(normalizedIDs))
	if err != nil {
		return 0, fmt.Errorf("delete records: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*database.IndexRecord, error) {
	var rec database.IndexRecord
	var indexedAt sql.NullTime
	err := row.Scan(
		&rec.ID, &rec.EventID, &rec.FileName, &rec.NormalizedID,
		&rec.FullPath, &rec.StorageKey, &rec.CollectionID,
		&rec.Status, &rec.FaceCount, &rec.FaceID,
		&rec.FileSize, &rec.Width, &rec.Height, &rec.ErrorMessage,
		&indexedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if indexedAt.Valid {
		rec.IndexedAt = &indexedAt.Time
	}
	return &rec, nil
}
