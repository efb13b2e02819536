package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/mapcheck/internal/db"
	"github.com/alexanderramin/mapcheck/internal/domain"
)

// SQLiteSnapshotLogRepo implements SnapshotLogRepo on the snapshot_log table.
type SQLiteSnapshotLogRepo struct {
	db db.DBTX
}

// NewSQLiteSnapshotLogRepo creates a new SQLiteSnapshotLogRepo.
func NewSQLiteSnapshotLogRepo(conn db.DBTX) *SQLiteSnapshotLogRepo {
	return &SQLiteSnapshotLogRepo{db: conn}
}

func (r *SQLiteSnapshotLogRepo) Create(ctx context.Context, rec *domain.SnapshotRecord) error {
	query := `INSERT INTO snapshot_log (id, kind, project_type, checked_count, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		string(rec.Kind),
		string(rec.ProjectType),
		rec.CheckedCount,
		rec.Source,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting snapshot record: %w", err)
	}
	return nil
}

// ListRecent returns up to limit records, newest first. A non-positive
// limit returns every record.
func (r *SQLiteSnapshotLogRepo) ListRecent(ctx context.Context, limit int) ([]*domain.SnapshotRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, project_type, checked_count, source, created_at
		 FROM snapshot_log ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshot records: %w", err)
	}
	defer rows.Close()

	var out []*domain.SnapshotRecord
	for rows.Next() {
		var rec domain.SnapshotRecord
		var kind, pt, createdAt string
		if err := rows.Scan(&rec.ID, &kind, &pt, &rec.CheckedCount, &rec.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot record: %w", err)
		}
		rec.Kind = domain.SnapshotKind(kind)
		rec.ProjectType = domain.ProjectType(pt)
		rec.CreatedAt = parseTime(createdAt)
		out = append(out, &rec)
	}
	return out, rows.Err()
}
