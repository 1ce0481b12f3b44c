package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"cbrne_dashboard/internal/models"

	"github.com/google/uuid"
)

// sqliteTimestamp is how occurred_at is written and compared.
const sqliteTimestamp = "2006-01-02 15:04:05"

const (
	insertRecordSQL = `
		INSERT INTO monitoring_records (id, kind, building_id, status, severity, sensor_type, description, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	selectRecordsSQL = `SELECT id, kind, building_id, status, severity, sensor_type, description, occurred_at FROM monitoring_records`
)

type RecordSQLite struct {
	db *sql.DB
}

func NewRecordSQLite(db *sql.DB) *RecordSQLite { return &RecordSQLite{db: db} }

var _ RecordRepo = (*RecordSQLite)(nil)

// Append stores a record, filling RecordID and OccurredAt when empty, and
// returns the stored form.
func (r *RecordSQLite) Append(ctx context.Context, rec models.MonitoringRecord) (models.MonitoringRecord, error) {
	if rec.RecordID == "" {
		rec.RecordID = uuid.NewString()
	}
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now()
	}
	rec.OccurredAt = rec.OccurredAt.UTC().Truncate(time.Second)
	rec.Kind = strings.ToUpper(strings.TrimSpace(rec.Kind))

	_, err := r.db.ExecContext(ctx, insertRecordSQL,
		rec.RecordID,
		rec.Kind,
		rec.BuildingID,
		rec.Status,
		nullIfEmpty(rec.Severity),
		nullIfEmpty(rec.SensorType),
		rec.Description,
		rec.OccurredAt.Format(sqliteTimestamp),
	)
	if err != nil {
		return models.MonitoringRecord{}, err
	}
	return rec, nil
}

// List returns records with occurred_at in [from, to], oldest first. A zero
// bound is not applied.
func (r *RecordSQLite) List(ctx context.Context, from, to time.Time) ([]models.MonitoringRecord, error) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimestamp))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimestamp))
	}

	q := selectRecordsSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.MonitoringRecord, 0, 64)
	for rows.Next() {
		var (
			rec        models.MonitoringRecord
			severity   sql.NullString
			sensorType sql.NullString
		)
		if err := rows.Scan(&rec.RecordID, &rec.Kind, &rec.BuildingID, &rec.Status,
			&severity, &sensorType, &rec.Description, &rec.OccurredAt); err != nil {
			return nil, err
		}
		rec.Severity = severity.String
		rec.SensorType = sensorType.String
		rec.OccurredAt = rec.OccurredAt.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
