package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cbrne_dashboard/internal/filter"
	"cbrne_dashboard/internal/models"
	"cbrne_dashboard/internal/repository"
)

// Record kinds accepted by Ingest.
const (
	KindIncident  = "INCIDENT"
	KindSensor    = "SENSOR"
	KindEquipment = "EQUIPMENT"
)

var ErrInvalidRecord = errors.New("invalid record")

// SnapshotReader is the part of the session service records need.
type SnapshotReader interface {
	Snapshot(id string) (filter.Snapshot, error)
}

type RecordService struct {
	repo     repository.RecordRepo
	sessions SnapshotReader
	loc      *time.Location
}

func NewRecordService(repo repository.RecordRepo, sessions SnapshotReader, loc *time.Location) *RecordService {
	if loc == nil {
		loc = time.UTC
	}
	return &RecordService{repo: repo, sessions: sessions, loc: loc}
}

// Ingest validates and stores a record.
func (s *RecordService) Ingest(ctx context.Context, rec models.MonitoringRecord) (models.MonitoringRecord, error) {
	if err := validateRecord(&rec); err != nil {
		return models.MonitoringRecord{}, err
	}
	stored, err := s.repo.Append(ctx, rec)
	if err != nil {
		return models.MonitoringRecord{}, fmt.Errorf("store record: %w", err)
	}
	recordsIngestedTotal.Inc()
	return stored, nil
}

// Visible returns the records matching the session's current filters, oldest
// first, together with the snapshot that was applied.
func (s *RecordService) Visible(ctx context.Context, sessionID string) ([]models.MonitoringRecord, filter.Snapshot, error) {
	snap, err := s.sessions.Snapshot(sessionID)
	if err != nil {
		return nil, filter.Snapshot{}, err
	}

	from, to := s.bounds(snap.DateRange)
	records, err := s.repo.List(ctx, from, to)
	if err != nil {
		return nil, filter.Snapshot{}, fmt.Errorf("list records: %w", err)
	}

	visible := filter.Apply(records, filter.Compile(snap), s.entity)
	recordsVisibleTotal.Add(float64(len(visible)))
	return visible, snap, nil
}

// entity views a record in the dashboard's zone, so its calendar day lines up
// with the quick ranges.
func (s *RecordService) entity(r models.MonitoringRecord) filter.Entity {
	return filter.Entity{
		BuildingID: r.BuildingID,
		Status:     r.Status,
		Severity:   r.Severity,
		SensorType: r.SensorType,
		Timestamp:  r.OccurredAt.In(s.loc),
	}
}

// bounds turns whole-day bounds into instants for the storage query. The
// predicate still decides membership; this only narrows the scan.
func (s *RecordService) bounds(r filter.DateRange) (from, to time.Time) {
	if !r.Start.IsZero() {
		from = time.Date(r.Start.Year, r.Start.Month, r.Start.Day, 0, 0, 0, 0, s.loc)
	}
	if !r.End.IsZero() {
		next := r.End.AddDays(1)
		to = time.Date(next.Year, next.Month, next.Day, 0, 0, 0, 0, s.loc).Add(-time.Second)
	}
	return from, to
}

func validateRecord(rec *models.MonitoringRecord) error {
	rec.Kind = strings.ToUpper(strings.TrimSpace(rec.Kind))
	rec.BuildingID = strings.TrimSpace(rec.BuildingID)
	rec.Status = strings.TrimSpace(rec.Status)

	switch rec.Kind {
	case KindIncident, KindSensor, KindEquipment:
	default:
		return fmt.Errorf("%w: kind must be INCIDENT, SENSOR or EQUIPMENT", ErrInvalidRecord)
	}
	if rec.BuildingID == "" {
		return fmt.Errorf("%w: building_id is required", ErrInvalidRecord)
	}
	if rec.Status == "" {
		return fmt.Errorf("%w: status is required", ErrInvalidRecord)
	}
	return nil
}

// IsValidationError reports errors caused by bad input rather than storage.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRecord)
}
