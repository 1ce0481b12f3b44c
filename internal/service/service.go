package service

import (
	"context"
	"time"

	"cbrne_dashboard/internal/filter"
	"cbrne_dashboard/internal/logger"
	"cbrne_dashboard/internal/models"
	"cbrne_dashboard/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Sessions owns the per-view filter state.
type Sessions interface {
	Open(view string) SessionInfo
	Get(id string) (SessionInfo, error)
	Snapshot(id string) (filter.Snapshot, error)
	Toggle(id string, facet filter.Facet, value string) (filter.Snapshot, error)
	SetDateRange(id string, p DateRangeParams) (filter.Snapshot, error)
	SelectQuickRange(id string, token filter.QuickRange) (filter.Snapshot, error)
	ClearAll(id string) (filter.Snapshot, error)
	Subscribe(id string, fn filter.ChangeFunc) (Subscription, error)
	Close(id string) error
	RunReaper(ctx context.Context, interval time.Duration)
}

// Records stores monitoring records and filters them for a session.
type Records interface {
	Ingest(ctx context.Context, rec models.MonitoringRecord) (models.MonitoringRecord, error)
	Visible(ctx context.Context, sessionID string) ([]models.MonitoringRecord, filter.Snapshot, error)
}

// Toolbar is the static presentation config shared by all views.
type Toolbar struct {
	Facets      []filter.Facet            `json:"facets"`
	Visibility  filter.Visibility         `json:"visibility"`
	Catalog     filter.Catalog            `json:"catalog"`
	QuickRanges []filter.QuickRangeOption `json:"quick_ranges"`
}

type Service struct {
	Sessions
	Records
	Authorization
	Toolbar Toolbar
}

// Options carries configuration the services need beyond the repositories.
type Options struct {
	Visibility filter.Visibility
	Catalog    filter.Catalog
	Location   *time.Location
	IdleTTL    time.Duration
	Auth       AuthSettings
	Log        *logger.Logger
}

func NewService(repos *repository.Repository, opts Options) *Service {
	sessions := NewSessionService(SessionSettings{
		Visibility: opts.Visibility,
		Location:   opts.Location,
		IdleTTL:    opts.IdleTTL,
	}, opts.Log)

	return &Service{
		Sessions:      sessions,
		Records:       NewRecordService(repos.RecordRepo, sessions, opts.Location),
		Authorization: NewAuthService(repos.OperatorRepo, opts.Auth),
		Toolbar: Toolbar{
			Facets:      filter.Facets(),
			Visibility:  opts.Visibility,
			Catalog:     opts.Catalog,
			QuickRanges: filter.QuickRanges(),
		},
	}
}
