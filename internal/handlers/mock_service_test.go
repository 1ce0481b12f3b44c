package handlers

import (
	"context"
	"sync"
	"time"

	"cbrne_dashboard/internal/filter"
	"cbrne_dashboard/internal/models"
	"cbrne_dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

const testToken = "good-token"

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastParseToken string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	return m.signUpID, m.signUpErr
}

func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	return m.genTokenToken, m.genTokenErr
}

func (m *mockAuth) ParseToken(accessToken string) (int, error) {
	m.lastParseToken = accessToken
	return m.parseID, m.parseErr
}

type mockRecords struct {
	mu sync.Mutex

	ingested  []models.MonitoringRecord
	ingestErr error

	visible    []models.MonitoringRecord
	visibleErr error
	snap       filter.Snapshot
}

func (m *mockRecords) Ingest(_ context.Context, rec models.MonitoringRecord) (models.MonitoringRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ingestErr != nil {
		return models.MonitoringRecord{}, m.ingestErr
	}
	rec.RecordID = "rec-1"
	m.ingested = append(m.ingested, rec)
	return rec, nil
}

func (m *mockRecords) Visible(_ context.Context, _ string) ([]models.MonitoringRecord, filter.Snapshot, error) {
	return m.visible, m.snap, m.visibleErr
}

// fixedNow pins sessions to 2025-02-15 10:00 UTC.
func fixedNow() time.Time { return time.Date(2025, time.February, 15, 10, 0, 0, 0, time.UTC) }

// newTestServices wires an in-memory session service behind a permissive auth mock.
func newTestServices() (*service.Service, *mockRecords) {
	recs := &mockRecords{}
	return &service.Service{
		Sessions: service.NewSessionService(service.SessionSettings{
			Visibility: filter.DefaultVisibility(),
			Location:   time.UTC,
			Now:        fixedNow,
		}, nil),
		Records:       recs,
		Authorization: &mockAuth{parseID: 7},
		Toolbar: service.Toolbar{
			Facets:      filter.Facets(),
			Visibility:  filter.DefaultVisibility(),
			Catalog:     filter.DefaultCatalog(),
			QuickRanges: filter.QuickRanges(),
		},
	}, recs
}

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil)
	return h.InitRoutes()
}

func authHeader() string { return "Bearer " + testToken }
