package repository

import (
	"context"
	"database/sql"
	"time"

	"cbrne_dashboard/internal/models"
)

type OperatorRepo interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.Operator, error)
}

type RecordRepo interface {
	Append(ctx context.Context, r models.MonitoringRecord) (models.MonitoringRecord, error)
	List(ctx context.Context, from, to time.Time) ([]models.MonitoringRecord, error)
}

type Repository struct {
	RecordRepo   RecordRepo
	OperatorRepo OperatorRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		RecordRepo:   NewRecordSQLite(db),
		OperatorRepo: NewOperatorRepository(db),
	}
}
