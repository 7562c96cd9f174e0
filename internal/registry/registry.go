// Package registry records training runs in postgres.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Run statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// ErrNoRuns is returned when the registry holds no training runs.
var ErrNoRuns = errors.New("no training runs recorded")

// TrainingRun is one invocation of the training procedure.
type TrainingRun struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModelID    string    `gorm:"index" json:"model_id,omitempty"`
	Location   string    `json:"location"`
	DataSource string    `json:"data_source"`
	Rows       int       `json:"rows"`
	TrainRows  int       `json:"train_rows"`
	TestRows   int       `json:"test_rows"`
	Classes    int       `json:"classes"`
	Accuracy   float64   `json:"accuracy"`
	MacroF1    float64   `json:"macro_f1"`
	Params     string    `gorm:"type:jsonb" json:"params"`
	Status     string    `gorm:"index" json:"status"`
	Error      string    `gorm:"type:text" json:"error,omitempty"`
	StartedAt  time.Time `gorm:"index" json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r *TrainingRun) TableName() string {
	return "training_runs"
}

// Duration is the wall time of the run.
func (r *TrainingRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Open connects to postgres with dsn.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to registry database: %w", err)
	}
	return db, nil
}

// Repository stores training runs.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db}
}

// Migrate creates or updates the training_runs table.
func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&TrainingRun{})
}

// Record inserts run, assigning an id when it has none.
func (r *Repository) Record(ctx context.Context, run *TrainingRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("record training run: %w", err)
	}
	return nil
}

// Latest returns the most recently started run.
func (r *Repository) Latest(ctx context.Context) (*TrainingRun, error) {
	var run TrainingRun
	err := r.db.WithContext(ctx).Order("started_at DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("find latest training run: %w", err)
	}
	return &run, nil
}

// List returns up to limit runs, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]TrainingRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []TrainingRun
	err := r.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("list training runs: %w", err)
	}
	return runs, nil
}
