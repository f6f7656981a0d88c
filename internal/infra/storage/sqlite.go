// Package storage persists backtest runs, fills and equity curves to a
// local SQLite database.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"backtest_go/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Journal is the SQLite-backed trade journal.
type Journal struct {
	db *gorm.DB
}

// NewJournal opens (creating if needed) the journal database at path.
func NewJournal(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	if err := db.AutoMigrate(&domain.BacktestRun{}, &domain.FillRecord{}, &domain.EquityRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal database: %w", err)
	}

	return &Journal{db: db}, nil
}

// BeginRun creates a run record and returns its id.
func (j *Journal) BeginRun(strategy, initialCash string) (string, error) {
	run := &domain.BacktestRun{
		ID:          uuid.NewString(),
		Strategy:    strategy,
		InitialCash: initialCash,
		StartedAt:   time.Now().UTC(),
	}
	if err := j.db.Create(run).Error; err != nil {
		return "", err
	}
	return run.ID, nil
}

// FinishRun stamps the run with its outcome.
func (j *Journal) FinishRun(runID, finalEquity string, barsConsumed int) error {
	return j.db.Model(&domain.BacktestRun{}).
		Where("id = ?", runID).
		Updates(map[string]interface{}{
			"final_equity":  finalEquity,
			"bars_consumed": barsConsumed,
			"finished_at":   time.Now().UTC(),
		}).Error
}

// RecordFill journals one order execution.
func (j *Journal) RecordFill(runID string, order *domain.Order) error {
	info := order.ExecutionInfo()
	if info == nil {
		return fmt.Errorf("order %d has no execution info", order.ID())
	}
	return j.db.Create(&domain.FillRecord{
		RunID:      runID,
		OrderID:    order.ID(),
		Instrument: order.Instrument(),
		Action:     order.Action().String(),
		OrderType:  order.Type().String(),
		Quantity:   info.Quantity.String(),
		Price:      info.Price.String(),
		Commission: info.Commission.String(),
		FilledAt:   info.DateTime,
	}).Error
}

// RecordEquity journals the portfolio value after one dispatch step.
func (j *Journal) RecordEquity(runID string, dateTime time.Time, equity string) error {
	return j.db.Create(&domain.EquityRecord{
		RunID:    runID,
		DateTime: dateTime,
		Equity:   equity,
	}).Error
}

// Run retrieves a run by id, or nil if not found.
func (j *Journal) Run(runID string) (*domain.BacktestRun, error) {
	var run domain.BacktestRun
	err := j.db.First(&run, "id = ?", runID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &run, err
}

// Fills retrieves the fills of a run in execution order.
func (j *Journal) Fills(runID string) ([]domain.FillRecord, error) {
	var fills []domain.FillRecord
	err := j.db.Where("run_id = ?", runID).Order("id").Find(&fills).Error
	return fills, err
}

// EquityCurve retrieves the equity points of a run in time order.
func (j *Journal) EquityCurve(runID string) ([]domain.EquityRecord, error) {
	var points []domain.EquityRecord
	err := j.db.Where("run_id = ?", runID).Order("id").Find(&points).Error
	return points, err
}
