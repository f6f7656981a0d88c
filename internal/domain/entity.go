package domain

import (
	"time"
)

// BacktestRun is the journal record of one dispatch-loop run.
type BacktestRun struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Strategy     string    `json:"strategy"`
	InitialCash  string    `json:"initial_cash"`
	FinalEquity  string    `json:"final_equity"`
	BarsConsumed int       `json:"bars_consumed"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// FillRecord journals a single order execution.
type FillRecord struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID      string    `gorm:"index" json:"run_id"`
	OrderID    uint64    `json:"order_id"`
	Instrument string    `gorm:"index" json:"instrument"`
	Action     string    `json:"action"`
	OrderType  string    `json:"order_type"`
	Quantity   string    `json:"quantity"`
	Price      string    `json:"price"`
	Commission string    `json:"commission"`
	FilledAt   time.Time `json:"filled_at"`
}

// EquityRecord journals the portfolio value after one dispatch step.
type EquityRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID    string    `gorm:"index" json:"run_id"`
	DateTime time.Time `json:"date_time"`
	Equity   string    `json:"equity"`
}
