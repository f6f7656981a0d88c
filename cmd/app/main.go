package main

import (
	"context"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backtest_go/internal/analyzer"
	"backtest_go/internal/app"
	"backtest_go/internal/broker"
	"backtest_go/internal/domain"
	"backtest_go/internal/engine"
	"backtest_go/internal/feed"
	"backtest_go/internal/strategy"

	"github.com/shopspring/decimal"
)

const instrument = "DEMO"

func main() {
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize("configs/config.yaml"); err != nil {
		slog.Error("bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	barFeed := feed.NewMemoryBarFeed([]string{instrument}, syntheticBars(252))

	b := broker.NewBacktesting(cfg.Backtest.InitialCash, bootstrap.Commission())
	b.SetUseAdjustedValues(cfg.Backtest.UseAdjustedValues)

	strat := strategy.NewSMACross(strategy.NewTrader(b), instrument, 10, 30, decimal.NewFromInt(100))

	runner := engine.NewRunner(barFeed, b, strat)
	runner.SetStrictOrdering(cfg.Backtest.StrictOrdering)

	returns := analyzer.NewReturns(b, runner)

	var runID string
	if bootstrap.Journal != nil {
		id, err := bootstrap.Journal.BeginRun("sma-cross", cfg.Backtest.InitialCash.String())
		if err != nil {
			slog.Error("failed to begin journal run", slog.Any("error", err))
			os.Exit(1)
		}
		runID = id

		b.OrderUpdatedEvent().Subscribe(func(args ...interface{}) {
			order := args[0].(*domain.Order)
			if !order.IsFilled() {
				return
			}
			if err := bootstrap.Journal.RecordFill(runID, order); err != nil {
				slog.Warn("failed to journal fill", slog.Any("error", err))
			}
		})
		runner.BarsProcessedEvent().Subscribe(func(args ...interface{}) {
			bars := args[0].(*domain.Bars)
			if err := bootstrap.Journal.RecordEquity(runID, bars.DateTime(), b.Equity(bars).String()); err != nil {
				slog.Warn("failed to journal equity", slog.Any("error", err))
			}
		})
	}

	if err := runner.Run(ctx); err != nil {
		slog.Error("backtest failed", slog.Any("error", err))
		os.Exit(1)
	}

	finalEquity := b.Equity(runner.LastBars())
	if bootstrap.Journal != nil {
		if err := bootstrap.Journal.FinishRun(runID, finalEquity.String(), runner.BarsConsumed()); err != nil {
			slog.Warn("failed to finish journal run", slog.Any("error", err))
		}
	}

	slog.Info("backtest complete",
		slog.Int("bars", runner.BarsConsumed()),
		slog.String("final_cash", b.Cash().String()),
		slog.String("final_equity", finalEquity.String()),
		slog.String("cumulative_return", returns.CumulativeReturn().String()))
}

// syntheticBars builds a deterministic sine-drift price series so the
// demo runs without any market data on disk.
func syntheticBars(n int) []*domain.Bars {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]*domain.Bars, 0, n)

	price := 100.0
	for i := 0; i < n; i++ {
		drift := math.Sin(float64(i)/12.0)*2.0 + float64(i)*0.01
		open := price
		close := 100.0 + drift
		high := math.Max(open, close) + 0.5
		low := math.Min(open, close) - 0.5

		bar, err := domain.NewBar(
			start.AddDate(0, 0, i),
			decimal.NewFromFloat(open),
			decimal.NewFromFloat(high),
			decimal.NewFromFloat(low),
			decimal.NewFromFloat(close),
			decimal.NewFromInt(10_000),
			decimal.NewFromFloat(close),
		)
		if err != nil {
			slog.Error("bad synthetic bar", slog.Any("error", err))
			os.Exit(1)
		}

		set, err := domain.NewBars(map[string]*domain.Bar{instrument: bar})
		if err != nil {
			slog.Error("bad synthetic bar set", slog.Any("error", err))
			os.Exit(1)
		}
		bars = append(bars, set)
		price = close
	}
	return bars
}
