package app

import (
	"log/slog"

	"backtest_go/internal/broker"
	"backtest_go/internal/infra"
	"backtest_go/internal/infra/storage"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config  *infra.Config
	Journal *storage.Journal
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads configuration, installs the logger and opens the
// journal when enabled.
func (b *Bootstrap) Initialize(configPath string) error {
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err
	}
	b.Config = cfg

	slog.SetDefault(infra.NewLogger(cfg))
	slog.Info("bootstrapping",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version))

	if cfg.Journal.Enabled {
		journal, err := storage.NewJournal(cfg.Journal.Path)
		if err != nil {
			return err
		}
		b.Journal = journal
		slog.Info("journal opened", slog.String("path", cfg.Journal.Path))
	}

	return nil
}

// Commission builds the configured commission strategy.
func (b *Bootstrap) Commission() broker.Commission {
	switch b.Config.Commission.Scheme {
	case "fixed":
		return broker.NewFixedCommission(b.Config.Commission.FixedAmount)
	case "flat_rate":
		return broker.FlatRateCommission{}
	default:
		return broker.NoCommission{}
	}
}
