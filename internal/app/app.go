package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"lootradar/internal/alerting"
	"lootradar/internal/cheapshark"
	"lootradar/internal/config"
	"lootradar/internal/currency"
	"lootradar/internal/deals"
	"lootradar/internal/links"
	"lootradar/internal/metrics"
	"lootradar/internal/scheduler"
	"lootradar/internal/server"
	"lootradar/internal/service"
	"lootradar/internal/stores"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger}
}

// SearchOptions configure the search, export and watch commands.
type SearchOptions struct {
	Title    string
	Currency string
	Limit    int
	Out      io.Writer
}

// ExportOptions add output paths to a search.
type ExportOptions struct {
	SearchOptions
	CSVPath string
	PNGPath string
}

// ConfigMinSavings asks Watch to use the configured savings threshold.
const ConfigMinSavings = -1

// WatchOptions add the savings threshold to a search. MinSavings must be
// ConfigMinSavings or a percentage between 0 and 100.
type WatchOptions struct {
	SearchOptions
	MinSavings int
}

// CheckMinSavings rejects thresholds outside 0..100 other than ConfigMinSavings.
func CheckMinSavings(v int) error {
	if v == ConfigMinSavings || (v >= 0 && v <= 100) {
		return nil
	}
	return fmt.Errorf("--min-savings must be between 0 and 100")
}

func (a *App) directory() *stores.Directory {
	return stores.Default(a.Config.Stores.Placeholder)
}

func (a *App) newSearchService(recorder *metrics.Recorder) *service.Service {
	client := cheapshark.New(cheapshark.Options{
		BaseURL:      a.Config.CheapShark.BaseURL,
		RedirectBase: a.Config.CheapShark.RedirectBase,
		Timeout:      a.Config.CheapShark.RequestTimeout,
		UserAgent:    a.Config.CheapShark.UserAgent,
	}, recorder, a.Logger)

	classifier := deals.NewClassifier(a.directory(), deals.DefaultRules())

	var searches service.SearchRecorder
	if recorder != nil {
		searches = recorder
	}
	return service.New(client, classifier, links.Default(), searches, a.Logger)
}

// resolveCurrency returns the requested currency or the configured default.
func (a *App) resolveCurrency(raw string) (currency.Currency, error) {
	if raw == "" {
		raw = a.Config.Currency.Default
	}
	cur, err := currency.Parse(raw)
	if err != nil {
		return currency.Currency{}, fmt.Errorf("resolve currency: %w", err)
	}
	return cur, nil
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 0, a.Logger)
	}
	a.Logger.Warn().Msg("telegram disabled; watch notifications go to the log")
	return alerting.NewLogNotifier(a.Logger)
}

func output(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

// Serve runs the dashboard server until SIGINT or SIGTERM.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cur, err := a.resolveCurrency("")
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	srv := server.New(server.Options{
		Addr:              a.Config.Server.Addr,
		ReadHeaderTimeout: a.Config.Server.ReadHeaderTimeout,
		ShutdownTimeout:   a.Config.Server.ShutdownTimeout,
		DefaultLimit:      a.Config.CheapShark.SearchLimit,
		DefaultCurrency:   cur,
	}, a.newSearchService(recorder), a.directory(), recorder, a.Logger)

	if err := srv.Run(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("server terminated with error")
		return err
	}
	return nil
}

// Watch re-runs a search every configured interval and notifies about deals
// at or above the savings threshold.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cur, err := a.resolveCurrency(opts.Currency)
	if err != nil {
		return err
	}
	if err := CheckMinSavings(opts.MinSavings); err != nil {
		return err
	}
	minSavings := opts.MinSavings
	if minSavings == ConfigMinSavings {
		minSavings = a.Config.Watch.MinSavingsPct
	}

	watcher, err := service.NewWatcher(a.newSearchService(nil), a.newNotifier(), service.WatchOptions{
		Query:         opts.Title,
		Limit:         a.Config.ResolveLimit(opts.Limit),
		Currency:      cur,
		MinSavingsPct: minSavings,
	}, a.Logger)
	if err != nil {
		return err
	}

	sched, err := scheduler.New(scheduler.Options{
		Interval:      a.Config.Watch.Interval,
		AlignToBucket: a.Config.Watch.AlignToBucket,
		StartupDelay:  a.Config.Watch.StartupDelay,
		Immediate:     true,
	}, a.Logger)
	if err != nil {
		return err
	}

	a.Logger.Info().
		Str("query", opts.Title).
		Int("min_savings_pct", minSavings).
		Dur("interval", a.Config.Watch.Interval).
		Msg("starting watch")

	err = sched.Run(ctx, watcher.Tick)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	a.Logger.Info().Msg("watch stopped")
	return nil
}
