package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"lootradar/internal/alerting"
	"lootradar/internal/currency"
)

// Searcher is the part of Service the watcher depends on.
type Searcher interface {
	Search(ctx context.Context, query string, limit int, cur currency.Currency) SearchResult
}

// WatchOptions configures a Watcher.
type WatchOptions struct {
	Query         string
	Limit         int
	Currency      currency.Currency
	MinSavingsPct int
}

// Watcher re-runs one search per round and notifies for every card whose
// discount reaches the threshold.
type Watcher struct {
	searcher  Searcher
	notifier  alerting.Notifier
	opts      WatchOptions
	threshold decimal.Decimal
	logger    zerolog.Logger
}

// NewWatcher validates opts and constructs a Watcher.
func NewWatcher(searcher Searcher, notifier alerting.Notifier, opts WatchOptions, logger zerolog.Logger) (*Watcher, error) {
	opts.Query = strings.TrimSpace(opts.Query)
	if opts.Query == "" {
		return nil, fmt.Errorf("watch query must not be empty")
	}
	if opts.MinSavingsPct < 0 || opts.MinSavingsPct > 100 {
		return nil, fmt.Errorf("min savings must be between 0 and 100, got %d", opts.MinSavingsPct)
	}
	if notifier == nil {
		return nil, fmt.Errorf("watch notifier not configured")
	}
	return &Watcher{
		searcher:  searcher,
		notifier:  notifier,
		opts:      opts,
		threshold: decimal.NewFromInt(int64(opts.MinSavingsPct)),
		logger:    logger.With().Str("component", "watch").Str("query", opts.Query).Logger(),
	}, nil
}

// Tick runs one watch round. Notification failures are logged and the round
// continues with the next card.
func (w *Watcher) Tick(ctx context.Context, at time.Time) error {
	result := w.searcher.Search(ctx, w.opts.Query, w.opts.Limit, w.opts.Currency)
	if result.NoResults {
		w.logger.Info().Time("round", at).Msg("no deals found")
		return nil
	}

	matched := 0
	for _, card := range result.Cards {
		if card.Deal.SavingsPercent < int64(w.opts.MinSavingsPct) {
			continue
		}
		matched++

		note := alerting.Notification{
			At:             at,
			Query:          w.opts.Query,
			Title:          card.Game.External,
			StoreName:      card.Deal.StoreName,
			SalePrice:      w.opts.Currency.Format(card.Deal.SalePrice),
			RetailPrice:    w.opts.Currency.Format(card.Deal.RetailPrice),
			SavingsPercent: card.Deal.SavingsPercent,
			ThresholdPct:   w.threshold,
			IsBundle:       card.Deal.IsBundle,
			RedirectURL:    card.RedirectURL,
		}
		if err := w.notifier.Notify(ctx, note); err != nil {
			w.logger.Error().Err(err).Str("title", note.Title).Msg("failed to dispatch notification")
		}
	}

	w.logger.Info().
		Time("round", at).
		Int("cards", len(result.Cards)).
		Int("matched", matched).
		Msg("watch round complete")
	return nil
}
