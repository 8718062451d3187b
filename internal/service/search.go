package service

import (
	"context"

	"github.com/rs/zerolog"

	"lootradar/internal/cheapshark"
	"lootradar/internal/currency"
	"lootradar/internal/deals"
	"lootradar/internal/links"
)

// DealsSource is the upstream the search reads from. Implementations must
// absorb their own failures.
type DealsSource interface {
	SearchGames(ctx context.Context, title string, limit int) []cheapshark.GameSummary
	GameDeals(ctx context.Context, gameID string) (cheapshark.GameDetail, bool)
	RedirectURL(dealID string) string
}

// SearchRecorder counts completed searches.
type SearchRecorder interface {
	RecordSearch(cards int)
}

// Card is everything the presentation layer needs for one game.
type Card struct {
	Game        cheapshark.GameSummary
	Deal        deals.ClassifiedDeal
	RedirectURL string
	Links       links.Links
}

// SearchResult is one rendered search. Links are present as soon as the query
// is non-blank, independent of upstream results.
type SearchResult struct {
	Query     string
	Currency  currency.Currency
	Links     links.Links
	Cards     []Card
	NoResults bool
}

// Service orchestrates link building, upstream lookups and classification.
type Service struct {
	source     DealsSource
	classifier *deals.Classifier
	links      *links.Builder
	recorder   SearchRecorder
	logger     zerolog.Logger
}

// New constructs the search service. recorder may be nil.
func New(source DealsSource, classifier *deals.Classifier, builder *links.Builder, recorder SearchRecorder, logger zerolog.Logger) *Service {
	return &Service{
		source:     source,
		classifier: classifier,
		links:      builder,
		recorder:   recorder,
		logger:     logger.With().Str("component", "search").Logger(),
	}
}

// Links returns the storefront links for query without touching the network.
func (s *Service) Links(query string) links.Links {
	return s.links.Build(query)
}

// Search runs one query end to end. Details are fetched one game at a time in
// search order; games whose lookup fails or has no deals are skipped.
func (s *Service) Search(ctx context.Context, query string, limit int, cur currency.Currency) SearchResult {
	result := SearchResult{
		Query:    query,
		Currency: cur,
		Links:    s.links.Build(query),
	}
	if links.Blank(query) {
		return result
	}

	games := s.source.SearchGames(ctx, query, limit)
	for _, game := range games {
		if ctx.Err() != nil {
			break
		}

		detail, ok := s.source.GameDeals(ctx, game.GameID)
		if !ok {
			continue
		}
		classified, ok := s.classifier.Classify(game, detail, cur)
		if !ok {
			s.logger.Debug().Str("game_id", game.GameID).Msg("game has no deals; skipped")
			continue
		}

		result.Cards = append(result.Cards, Card{
			Game:        game,
			Deal:        classified,
			RedirectURL: s.source.RedirectURL(classified.DealID),
			Links:       s.links.Build(game.External),
		})
	}

	result.NoResults = len(result.Cards) == 0
	if s.recorder != nil {
		s.recorder.RecordSearch(len(result.Cards))
	}

	s.logger.Info().
		Str("query", query).
		Str("currency", cur.String()).
		Int("games", len(games)).
		Int("cards", len(result.Cards)).
		Msg("search complete")
	return result
}

var _ DealsSource = (*cheapshark.Client)(nil)
