package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"finsum/internal/core"
	"finsum/internal/log"
)

// QuoteSource fetches a closing price for one symbol. found is false when
// the symbol has no quote; that is a skip, not a failure.
type QuoteSource interface {
	ClosingPrice(ctx context.Context, symbol string) (price decimal.Decimal, found bool, err error)
}

// PriceStore is the store surface the price refresh needs.
type PriceStore interface {
	TrackedStocks(ctx context.Context) ([]core.TrackedStock, error)
	UpdateStockPrice(ctx context.Context, id int64, price decimal.Decimal, at time.Time) error
}

// PriceService refreshes tracked stock prices from the quote source with
// bounded concurrency. A symbol that fails is logged and skipped.
type PriceService struct {
	store       PriceStore
	source      QuoteSource
	concurrency int
	logger      *log.Logger
	now         func() time.Time
}

func NewPriceService(store PriceStore, source QuoteSource, concurrency int, logger *log.Logger) *PriceService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &PriceService{
		store:       store,
		source:      source,
		concurrency: concurrency,
		logger:      logger.WithComponent(log.ComponentScrape),
		now:         time.Now,
	}
}

// Run refreshes every tracked symbol once and returns how many were updated.
func (s *PriceService) Run(ctx context.Context) (int, error) {
	stocks, err := s.store.TrackedStocks(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tracked stocks: %w", err)
	}

	now := s.now()
	var updated atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, stock := range stocks {
		stock := stock
		g.Go(func() error {
			price, found, err := s.source.ClosingPrice(ctx, stock.Symbol)
			if err != nil {
				s.logger.WarnContext(ctx, "Quote fetch failed",
					log.FieldSymbol, stock.Symbol,
					log.FieldError, err)
				return nil
			}
			if !found {
				s.logger.WarnContext(ctx, "No quote for symbol",
					log.FieldSymbol, stock.Symbol)
				return nil
			}

			if err := s.store.UpdateStockPrice(ctx, stock.ID, price, now); err != nil {
				s.logger.ErrorContext(ctx, "Price update failed",
					log.FieldSymbol, stock.Symbol,
					log.FieldError, err)
				return nil
			}

			updated.Add(1)
			s.logger.InfoContext(ctx, "Updated stock price",
				log.FieldSymbol, stock.Symbol,
				log.FieldAmount, price.String(),
				log.FieldOperation, log.OpUpdate)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(updated.Load()), err
	}

	s.logger.InfoContext(ctx, "Price refresh finished",
		"tracked", len(stocks),
		"updated", updated.Load())
	return int(updated.Load()), nil
}
