package gateway

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"marketgateway/internal/model"
)

const (
	maxBatchSize = 50

	// batchConcurrency bounds concurrent upstream fetches for one
	// batch request.
	batchConcurrency = 8
)

// BatchQuotes resolves up to maxBatchSize symbols concurrently. Every
// requested symbol gets exactly one result entry, in request order; a
// symbol that fails validation gets an error entry without affecting
// its neighbours. The only request-level error is a malformed batch
// (empty or oversized).
func (s *Service) BatchQuotes(ctx context.Context, symbols []string) ([]model.BatchQuoteResult, error) {
	if len(symbols) == 0 {
		return nil, &ClientError{Kind: KindInvalidBatch, Message: "symbols must not be empty"}
	}
	if len(symbols) > maxBatchSize {
		return nil, &ClientError{
			Kind:    KindInvalidBatch,
			Message: fmt.Sprintf("at most %d symbols per batch, got %d", maxBatchSize, len(symbols)),
		}
	}

	results := make([]model.BatchQuoteResult, len(symbols))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for i, raw := range symbols {
		i, raw := i, raw
		g.Go(func() error {
			// One symbol's panic must not take down its neighbours.
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("batch quote panic",
						zap.String("symbol", raw), zap.Any("panic", r))
					results[i] = model.BatchQuoteResult{Symbol: raw, Error: "internal error"}
				}
			}()

			sym, err := NormalizeSymbol(raw)
			if err != nil {
				results[i] = model.BatchQuoteResult{Symbol: raw, Error: err.Error()}
				return nil
			}
			q, _, err := s.Quote(ctx, sym)
			if err != nil {
				results[i] = model.BatchQuoteResult{Symbol: sym, Error: err.Error()}
				return nil
			}
			results[i] = model.BatchQuoteResult{Symbol: sym, Quote: q}
			return nil
		})
	}
	// Workers never return errors; failures live in their result slot.
	_ = g.Wait()
	return results, nil
}
