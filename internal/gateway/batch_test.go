package gateway

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBatchQuotes_OneResultPerSymbolInOrder(t *testing.T) {
	s := newTestService(t, TTL{})
	symbols := []string{"AAPL", "MSFT", "TSLA"}

	results, err := s.BatchQuotes(context.Background(), symbols)
	require.NoError(t, err)
	require.Len(t, results, len(symbols))
	for i, sym := range symbols {
		require.Equal(t, sym, results[i].Symbol)
		require.NotNil(t, results[i].Quote)
		require.Empty(t, results[i].Error)
	}
}

func TestBatchQuotes_InvalidSymbolIsolated(t *testing.T) {
	s := newTestService(t, TTL{})

	results, err := s.BatchQuotes(context.Background(), []string{"AAPL", "not a symbol", "MSFT"})
	require.NoError(t, err, "one bad symbol must not fail the batch")
	require.Len(t, results, 3)

	require.NotNil(t, results[0].Quote)
	require.Nil(t, results[1].Quote)
	require.NotEmpty(t, results[1].Error)
	require.Equal(t, "not a symbol", results[1].Symbol, "raw symbol is echoed back")
	require.NotNil(t, results[2].Quote)
}

func TestBatchQuotes_EmptyRejected(t *testing.T) {
	s := newTestService(t, TTL{})

	_, err := s.BatchQuotes(context.Background(), nil)
	ce := AsClientError(err)
	require.NotNil(t, ce)
	require.Equal(t, KindInvalidBatch, ce.Kind)
}

func TestBatchQuotes_OversizedRejected(t *testing.T) {
	s := newTestService(t, TTL{})
	symbols := make([]string, maxBatchSize+1)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("S%d", i)
	}

	_, err := s.BatchQuotes(context.Background(), symbols)
	ce := AsClientError(err)
	require.NotNil(t, ce)
	require.Equal(t, KindInvalidBatch, ce.Kind)
}

func TestBatchQuotes_MaxSizeAccepted(t *testing.T) {
	s := newTestService(t, TTL{})
	symbols := make([]string, maxBatchSize)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("S%d", i)
	}

	results, err := s.BatchQuotes(context.Background(), symbols)
	require.NoError(t, err)
	require.Len(t, results, maxBatchSize)
	for i, r := range results {
		require.Equal(t, symbols[i], r.Symbol)
		require.NotNil(t, r.Quote)
	}
}
