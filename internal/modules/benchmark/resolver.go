package benchmark

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/akontos/portfolio-tracker/internal/domain"
)

// Resolver maps a region to its benchmark ETF's composition and produces a
// suffix-tolerant ticker → weight lookup.
type Resolver struct {
	store domain.BenchmarkStore
	log   zerolog.Logger
}

// NewResolver creates a new benchmark weight resolver
func NewResolver(store domain.BenchmarkStore, log zerolog.Logger) *Resolver {
	return &Resolver{
		store: store,
		log:   log.With().Str("component", "benchmark_resolver").Logger(),
	}
}

// Lookup resolves portfolio symbols to benchmark weight percentages.
// Both the raw benchmark ticker and its suffix-stripped form are keys, and
// Weight probes both forms of the queried symbol, so "RY" and "RY.TO" resolve
// to the same weight regardless of which form either side uses.
type Lookup struct {
	weights  map[string]float64
	suffixes []string
}

// WeightsForRegion builds the weight lookup for a region's benchmark ETF.
func (r *Resolver) WeightsForRegion(region domain.Region) (*Lookup, error) {
	cfg := domain.RegionConfigFor(region)
	if cfg == nil {
		return nil, fmt.Errorf("unknown region %q", region)
	}

	holdings, err := r.store.GetETFHoldings(cfg.BenchmarkETF)
	if err != nil {
		return nil, fmt.Errorf("load %s holdings: %w", cfg.BenchmarkETF, err)
	}

	lookup := &Lookup{
		weights:  make(map[string]float64, len(holdings)*2),
		suffixes: cfg.TickerSuffixes,
	}

	for _, h := range holdings {
		ticker := strings.ToUpper(strings.TrimSpace(h.Ticker))
		if ticker == "" {
			continue
		}
		lookup.weights[ticker] = h.Weight
		if stripped := stripSuffix(ticker, cfg.TickerSuffixes); stripped != ticker {
			lookup.weights[stripped] = h.Weight
		}
	}

	r.log.Debug().
		Str("region", string(region)).
		Str("etf", cfg.BenchmarkETF).
		Int("tickers", len(holdings)).
		Msg("Benchmark weights resolved")

	return lookup, nil
}

// Weight returns the benchmark weight for a portfolio symbol. Unmatched
// symbols resolve to 0: the position is simply fully active relative to the
// benchmark.
func (l *Lookup) Weight(symbol string) float64 {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if w, ok := l.weights[symbol]; ok {
		return w
	}
	if w, ok := l.weights[stripSuffix(symbol, l.suffixes)]; ok {
		return w
	}
	return 0
}

func stripSuffix(ticker string, suffixes []string) string {
	for _, suffix := range suffixes {
		if strings.HasSuffix(ticker, suffix) {
			return strings.TrimSuffix(ticker, suffix)
		}
	}
	return ticker
}
