package priceclient

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/app/port"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/domain/entity"
)

// liquidity above this gives a full-confidence quote; below it the pool is
// thin enough that the price may be stale or manipulable.
const highConfidenceLiquidityUSD = 10_000

// CachedPriceSource implements port.PriceSource over DEX Screener with a TTL
// cache and a client-side rate limiter.
type CachedPriceSource struct {
	client   DEXScreenerClient
	cache    *gocache.Cache
	limiter  *rate.Limiter
	logger   port.Logger
	maxBatch int
}

// NewCachedPriceSource creates a CachedPriceSource. requestsPerSecond bounds
// calls to the upstream API across all in-flight reports.
func NewCachedPriceSource(
	client DEXScreenerClient,
	l port.Logger,
	cacheTTL time.Duration,
	requestsPerSecond float64,
	maxBatch int,
) *CachedPriceSource {
	if maxBatch <= 0 {
		maxBatch = 30
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	return &CachedPriceSource{
		client:   client,
		cache:    gocache.New(cacheTTL, 2*cacheTTL),
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:   l,
		maxBatch: maxBatch,
	}
}

// GetPricesUSD resolves the given queries, serving from cache where possible
// and fetching the rest in per-chain batches. Queries the upstream does not
// know stay absent from the result.
func (s *CachedPriceSource) GetPricesUSD(ctx context.Context, queries []entity.PriceQuery) (map[entity.PriceQuery]entity.PriceQuote, error) {
	out := make(map[entity.PriceQuery]entity.PriceQuote, len(queries))
	missingByChain := make(map[string][]string)

	for _, q := range queries {
		if cached, found := s.cache.Get(cacheKey(q)); found {
			out[q] = cached.(entity.PriceQuote)
			continue
		}
		missingByChain[q.Chain] = append(missingByChain[q.Chain], q.Token)
	}

	for chain, tokens := range missingByChain {
		for start := 0; start < len(tokens); start += s.maxBatch {
			end := min(start+s.maxBatch, len(tokens))
			if err := s.fetchBatch(ctx, chain, tokens[start:end], out); err != nil {
				// Cached entries already collected are still useful; report
				// the upstream failure only if nothing was resolved at all.
				if len(out) == 0 {
					return nil, err
				}
				s.logger.Warn("Price batch fetch failed, returning partial quotes",
					"chain", chain, "error", err)
			}
		}
	}

	return out, nil
}

func (s *CachedPriceSource) fetchBatch(ctx context.Context, chain string, tokens []string, out map[entity.PriceQuery]entity.PriceQuote) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("price rate limiter: %w", err)
	}

	pairs, err := s.client.GetTokenPairsByAddresses(ctx, chain, tokens)
	if err != nil {
		return err
	}

	// A token can appear in many pairs; keep the quote backed by the deepest
	// liquidity.
	bestLiquidity := make(map[entity.PriceQuery]float64, len(tokens))
	for _, pair := range pairs {
		price, err := strconv.ParseFloat(pair.PriceUsd, 64)
		if err != nil || price <= 0 {
			continue
		}
		liquidity := 0.0
		if pair.Liquidity != nil {
			liquidity = pair.Liquidity.Usd
		}
		q := entity.PriceQuery{Chain: chain, Token: strings.ToLower(pair.BaseToken.Address)}
		if prev, seen := bestLiquidity[q]; seen && prev >= liquidity {
			continue
		}
		bestLiquidity[q] = liquidity
		confidence := 0.5
		if liquidity >= highConfidenceLiquidityUSD {
			confidence = 1.0
		}
		quote := entity.PriceQuote{Price: price, Confidence: confidence}
		out[q] = quote
		s.cache.Set(cacheKey(q), quote, gocache.DefaultExpiration)
	}

	return nil
}

func cacheKey(q entity.PriceQuery) string {
	return q.Chain + ":" + q.Token
}
