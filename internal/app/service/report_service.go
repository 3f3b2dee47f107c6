package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/app/port"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/domain/entity"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/pkg/metrics"
)

// ethReferenceChain is where the ETH reference price is looked up.
const ethReferenceChain = "ethereum"

// ReportService builds one portfolio report per request: it fans out per-chain
// balance fetches, prices and normalizes the results, aggregates across
// chains, analyzes the portfolio, and attaches advice.
type ReportService struct {
	chains        port.ChainDefinitionProvider
	sources       port.BalanceSourceProvider
	prices        port.PriceSource
	advisor       *Advisor
	normalizer    Normalizer
	aggregator    Aggregator
	analyzer      Analyzer
	logger        port.Logger
	maxConcurrent int

	// ethPriceGroup collapses concurrent ETH reference price fetches.
	ethPriceGroup singleflight.Group
}

// NewReportService creates a ReportService.
func NewReportService(
	chains port.ChainDefinitionProvider,
	sources port.BalanceSourceProvider,
	prices port.PriceSource,
	advisor *Advisor,
	l port.Logger,
	maxConcurrent int,
) *ReportService {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &ReportService{
		chains:        chains,
		sources:       sources,
		prices:        prices,
		advisor:       advisor,
		normalizer:    NewNormalizer(),
		aggregator:    NewAggregator(),
		analyzer:      Analyzer{},
		logger:        l,
		maxConcurrent: maxConcurrent,
	}
}

// BuildReport builds the full analysis for one wallet and chain tag. Partial
// chain failures are returned as ReportErrors alongside a successful report;
// only a total failure (every chain failed, or an unknown tag) returns an
// error.
func (s *ReportService) BuildReport(ctx context.Context, address, chainTag string) (*entity.PortfolioAnalysis, []entity.ReportError, error) {
	started := time.Now()
	defer func() {
		metrics.ReportDuration.Observe(time.Since(started).Seconds())
	}()

	defs, err := s.resolveChains(chainTag)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Debug("Building portfolio report", "address", address, "chain", chainTag, "chain_count", len(defs))

	results := s.fetchAllChains(ctx, address, defs)

	var reportErrs []entity.ReportError
	failed := 0
	for _, res := range results {
		if res.Failed() {
			failed++
			metrics.ChainFetchFailures.WithLabelValues(res.Chain).Inc()
			s.logger.Warn("Chain balance fetch failed, continuing with partial data",
				"address", address, "chain", res.Chain, "error", res.Err)
			reportErrs = append(reportErrs, entity.ReportError{
				Chain:   res.Chain,
				Message: fmt.Sprintf("balance fetch failed: %v", res.Err),
			})
		}
	}
	if failed == len(results) {
		metrics.ReportsServed.WithLabelValues("failed").Inc()
		return nil, reportErrs, fmt.Errorf("report for %s: %w", address, entity.ErrAllChainsFailed)
	}

	defsByChain := make(map[string]entity.ChainDefinition, len(defs))
	for _, d := range defs {
		defsByChain[d.Identifier] = d
	}

	quotes := s.lookupTokenPrices(ctx, results, defsByChain)
	ethPriceUSD := s.ethReferencePrice(ctx)

	// Native coins reach the normalizer keyed by symbol; resolve those through
	// the chain's wrapped-native contract.
	wrappedNative := make(map[string]string, len(defs))
	for _, d := range defs {
		if d.DEXScreenerChainID != "" && d.WrappedNativeAddress != "" {
			wrappedNative[d.DEXScreenerChainID+":"+d.NativeSymbol] = strings.ToLower(d.WrappedNativeAddress)
		}
	}

	lookup := func(priceChainID, addressOrSymbol string) (float64, bool) {
		q, ok := quotes[entity.PriceQuery{Chain: priceChainID, Token: addressOrSymbol}]
		if !ok || q.Price <= 0 {
			if wrapped, isNative := wrappedNative[priceChainID+":"+addressOrSymbol]; isNative {
				q, ok = quotes[entity.PriceQuery{Chain: priceChainID, Token: wrapped}]
				if ok && q.Price > 0 {
					return q.Price, true
				}
			}
			return 0, false
		}
		return q.Price, true
	}

	var normalized []entity.NormalizedHolding
	for _, res := range results {
		if res.Failed() {
			continue
		}
		def := defsByChain[res.Chain]
		normalized = append(normalized, s.normalizer.Normalize(res.Balances, def.DEXScreenerChainID, ethPriceUSD, lookup)...)
	}

	aggregated := s.aggregator.Aggregate(normalized)
	analysis := s.analyzer.Analyze(aggregated)
	analysis.Address = address
	analysis.Chain = s.chainLabel(chainTag, analysis.Holdings)
	analysis.Advice = s.advisor.Advise(ctx, analysis, analysis.Chain)

	if len(reportErrs) > 0 {
		metrics.ReportsServed.WithLabelValues("degraded").Inc()
	} else {
		metrics.ReportsServed.WithLabelValues("ok").Inc()
	}
	return &analysis, reportErrs, nil
}

func (s *ReportService) resolveChains(chainTag string) ([]entity.ChainDefinition, error) {
	if chainTag == entity.ChainTagAll {
		defs := s.chains.GetAllChainDefinitions()
		if len(defs) == 0 {
			return nil, entity.ErrUnsupportedChain
		}
		return defs, nil
	}
	def, ok := s.chains.GetChainDefinition(chainTag)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedChain, chainTag)
	}
	return []entity.ChainDefinition{def}, nil
}

// fetchAllChains issues per-chain fetches concurrently, bounded by a
// semaphore. A failing chain resolves to a failed ChainResult and never
// cancels its siblings.
func (s *ReportService) fetchAllChains(ctx context.Context, address string, defs []entity.ChainDefinition) []entity.ChainResult {
	results := make([]entity.ChainResult, len(defs))
	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for i, def := range defs {
		if err := ctx.Err(); err != nil {
			results[i] = entity.ChainResult{Chain: def.Identifier, Err: err}
			continue
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results[i] = entity.ChainResult{Chain: def.Identifier, Err: ctx.Err()}
			continue
		}
		wg.Add(1)
		go func(i int, d entity.ChainDefinition) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.fetchChain(ctx, address, d)
		}(i, def)
	}
	wg.Wait()
	return results
}

func (s *ReportService) fetchChain(ctx context.Context, address string, def entity.ChainDefinition) entity.ChainResult {
	source, err := s.sources.GetSource(def)
	if err != nil {
		return entity.ChainResult{Chain: def.Identifier, Err: fmt.Errorf("get balance source: %w", err)}
	}
	balances, err := source.GetBalances(ctx, address)
	if err != nil {
		return entity.ChainResult{Chain: def.Identifier, Err: err}
	}
	s.logger.Debug("Fetched chain balances", "chain", def.Identifier, "count", len(balances))
	return entity.ChainResult{Chain: def.Identifier, Balances: balances}
}

// lookupTokenPrices batches one price-source call for every token that is not
// covered by the stablecoin or ETH price pins. A price-source failure degrades
// to "no prices known" rather than failing the report.
func (s *ReportService) lookupTokenPrices(
	ctx context.Context,
	results []entity.ChainResult,
	defsByChain map[string]entity.ChainDefinition,
) map[entity.PriceQuery]entity.PriceQuote {
	seen := make(map[entity.PriceQuery]struct{})
	var queries []entity.PriceQuery

	for _, res := range results {
		if res.Failed() {
			continue
		}
		def := defsByChain[res.Chain]
		if def.DEXScreenerChainID == "" {
			continue
		}
		for _, b := range res.Balances {
			if IsStablecoinSymbol(b.Symbol) || b.Symbol == "ETH" || b.Symbol == "WETH" {
				continue
			}
			key := strings.ToLower(b.TokenAddress)
			if key == "" || key == entity.ZeroAddress {
				// The native coin has no contract of its own; price it via
				// the wrapped-native contract when the chain defines one.
				if b.IsNative && def.WrappedNativeAddress != "" {
					key = strings.ToLower(def.WrappedNativeAddress)
				} else {
					key = b.Symbol
				}
			}
			q := entity.PriceQuery{Chain: def.DEXScreenerChainID, Token: key}
			if _, dup := seen[q]; dup {
				continue
			}
			seen[q] = struct{}{}
			queries = append(queries, q)
		}
	}

	if len(queries) == 0 {
		return map[entity.PriceQuery]entity.PriceQuote{}
	}
	quotes, err := s.prices.GetPricesUSD(ctx, queries)
	if err != nil {
		s.logger.Warn("Price lookup failed, unpriced holdings will be dust-filtered", "error", err)
		return map[entity.PriceQuery]entity.PriceQuote{}
	}
	return quotes
}

// ethReferencePrice resolves the USD price used for ETH and wrapped-ETH
// variants, via the wrapped-native contract on the reference chain.
func (s *ReportService) ethReferencePrice(ctx context.Context) float64 {
	ethDef, ok := s.chains.GetChainDefinition(ethReferenceChain)
	if !ok || ethDef.WrappedNativeAddress == "" || ethDef.DEXScreenerChainID == "" {
		return 0
	}
	q := entity.PriceQuery{
		Chain: ethDef.DEXScreenerChainID,
		Token: strings.ToLower(ethDef.WrappedNativeAddress),
	}

	v, err, _ := s.ethPriceGroup.Do("eth-usd", func() (any, error) {
		quotes, err := s.prices.GetPricesUSD(ctx, []entity.PriceQuery{q})
		if err != nil {
			return 0.0, err
		}
		return quotes[q].Price, nil
	})
	if err != nil {
		s.logger.Warn("ETH reference price lookup failed", "error", err)
		return 0
	}
	return v.(float64)
}

// chainLabel echoes the request tag, or synthesizes a label for "all" from
// the chains that actually contributed holdings.
func (s *ReportService) chainLabel(chainTag string, holdings []entity.PortfolioHolding) string {
	if chainTag != entity.ChainTagAll {
		return chainTag
	}
	var contributing []string
	seen := make(map[string]struct{})
	for _, h := range holdings {
		for _, c := range h.Chains {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			contributing = append(contributing, c)
		}
	}
	if len(contributing) == 0 {
		return entity.ChainTagAll
	}
	return fmt.Sprintf("all(%s)", strings.Join(contributing, "+"))
}
