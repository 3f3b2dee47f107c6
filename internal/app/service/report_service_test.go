package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/app/port"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/domain/entity"
	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/pkg/logger"
)

type fakeChainProvider struct {
	defs []entity.ChainDefinition
}

func (f *fakeChainProvider) GetAllChainDefinitions() []entity.ChainDefinition {
	return f.defs
}

func (f *fakeChainProvider) GetChainDefinition(identifier string) (entity.ChainDefinition, bool) {
	for _, d := range f.defs {
		if d.Identifier == identifier {
			return d, true
		}
	}
	return entity.ChainDefinition{}, false
}

type fakeBalanceSource struct {
	def          entity.ChainDefinition
	balancesFunc func(ctx context.Context, address string) ([]entity.ChainBalance, error)
}

func (f *fakeBalanceSource) GetBalances(ctx context.Context, address string) ([]entity.ChainBalance, error) {
	return f.balancesFunc(ctx, address)
}

func (f *fakeBalanceSource) Definition() entity.ChainDefinition {
	return f.def
}

type fakeSourceProvider struct {
	sources map[string]port.BalanceSource
}

func (f *fakeSourceProvider) GetSource(def entity.ChainDefinition) (port.BalanceSource, error) {
	s, ok := f.sources[def.Identifier]
	if !ok {
		return nil, errors.New("no source for " + def.Identifier)
	}
	return s, nil
}

type fakePriceSource struct {
	quotes map[entity.PriceQuery]entity.PriceQuote
	err    error
}

func (f *fakePriceSource) GetPricesUSD(_ context.Context, queries []entity.PriceQuery) (map[entity.PriceQuery]entity.PriceQuote, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[entity.PriceQuery]entity.PriceQuote)
	for _, q := range queries {
		if quote, ok := f.quotes[q]; ok {
			out[q] = quote
		}
	}
	return out, nil
}

func testChains() []entity.ChainDefinition {
	return []entity.ChainDefinition{
		{
			Identifier:           "ethereum",
			Family:               entity.ChainFamilyEVM,
			DEXScreenerChainID:   "ethereum",
			WrappedNativeAddress: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
		},
		{
			Identifier:         "base",
			Family:             entity.ChainFamilyEVM,
			DEXScreenerChainID: "base",
		},
	}
}

func ethQuotes() map[entity.PriceQuery]entity.PriceQuote {
	return map[entity.PriceQuery]entity.PriceQuote{
		{Chain: "ethereum", Token: "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"}: {Price: 3000, Confidence: 1},
	}
}

func balancesOK(balances ...entity.ChainBalance) func(context.Context, string) ([]entity.ChainBalance, error) {
	return func(context.Context, string) ([]entity.ChainBalance, error) {
		return balances, nil
	}
}

func newTestReportService(chains *fakeChainProvider, sources *fakeSourceProvider, prices *fakePriceSource) *ReportService {
	advisor := NewAdvisor(nil, logger.NewNop(), 0)
	return NewReportService(chains, sources, prices, advisor, logger.NewNop(), 4)
}

func TestBuildReportSingleChain(t *testing.T) {
	defs := testChains()
	chains := &fakeChainProvider{defs: defs}
	sources := &fakeSourceProvider{sources: map[string]port.BalanceSource{
		"ethereum": &fakeBalanceSource{def: defs[0], balancesFunc: balancesOK(
			entity.ChainBalance{Chain: "ethereum", Symbol: "ETH", IsNative: true, Formatted: "2"},
			entity.ChainBalance{Chain: "ethereum", Symbol: "USDC", TokenAddress: "0xa0b8", Formatted: "1000"},
		)},
	}}
	svc := newTestReportService(chains, sources, &fakePriceSource{quotes: ethQuotes()})

	analysis, reportErrs, err := svc.BuildReport(context.Background(), "0xabc", "ethereum")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reportErrs) != 0 {
		t.Fatalf("unexpected report errors: %+v", reportErrs)
	}
	if analysis.Address != "0xabc" || analysis.Chain != "ethereum" {
		t.Errorf("address/chain = %s/%s", analysis.Address, analysis.Chain)
	}
	if analysis.TotalValueUSD != 7000 {
		t.Errorf("total = %f, want 7000 (2 ETH at 3000 + 1000 USDC)", analysis.TotalValueUSD)
	}
	if analysis.Advice == "" {
		t.Error("report must always carry advice")
	}
	if top, ok := analysis.TopHolding(); !ok || top.Symbol != "ETH" {
		t.Errorf("top holding = %+v, want ETH", top)
	}
}

func TestBuildReportUnsupportedChain(t *testing.T) {
	svc := newTestReportService(&fakeChainProvider{defs: testChains()}, &fakeSourceProvider{}, &fakePriceSource{})

	_, _, err := svc.BuildReport(context.Background(), "0xabc", "dogechain")
	if !errors.Is(err, entity.ErrUnsupportedChain) {
		t.Fatalf("err = %v, want ErrUnsupportedChain", err)
	}
}

func TestBuildReportPartialChainFailure(t *testing.T) {
	defs := testChains()
	chains := &fakeChainProvider{defs: defs}
	sources := &fakeSourceProvider{sources: map[string]port.BalanceSource{
		"ethereum": &fakeBalanceSource{def: defs[0], balancesFunc: balancesOK(
			entity.ChainBalance{Chain: "ethereum", Symbol: "USDC", TokenAddress: "0xa0b8", Formatted: "500"},
		)},
		"base": &fakeBalanceSource{def: defs[1], balancesFunc: func(context.Context, string) ([]entity.ChainBalance, error) {
			return nil, errors.New("rpc timeout")
		}},
	}}
	svc := newTestReportService(chains, sources, &fakePriceSource{quotes: ethQuotes()})

	analysis, reportErrs, err := svc.BuildReport(context.Background(), "0xabc", "all")
	if err != nil {
		t.Fatalf("partial failure must not fail the report: %v", err)
	}
	if len(reportErrs) != 1 || reportErrs[0].Chain != "base" {
		t.Fatalf("report errors = %+v, want one for base", reportErrs)
	}
	if analysis.TotalValueUSD != 500 {
		t.Errorf("total = %f, want 500 from the surviving chain", analysis.TotalValueUSD)
	}
}

func TestBuildReportAllChainsFailed(t *testing.T) {
	defs := testChains()
	failing := func(context.Context, string) ([]entity.ChainBalance, error) {
		return nil, errors.New("rpc down")
	}
	chains := &fakeChainProvider{defs: defs}
	sources := &fakeSourceProvider{sources: map[string]port.BalanceSource{
		"ethereum": &fakeBalanceSource{def: defs[0], balancesFunc: failing},
		"base":     &fakeBalanceSource{def: defs[1], balancesFunc: failing},
	}}
	svc := newTestReportService(chains, sources, &fakePriceSource{})

	_, reportErrs, err := svc.BuildReport(context.Background(), "0xabc", "all")
	if !errors.Is(err, entity.ErrAllChainsFailed) {
		t.Fatalf("err = %v, want ErrAllChainsFailed", err)
	}
	if len(reportErrs) != 2 {
		t.Errorf("report errors = %+v, want one per chain", reportErrs)
	}
}

func TestBuildReportAllTagSynthesizesLabel(t *testing.T) {
	defs := testChains()
	chains := &fakeChainProvider{defs: defs}
	sources := &fakeSourceProvider{sources: map[string]port.BalanceSource{
		"ethereum": &fakeBalanceSource{def: defs[0], balancesFunc: balancesOK(
			entity.ChainBalance{Chain: "ethereum", Symbol: "USDC", TokenAddress: "0xa0b8", Formatted: "100"},
		)},
		"base": &fakeBalanceSource{def: defs[1], balancesFunc: balancesOK(
			entity.ChainBalance{Chain: "base", Symbol: "USDC", TokenAddress: "0x8335", Formatted: "50"},
		)},
	}}
	svc := newTestReportService(chains, sources, &fakePriceSource{quotes: ethQuotes()})

	analysis, _, err := svc.BuildReport(context.Background(), "0xabc", "all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(analysis.Chain, "all(") {
		t.Errorf("chain label = %q, want synthesized all(...) form", analysis.Chain)
	}
	if !strings.Contains(analysis.Chain, "ethereum") || !strings.Contains(analysis.Chain, "base") {
		t.Errorf("chain label = %q, want both contributing chains", analysis.Chain)
	}
	if analysis.TotalValueUSD != 150 {
		t.Errorf("total = %f, want 150 merged across chains", analysis.TotalValueUSD)
	}
}

func TestBuildReportNativeCoinPricedViaWrappedContract(t *testing.T) {
	def := entity.ChainDefinition{
		ChainID:              999,
		Identifier:           "hyperliquid",
		Family:               entity.ChainFamilyEVM,
		NativeSymbol:         "HYPE",
		DEXScreenerChainID:   "hyperevm",
		WrappedNativeAddress: "0x5555555555555555555555555555555555555555",
	}
	chains := &fakeChainProvider{defs: []entity.ChainDefinition{def}}
	sources := &fakeSourceProvider{sources: map[string]port.BalanceSource{
		"hyperliquid": &fakeBalanceSource{def: def, balancesFunc: balancesOK(
			entity.ChainBalance{
				Chain:        "hyperliquid",
				Symbol:       "HYPE",
				TokenAddress: entity.ZeroAddress,
				IsNative:     true,
				Formatted:    "10",
			},
		)},
	}}
	prices := &fakePriceSource{quotes: map[entity.PriceQuery]entity.PriceQuote{
		{Chain: "hyperevm", Token: "0x5555555555555555555555555555555555555555"}: {Price: 40, Confidence: 1},
	}}
	svc := newTestReportService(chains, sources, prices)

	analysis, reportErrs, err := svc.BuildReport(context.Background(), "0xabc", "hyperliquid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reportErrs) != 0 {
		t.Fatalf("unexpected report errors: %+v", reportErrs)
	}
	if analysis.TotalValueUSD != 400 {
		t.Fatalf("total = %f, want 400 (10 HYPE priced via the wrapped contract)", analysis.TotalValueUSD)
	}
	if len(analysis.Holdings) != 1 || analysis.Holdings[0].Symbol != "HYPE" {
		t.Errorf("holdings = %+v, want the native HYPE position", analysis.Holdings)
	}
}

func TestBuildReportCancelledContextSkipsFetches(t *testing.T) {
	defs := testChains()
	calls := 0
	chains := &fakeChainProvider{defs: defs}
	sources := &fakeSourceProvider{sources: map[string]port.BalanceSource{
		"ethereum": &fakeBalanceSource{def: defs[0], balancesFunc: func(context.Context, string) ([]entity.ChainBalance, error) {
			calls++
			return nil, nil
		}},
		"base": &fakeBalanceSource{def: defs[1], balancesFunc: func(context.Context, string) ([]entity.ChainBalance, error) {
			calls++
			return nil, nil
		}},
	}}
	svc := newTestReportService(chains, sources, &fakePriceSource{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, reportErrs, err := svc.BuildReport(ctx, "0xabc", "all")
	if !errors.Is(err, entity.ErrAllChainsFailed) {
		t.Fatalf("err = %v, want ErrAllChainsFailed", err)
	}
	if calls != 0 {
		t.Errorf("balance fetches dispatched %d times on a dead context, want 0", calls)
	}
	if len(reportErrs) != 2 {
		t.Errorf("report errors = %+v, want one per skipped chain", reportErrs)
	}
}

func TestBuildReportPriceSourceFailureDegrades(t *testing.T) {
	defs := testChains()
	chains := &fakeChainProvider{defs: defs}
	sources := &fakeSourceProvider{sources: map[string]port.BalanceSource{
		"ethereum": &fakeBalanceSource{def: defs[0], balancesFunc: balancesOK(
			entity.ChainBalance{Chain: "ethereum", Symbol: "USDC", TokenAddress: "0xa0b8", Formatted: "100"},
			entity.ChainBalance{Chain: "ethereum", Symbol: "PEPE", TokenAddress: "0x6982", Formatted: "9999999"},
		)},
	}}
	svc := newTestReportService(chains, sources, &fakePriceSource{err: errors.New("api down")})

	analysis, _, err := svc.BuildReport(context.Background(), "0xabc", "ethereum")
	if err != nil {
		t.Fatalf("price failure must degrade, not fail: %v", err)
	}
	// The stablecoin pin survives without a price source; the unpriced token
	// falls to the dust filter.
	if analysis.TotalValueUSD != 100 {
		t.Errorf("total = %f, want 100 from the pinned stablecoin", analysis.TotalValueUSD)
	}
	if len(analysis.Holdings) != 1 || analysis.Holdings[0].Symbol != "USDC" {
		t.Errorf("holdings = %+v, want only USDC", analysis.Holdings)
	}
}
