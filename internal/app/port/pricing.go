package port

import (
	"context"

	"github.com/Aifred-zkorp/wallet-exposure-advisor/internal/domain/entity"
)

// PriceSource resolves USD spot prices for a batch of tokens. Queries absent
// from the returned map mean "no price known" and are handled as price 0 by
// callers; a non-nil error means the source itself was unreachable.
type PriceSource interface {
	GetPricesUSD(ctx context.Context, queries []entity.PriceQuery) (map[entity.PriceQuery]entity.PriceQuote, error)
}

// AdviceGenerator produces free-form rebalancing advice for a completed
// analysis. It may fail; callers must recover with a local fallback.
type AdviceGenerator interface {
	GenerateAdvice(ctx context.Context, analysis entity.PortfolioAnalysis, chainLabel string) (string, error)
}
