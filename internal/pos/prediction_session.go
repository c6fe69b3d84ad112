package pos

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// DefaultForecastDays is the forecast horizon requested when a product is
// selected.
const DefaultForecastDays = 7

// PredictionSession tracks one selected product and its two derived
// predictions: a demand forecast series and an optimal-price/profit pair.
// The two slots are fetched concurrently and are fully independent; either
// may populate, or fail, without touching the other.
//
// A response is committed only if the product it was requested for is still
// the tracked product at arrival time. Selecting a new product does not
// cancel in-flight fetches; it supersedes them, and their results are
// computed but discarded.
type PredictionSession struct {
	gateway Gateway
	logger  *zap.Logger

	mu       sync.Mutex
	selected *Product
	forecast []SalesPrediction
	optimal  OptimalPriceResult
}

// NewPredictionSession creates a session with no product selected.
func NewPredictionSession(gateway Gateway, logger *zap.Logger) *PredictionSession {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &PredictionSession{
		gateway: gateway,
		logger:  logger,
	}
}

// SelectedProduct returns a copy of the tracked product, or nil when none is
// selected.
func (p *PredictionSession) SelectedProduct() *Product {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selected == nil {
		return nil
	}
	product := *p.selected
	return &product
}

// Forecast returns a copy of the latest committed forecast series.
func (p *PredictionSession) Forecast() []SalesPrediction {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]SalesPrediction(nil), p.forecast...)
}

// OptimalPrice returns the latest committed optimal-price result. Fields are
// nil until a fetch has committed one.
func (p *PredictionSession) OptimalPrice() OptimalPriceResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.optimal
}

// SelectProduct sets the tracked product and fetches both predictions for it
// concurrently. It returns once both fetches have settled; callers that must
// not block run it in their own goroutine. Each slot fails open: a transport
// or decode failure leaves that slot's previous data, and the other slot,
// untouched.
func (p *PredictionSession) SelectProduct(ctx context.Context, product Product) {
	p.mu.Lock()
	p.selected = &product
	p.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		predictions, err := p.gateway.GetForecast(ctx, product.ID, DefaultForecastDays)
		if err != nil {
			p.logger.Warn("forecast fetch failed, keeping previous data",
				zap.Int64("product_id", product.ID), zap.Error(err))
			return
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		if !p.tracking(product.ID) {
			p.logger.Info("discarding forecast for superseded product",
				zap.Int64("product_id", product.ID))
			return
		}
		p.forecast = predictions
	}()

	go func() {
		defer wg.Done()
		result, err := p.gateway.GetOptimalPrice(ctx, product.ID)
		if err != nil {
			p.logger.Warn("optimal price fetch failed, keeping previous data",
				zap.Int64("product_id", product.ID), zap.Error(err))
			return
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		if !p.tracking(product.ID) {
			p.logger.Info("discarding optimal price for superseded product",
				zap.Int64("product_id", product.ID))
			return
		}
		p.optimal = result
	}()

	wg.Wait()
}

// tracking reports whether productID is still the selected product.
// Callers must hold p.mu.
func (p *PredictionSession) tracking(productID int64) bool {
	return p.selected != nil && p.selected.ID == productID
}
