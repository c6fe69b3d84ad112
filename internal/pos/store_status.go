package pos

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// StoreStatus reports floor conditions (vacancy rate, checkout line length)
// to the backend, which feeds them into its dynamic pricing. The client only
// remembers the last values it reported; the backend never pushes status
// back.
type StoreStatus struct {
	gateway CatalogGateway
	logger  *zap.Logger

	mu          sync.Mutex
	vacancyRate float64
	lineLength  int
}

// NewStoreStatus creates a reporter with zeroed values.
func NewStoreStatus(gateway CatalogGateway, logger *zap.Logger) *StoreStatus {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &StoreStatus{
		gateway: gateway,
		logger:  logger,
	}
}

// Report posts a status update. Nil parameters are omitted from the request
// and leave the locally remembered value untouched.
func (s *StoreStatus) Report(ctx context.Context, vacancyRate *float64, lineLength *int) error {
	if err := s.gateway.ReportStoreStatus(ctx, vacancyRate, lineLength); err != nil {
		s.logger.Warn("store status report failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	if vacancyRate != nil {
		s.vacancyRate = *vacancyRate
	}
	if lineLength != nil {
		s.lineLength = *lineLength
	}
	s.mu.Unlock()

	s.logger.Info("store status reported",
		zap.Float64p("vacancy_rate", vacancyRate),
		zap.Intp("line_length", lineLength))
	return nil
}

// Last returns the most recently reported vacancy rate and line length.
func (s *StoreStatus) Last() (float64, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vacancyRate, s.lineLength
}
