package pos

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SessionState is the lifecycle state of a SaleSession.
type SessionState int

const (
	StateNoSale SessionState = iota
	StateStarting
	StateOpen
	StateCompleting
)

func (s SessionState) String() string {
	switch s {
	case StateNoSale:
		return "no_sale"
	case StateStarting:
		return "starting"
	case StateOpen:
		return "open"
	case StateCompleting:
		return "completing"
	default:
		return "unknown"
	}
}

// SaleSession owns the lifecycle of exactly one in-progress sale: its
// identity, authoritative item list, and total. Every cart mutation goes
// through the Gateway and is then reconciled by re-fetching the full sale
// record; the cart view is never mutated speculatively, so what the operator
// sees is always exactly what the backend will charge.
//
// All authoritative-state writes are serialized behind the session mutex.
// Gateway calls happen outside the lock, so concurrently in-flight
// reconciliation fetches can complete out of order; commits are gated by a
// monotonically increasing request token so that only the most recently
// issued fetch for the current sale may replace the cart view.
type SaleSession struct {
	gateway Gateway
	logger  *zap.Logger

	mu         sync.Mutex
	state      SessionState
	sale       *Sale
	items      []SaleItem
	issuedSeq  uint64 // last reconciliation token handed out
	appliedSeq uint64 // token of the last committed reconciliation
}

// NewSaleSession creates a session in the NoSale state.
func NewSaleSession(gateway Gateway, logger *zap.Logger) *SaleSession {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &SaleSession{
		gateway: gateway,
		logger:  logger,
		state:   StateNoSale,
	}
}

// State returns the current lifecycle state.
func (s *SaleSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentSale returns a copy of the current authoritative sale record, or
// nil when no sale is open.
func (s *SaleSession) CurrentSale() *Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sale == nil {
		return nil
	}
	sale := *s.sale
	sale.Items = append([]SaleItem(nil), s.sale.Items...)
	return &sale
}

// CartItems returns a copy of the cart view: the item list from the last
// reconciled server response.
func (s *SaleSession) CartItems() []SaleItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SaleItem(nil), s.items...)
}

// TotalAmount returns the authoritative total of the current sale, or zero
// when no sale is open. It is never computed from the item list.
func (s *SaleSession) TotalAmount() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sale == nil {
		return decimal.Zero
	}
	return s.sale.TotalAmount
}

// StartNewSale requests a new sale from the backend and opens it. Valid from
// any state. customerID may be nil. On failure the session is left in
// NoSale with no partial sale created client-side, and any reconciliation
// still in flight for a previous sale is invalidated either way.
func (s *SaleSession) StartNewSale(ctx context.Context, customerID *int64) error {
	s.mu.Lock()
	s.state = StateStarting
	s.mu.Unlock()

	sale, err := s.gateway.StartSale(ctx, customerID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateNoSale
		s.sale = nil
		s.items = nil
		s.logger.Error("failed to start sale", zap.Error(err))
		return err
	}

	s.state = StateOpen
	s.sale = sale
	s.items = append([]SaleItem(nil), sale.Items...)
	// Retire every token issued so far; fetches for the previous sale must
	// not commit into the new one.
	s.appliedSeq = s.issuedSeq
	s.logger.Info("sale started",
		zap.Int64("sale_id", sale.ID),
		zap.Bool("has_customer", customerID != nil))
	return nil
}

// AddToCart proposes adding quantity units of product to the open sale.
// A successful add has no direct effect on the cart view; it triggers a
// reconciliation fetch, and the view updates only when that fetch commits.
// A failed add is dropped with no retry and the visible cart is untouched.
// Returns ErrNoActiveSale or ErrInvalidQuantity, before any network call,
// when invoked out of state.
func (s *SaleSession) AddToCart(ctx context.Context, product Product, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	if s.state != StateOpen || s.sale == nil {
		s.mu.Unlock()
		return ErrNoActiveSale
	}
	saleID := s.sale.ID
	s.mu.Unlock()

	if err := s.gateway.AddItem(ctx, saleID, product.ID, quantity); err != nil {
		s.logger.Warn("add item rejected, cart left unchanged",
			zap.Int64("sale_id", saleID),
			zap.Int64("product_id", product.ID),
			zap.Int("quantity", quantity),
			zap.Error(err))
		return err
	}

	return s.RefreshSaleDetails(ctx)
}

// RefreshSaleDetails re-fetches the full sale record and replaces the
// current sale and cart view atomically. Idempotent and parameterized only
// by the current sale id. A response that has been superseded by a newer
// fetch, or that belongs to a sale no longer current, is discarded.
func (s *SaleSession) RefreshSaleDetails(ctx context.Context) error {
	s.mu.Lock()
	if s.sale == nil {
		s.mu.Unlock()
		return ErrNoActiveSale
	}
	saleID := s.sale.ID
	s.issuedSeq++
	token := s.issuedSeq
	s.mu.Unlock()

	sale, err := s.gateway.GetSale(ctx, saleID)
	if err != nil {
		s.logger.Warn("sale refresh failed, keeping last reconciled view",
			zap.Int64("sale_id", saleID), zap.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token <= s.appliedSeq {
		s.logger.Info("discarding superseded sale refresh",
			zap.Int64("sale_id", saleID),
			zap.Uint64("token", token),
			zap.Uint64("applied", s.appliedSeq))
		return nil
	}
	if s.sale == nil || s.sale.ID != saleID {
		return nil
	}
	s.appliedSeq = token
	s.sale = sale
	s.items = append([]SaleItem(nil), sale.Items...)
	return nil
}

// CompleteSale finishes the open sale. There is no settlement step in this
// client; completing is currently equivalent to starting a fresh sale with
// no customer. Kept as its own method so a real payment flow can replace the
// body without changing callers.
func (s *SaleSession) CompleteSale(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateOpen {
		s.mu.Unlock()
		return ErrNoActiveSale
	}
	s.state = StateCompleting
	s.mu.Unlock()

	return s.StartNewSale(ctx, nil)
}
