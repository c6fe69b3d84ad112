package pos

import (
	"context"
	"errors"
	"fmt"
)

// Precondition errors. These signal a caller bug, are raised before any
// network call, and are distinct from transport and decode failures.
var (
	// ErrNoActiveSale is returned when a cart operation is invoked without an
	// open sale; item adds require a server-assigned sale identity.
	ErrNoActiveSale = errors.New("no active sale")

	// ErrInvalidQuantity is returned when an item add is requested with a
	// quantity of zero or less.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
)

// IsPrecondition reports whether err belongs to the precondition class.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrNoActiveSale) || errors.Is(err, ErrInvalidQuantity)
}

// TransportError wraps a failed exchange with the backend: connectivity
// problems, timeouts, or an error status in the response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError wraps a malformed or schema-mismatched backend payload.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode failure: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Gateway is the backend contract the sale and prediction sessions rely on.
// It is transport-agnostic; the concrete HTTP client lives in
// internal/backend. Every call suspends until a response or failure, and
// failures are reported as *TransportError or *DecodeError.
type Gateway interface {
	// StartSale asks the backend for a fresh sale record. customerID may be
	// nil and is then omitted from the request.
	StartSale(ctx context.Context, customerID *int64) (*Sale, error)

	// AddItem proposes adding quantity units of a product to a sale. The
	// backend returns no payload beyond success or failure; the item list
	// and total must be re-fetched with GetSale afterwards.
	AddItem(ctx context.Context, saleID, productID int64, quantity int) error

	// GetSale fetches the full authoritative sale record.
	GetSale(ctx context.Context, saleID int64) (*Sale, error)

	// GetForecast fetches the demand forecast for a product over the given
	// number of days.
	GetForecast(ctx context.Context, productID int64, days int) ([]SalesPrediction, error)

	// GetOptimalPrice fetches the optimal-price/profit pair for a product.
	// Keys absent from the payload yield nil fields; a payload that is not
	// an object at all is a decode failure.
	GetOptimalPrice(ctx context.Context, productID int64) (OptimalPriceResult, error)
}

// CatalogGateway is the backend contract for the catalog and store-status
// collaborators: product listing and creation, profit groups, and store
// status reporting.
type CatalogGateway interface {
	FetchProducts(ctx context.Context) ([]Product, error)

	FetchProduct(ctx context.Context, productID int64) (Product, error)

	CreateProduct(ctx context.Context, p NewProduct) (Product, error)

	FetchProfitGroups(ctx context.Context) ([]ProfitGroup, error)

	// ReportStoreStatus posts the current floor conditions. Nil parameters
	// are omitted from the request entirely.
	ReportStoreStatus(ctx context.Context, vacancyRate *float64, lineLength *int) error
}
