package pos

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Product is a catalog entry as last seen from the backend. The client only
// reads snapshots; the catalog service owns creation and refresh.
type Product struct {
	ID            int64           `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	BasePrice     decimal.Decimal `json:"base_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	StockQuantity int             `json:"stock_quantity"`
}

// Profit returns the margin at the current price.
func (p Product) Profit() decimal.Decimal {
	return p.CurrentPrice.Sub(p.CostPrice)
}

// ProfitPercentage returns the margin as a percentage of cost. The second
// return value is false when CostPrice is zero, in which case the percentage
// is undefined and the first value must be ignored.
func (p Product) ProfitPercentage() (decimal.Decimal, bool) {
	if p.CostPrice.IsZero() {
		return decimal.Zero, false
	}
	return p.Profit().Div(p.CostPrice).Mul(oneHundred), true
}

// FormattedPrice renders the current price for display.
func (p Product) FormattedPrice() string {
	return "$" + p.CurrentPrice.StringFixed(2)
}

// FormattedCost renders the cost price for display.
func (p Product) FormattedCost() string {
	return "$" + p.CostPrice.StringFixed(2)
}

// NewProduct carries the fields needed to create a catalog entry.
// Description may be nil and is then omitted from the request entirely.
type NewProduct struct {
	Name          string
	SKU           string
	CostPrice     decimal.Decimal
	BasePrice     decimal.Decimal
	StockQuantity int
	Description   *string
}

// SaleItem is one line of an authoritative sale record. PriceAtSale is the
// price frozen by the backend when the item was added; later changes to
// Product.CurrentPrice never touch it.
type SaleItem struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	PriceAtSale decimal.Decimal `json:"price_at_sale"`
}

// Total returns quantity times the frozen price.
func (i SaleItem) Total() decimal.Decimal {
	return i.PriceAtSale.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// FormattedTotal renders the line total for display.
func (i SaleItem) FormattedTotal() string {
	return "$" + i.Total().StringFixed(2)
}

// Sale is one backend-tracked transaction. TotalAmount is always
// backend-computed; the client never recomputes it from Items, and the two
// may transiently diverge between a server-acknowledged add and the next
// reconciliation fetch. Item order is the server-returned order.
type Sale struct {
	ID          int64           `json:"id"`
	CustomerID  *int64          `json:"customer_id,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Timestamp   time.Time       `json:"timestamp"`
	Items       []SaleItem      `json:"items"`
}

// FormattedTotal renders the authoritative total for display.
func (s Sale) FormattedTotal() string {
	return "$" + s.TotalAmount.StringFixed(2)
}

// SalesPrediction is one forecast point for a product on a given date.
// ID is generated locally when the batch is decoded; it is only a stable key
// within that batch and carries no meaning across fetches.
type SalesPrediction struct {
	ID                uuid.UUID       `json:"id"`
	Date              time.Time       `json:"date"`
	ProductID         int64           `json:"product_id"`
	PredictedQuantity float64         `json:"predicted_quantity"`
	Price             decimal.Decimal `json:"price"`
}

// OptimalPriceResult is the price-optimization answer for a product. Both
// fields are nil when the backend payload did not carry them: zero is a valid
// price and profit, so absent must stay distinguishable from zero.
type OptimalPriceResult struct {
	OptimalPrice    *decimal.Decimal `json:"optimal_price,omitempty"`
	PredictedProfit *decimal.Decimal `json:"predicted_profit,omitempty"`
}

// ProfitGroup is a named set of products with a minimum profit threshold,
// managed entirely by the backend.
type ProfitGroup struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	MinProfitPrice decimal.Decimal `json:"min_profit_price"`
	Products       []Product       `json:"products,omitempty"`
}
