package backend

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pos_client/internal/pos"
)

// timeLayout is the backend's fixed timestamp format: fractional-second UTC
// with microsecond precision and no zone designator.
const timeLayout = "2006-01-02T15:04:05.000000"

// apiTime decodes the backend's timestamp strings.
type apiTime struct {
	time.Time
}

func (t *apiTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(timeLayout, s)
	if err != nil {
		return fmt.Errorf("timestamp %q: %w", s, err)
	}
	t.Time = parsed.UTC()
	return nil
}

// Wire representations. Field names are the backend's snake_case, mapped 1:1
// onto the domain model.

type saleItemDTO struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	PriceAtSale decimal.Decimal `json:"price_at_sale"`
}

type saleDTO struct {
	ID          int64           `json:"id"`
	CustomerID  *int64          `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Timestamp   apiTime         `json:"timestamp"`
	Items       []saleItemDTO   `json:"items"`
}

type productDTO struct {
	ID            int64           `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	BasePrice     decimal.Decimal `json:"base_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	StockQuantity int             `json:"stock_quantity"`
}

type predictionDTO struct {
	Date              apiTime         `json:"date"`
	ProductID         int64           `json:"product_id"`
	PredictedQuantity float64         `json:"predicted_quantity"`
	Price             decimal.Decimal `json:"price"`
}

type optimalPriceDTO struct {
	OptimalPrice    *decimal.Decimal `json:"optimal_price"`
	PredictedProfit *decimal.Decimal `json:"predicted_profit"`
}

type profitGroupDTO struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	MinProfitPrice decimal.Decimal `json:"min_profit_price"`
	Products       []productDTO    `json:"products"`
}

func (d saleItemDTO) domain() pos.SaleItem {
	return pos.SaleItem{
		ID:          d.ID,
		ProductID:   d.ProductID,
		ProductName: d.ProductName,
		Quantity:    d.Quantity,
		PriceAtSale: d.PriceAtSale,
	}
}

func (d saleDTO) domain() *pos.Sale {
	items := make([]pos.SaleItem, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, item.domain())
	}
	return &pos.Sale{
		ID:          d.ID,
		CustomerID:  d.CustomerID,
		TotalAmount: d.TotalAmount,
		Timestamp:   d.Timestamp.Time,
		Items:       items,
	}
}

func (d productDTO) domain() pos.Product {
	return pos.Product{
		ID:            d.ID,
		SKU:           d.SKU,
		Name:          d.Name,
		Description:   d.Description,
		CostPrice:     d.CostPrice,
		BasePrice:     d.BasePrice,
		CurrentPrice:  d.CurrentPrice,
		StockQuantity: d.StockQuantity,
	}
}

// domain assigns the batch-local identity at the moment the point is
// decoded; it is not part of the wire payload.
func (d predictionDTO) domain() pos.SalesPrediction {
	return pos.SalesPrediction{
		ID:                uuid.New(),
		Date:              d.Date.Time,
		ProductID:         d.ProductID,
		PredictedQuantity: d.PredictedQuantity,
		Price:             d.Price,
	}
}

func (d optimalPriceDTO) domain() pos.OptimalPriceResult {
	return pos.OptimalPriceResult{
		OptimalPrice:    d.OptimalPrice,
		PredictedProfit: d.PredictedProfit,
	}
}

func (d profitGroupDTO) domain() pos.ProfitGroup {
	products := make([]pos.Product, 0, len(d.Products))
	for _, p := range d.Products {
		products = append(products, p.domain())
	}
	return pos.ProfitGroup{
		ID:             d.ID,
		Name:           d.Name,
		MinProfitPrice: d.MinProfitPrice,
		Products:       products,
	}
}
