// Package backend implements the POS gateway contracts over HTTP against
// the remote backend. Requests carry their parameters as query strings and
// responses are snake_case JSON, matching the backend's API.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	resty "resty.dev/v3"

	"pos_client/internal/pos"
)

// Config holds the backend connection settings, sourced from the
// environment.
type Config struct {
	BaseURL        string `split_words:"true" default:"http://localhost:8000"`
	TimeoutSeconds int    `split_words:"true" default:"10"`
}

// New builds a Client from the config.
func (c *Config) New(logger *zap.Logger) *Client {
	return NewClient(c.BaseURL, time.Duration(c.TimeoutSeconds)*time.Second, logger)
}

// Client talks to the POS backend. It implements pos.Gateway and
// pos.CatalogGateway.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a Client against the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Client{
		http:   resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		logger: logger,
	}
}

// Close releases the underlying HTTP client resources.
func (c *Client) Close() error {
	return c.http.Close()
}

// exchange runs one request and returns the raw response body. Request
// errors and non-2xx statuses become *pos.TransportError.
func (c *Client) exchange(op string, req *resty.Request, method, path string) ([]byte, error) {
	res, err := req.Execute(method, path)
	if err != nil {
		return nil, &pos.TransportError{Op: op, Err: err}
	}
	if res.IsError() {
		c.logger.Warn("backend returned error status",
			zap.String("op", op),
			zap.Int("status", res.StatusCode()))
		return nil, &pos.TransportError{
			Op:  op,
			Err: fmt.Errorf("backend returned %s", res.Status()),
		}
	}
	return res.Bytes(), nil
}

// StartSale implements pos.Gateway.
func (c *Client) StartSale(ctx context.Context, customerID *int64) (*pos.Sale, error) {
	const op = "start sale"

	req := c.http.R().SetContext(ctx)
	if customerID != nil {
		req.SetQueryParam("customer_id", strconv.FormatInt(*customerID, 10))
	}

	body, err := c.exchange(op, req, http.MethodPost, "/sales/")
	if err != nil {
		return nil, err
	}

	var dto saleDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, &pos.DecodeError{Op: op, Err: err}
	}
	return dto.domain(), nil
}

// AddItem implements pos.Gateway. The backend replies with the created line
// item, but only success or failure matters to the caller; the sale is
// re-fetched afterwards for the authoritative view.
func (c *Client) AddItem(ctx context.Context, saleID, productID int64, quantity int) error {
	const op = "add item"

	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("product_id", strconv.FormatInt(productID, 10)).
		SetQueryParam("quantity", strconv.Itoa(quantity))

	path := fmt.Sprintf("/sales/%d/add-item", saleID)
	_, err := c.exchange(op, req, http.MethodPost, path)
	return err
}

// GetSale implements pos.Gateway.
func (c *Client) GetSale(ctx context.Context, saleID int64) (*pos.Sale, error) {
	const op = "get sale"

	body, err := c.exchange(op, c.http.R().SetContext(ctx),
		http.MethodGet, fmt.Sprintf("/sales/%d", saleID))
	if err != nil {
		return nil, err
	}

	var dto saleDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, &pos.DecodeError{Op: op, Err: err}
	}
	return dto.domain(), nil
}

// GetForecast implements pos.Gateway.
func (c *Client) GetForecast(ctx context.Context, productID int64, days int) ([]pos.SalesPrediction, error) {
	const op = "get forecast"

	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("days", strconv.Itoa(days))

	body, err := c.exchange(op, req, http.MethodGet,
		fmt.Sprintf("/prediction/forecast/%d", productID))
	if err != nil {
		return nil, err
	}

	var dtos []predictionDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, &pos.DecodeError{Op: op, Err: err}
	}

	predictions := make([]pos.SalesPrediction, 0, len(dtos))
	for _, dto := range dtos {
		predictions = append(predictions, dto.domain())
	}
	return predictions, nil
}

// GetOptimalPrice implements pos.Gateway. Keys absent from the payload leave
// the corresponding fields nil; a payload that is not a JSON object is a
// decode failure.
func (c *Client) GetOptimalPrice(ctx context.Context, productID int64) (pos.OptimalPriceResult, error) {
	const op = "get optimal price"

	body, err := c.exchange(op, c.http.R().SetContext(ctx),
		http.MethodGet, fmt.Sprintf("/prediction/optimal-price/%d", productID))
	if err != nil {
		return pos.OptimalPriceResult{}, err
	}

	var dto optimalPriceDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return pos.OptimalPriceResult{}, &pos.DecodeError{Op: op, Err: err}
	}
	return dto.domain(), nil
}

// FetchProducts implements pos.CatalogGateway.
func (c *Client) FetchProducts(ctx context.Context) ([]pos.Product, error) {
	const op = "fetch products"

	body, err := c.exchange(op, c.http.R().SetContext(ctx), http.MethodGet, "/products/")
	if err != nil {
		return nil, err
	}

	var dtos []productDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, &pos.DecodeError{Op: op, Err: err}
	}

	products := make([]pos.Product, 0, len(dtos))
	for _, dto := range dtos {
		products = append(products, dto.domain())
	}
	return products, nil
}

// FetchProduct implements pos.CatalogGateway.
func (c *Client) FetchProduct(ctx context.Context, productID int64) (pos.Product, error) {
	const op = "fetch product"

	body, err := c.exchange(op, c.http.R().SetContext(ctx),
		http.MethodGet, fmt.Sprintf("/products/%d", productID))
	if err != nil {
		return pos.Product{}, err
	}

	var dto productDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return pos.Product{}, &pos.DecodeError{Op: op, Err: err}
	}
	return dto.domain(), nil
}

// CreateProduct implements pos.CatalogGateway. The description is omitted
// from the request entirely when absent.
func (c *Client) CreateProduct(ctx context.Context, p pos.NewProduct) (pos.Product, error) {
	const op = "create product"

	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("name", p.Name).
		SetQueryParam("sku", p.SKU).
		SetQueryParam("cost_price", p.CostPrice.String()).
		SetQueryParam("base_price", p.BasePrice.String()).
		SetQueryParam("stock_quantity", strconv.Itoa(p.StockQuantity))
	if p.Description != nil {
		req.SetQueryParam("description", *p.Description)
	}

	body, err := c.exchange(op, req, http.MethodPost, "/products/")
	if err != nil {
		return pos.Product{}, err
	}

	var dto productDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return pos.Product{}, &pos.DecodeError{Op: op, Err: err}
	}
	return dto.domain(), nil
}

// FetchProfitGroups implements pos.CatalogGateway.
func (c *Client) FetchProfitGroups(ctx context.Context) ([]pos.ProfitGroup, error) {
	const op = "fetch profit groups"

	body, err := c.exchange(op, c.http.R().SetContext(ctx), http.MethodGet, "/profit-groups/")
	if err != nil {
		return nil, err
	}

	var dtos []profitGroupDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, &pos.DecodeError{Op: op, Err: err}
	}

	groups := make([]pos.ProfitGroup, 0, len(dtos))
	for _, dto := range dtos {
		groups = append(groups, dto.domain())
	}
	return groups, nil
}

// ReportStoreStatus implements pos.CatalogGateway. Nil parameters are
// omitted from the request entirely.
func (c *Client) ReportStoreStatus(ctx context.Context, vacancyRate *float64, lineLength *int) error {
	const op = "report store status"

	req := c.http.R().SetContext(ctx)
	if vacancyRate != nil {
		req.SetQueryParam("vacancy_rate", strconv.FormatFloat(*vacancyRate, 'f', -1, 64))
	}
	if lineLength != nil {
		req.SetQueryParam("line_length", strconv.Itoa(*lineLength))
	}

	_, err := c.exchange(op, req, http.MethodPost, "/store-status/")
	return err
}
