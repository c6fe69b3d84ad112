package pos

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Catalog is the client's read-mostly view of the product list. Refresh
// replaces the snapshot wholesale with whatever the backend returns, the
// same server-wins rule the sale session applies to its cart view.
type Catalog struct {
	gateway CatalogGateway
	logger  *zap.Logger

	mu       sync.Mutex
	products []Product
}

// NewCatalog creates a catalog with an empty snapshot.
func NewCatalog(gateway CatalogGateway, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &Catalog{
		gateway: gateway,
		logger:  logger,
	}
}

// Refresh fetches the product list and replaces the snapshot. On failure the
// previous snapshot is kept.
func (c *Catalog) Refresh(ctx context.Context) ([]Product, error) {
	products, err := c.gateway.FetchProducts(ctx)
	if err != nil {
		c.logger.Warn("catalog refresh failed, keeping previous snapshot", zap.Error(err))
		return nil, err
	}

	c.mu.Lock()
	c.products = products
	c.mu.Unlock()

	c.logger.Info("catalog refreshed", zap.Int("products", len(products)))
	return append([]Product(nil), products...), nil
}

// Products returns a copy of the current snapshot.
func (c *Catalog) Products() []Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Product(nil), c.products...)
}

// Product looks a product up in the snapshot by id.
func (c *Catalog) Product(id int64) (Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Lookup returns the product with the given id, falling back to a direct
// backend fetch when it is not in the snapshot yet.
func (c *Catalog) Lookup(ctx context.Context, id int64) (Product, error) {
	if p, ok := c.Product(id); ok {
		return p, nil
	}
	return c.gateway.FetchProduct(ctx, id)
}

// CreateProduct creates a product on the backend and appends it to the
// snapshot on success.
func (c *Catalog) CreateProduct(ctx context.Context, p NewProduct) (Product, error) {
	created, err := c.gateway.CreateProduct(ctx, p)
	if err != nil {
		c.logger.Error("product creation failed",
			zap.String("sku", p.SKU), zap.Error(err))
		return Product{}, err
	}

	c.mu.Lock()
	c.products = append(c.products, created)
	c.mu.Unlock()

	c.logger.Info("product created",
		zap.Int64("product_id", created.ID), zap.String("sku", created.SKU))
	return created, nil
}

// ProfitGroups fetches the profit groups. The backend owns group membership;
// nothing is cached client-side.
func (c *Catalog) ProfitGroups(ctx context.Context) ([]ProfitGroup, error) {
	return c.gateway.FetchProfitGroups(ctx)
}
