package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos_client/internal/pos"
)

// posHandler holds the client-side sessions and implements the HTTP facade
// the terminal UI polls. All state it exposes is a snapshot of the last
// reconciled backend responses.
type posHandler struct {
	sale        *pos.SaleSession
	predictions *pos.PredictionSession
	catalog     *pos.Catalog
	status      *pos.StoreStatus
	logger      *zap.Logger
}

// NewPOSHandler creates a handler over the given sessions.
func NewPOSHandler(sale *pos.SaleSession, predictions *pos.PredictionSession,
	catalog *pos.Catalog, status *pos.StoreStatus, logger *zap.Logger) *posHandler {
	return &posHandler{
		sale:        sale,
		predictions: predictions,
		catalog:     catalog,
		status:      status,
		logger:      logger,
	}
}

// writeError maps the session error taxonomy onto HTTP statuses:
// precondition violations are the caller's fault, everything else is a
// failed exchange with the backend.
func writeError(ctx *gin.Context, err error) {
	if pos.IsPrecondition(err) {
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}

// handleStartSale handles POST /sale/start.
func (h *posHandler) handleStartSale(ctx *gin.Context) {
	var req struct {
		CustomerID *int64 `json:"customer_id"`
	}
	// An empty body means an anonymous sale.
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
			return
		}
	}

	if err := h.sale.StartNewSale(ctx.Request.Context(), req.CustomerID); err != nil {
		h.logger.Error("failed to start sale", zap.Error(err))
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, h.saleSnapshot())
}

// handleGetSale handles GET /sale.
func (h *posHandler) handleGetSale(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.saleSnapshot())
}

func (h *posHandler) saleSnapshot() gin.H {
	return gin.H{
		"state": h.sale.State().String(),
		"sale":  h.sale.CurrentSale(),
		"items": h.sale.CartItems(),
	}
}

// handleAddItem handles POST /sale/items. The product is resolved through
// the catalog so the session receives the full product snapshot.
func (h *posHandler) handleAddItem(ctx *gin.Context) {
	var req struct {
		ProductID int64 `json:"product_id" binding:"required"`
		Quantity  int   `json:"quantity" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	product, err := h.catalog.Lookup(ctx.Request.Context(), req.ProductID)
	if err != nil {
		h.logger.Warn("unknown product for cart add",
			zap.Int64("product_id", req.ProductID), zap.Error(err))
		ctx.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	if err := h.sale.AddToCart(ctx.Request.Context(), product, req.Quantity); err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, h.saleSnapshot())
}

// handleRefreshSale handles POST /sale/refresh.
func (h *posHandler) handleRefreshSale(ctx *gin.Context) {
	if err := h.sale.RefreshSaleDetails(ctx.Request.Context()); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, h.saleSnapshot())
}

// handleCompleteSale handles POST /sale/complete.
func (h *posHandler) handleCompleteSale(ctx *gin.Context) {
	if err := h.sale.CompleteSale(ctx.Request.Context()); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, h.saleSnapshot())
}

// handleSelectProduct handles POST /predictions/select. It blocks until both
// prediction fetches have settled; whichever slots committed are visible in
// the response.
func (h *posHandler) handleSelectProduct(ctx *gin.Context) {
	var req struct {
		ProductID int64 `json:"product_id" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	product, err := h.catalog.Lookup(ctx.Request.Context(), req.ProductID)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	h.predictions.SelectProduct(ctx.Request.Context(), product)
	ctx.JSON(http.StatusOK, h.predictionSnapshot())
}

// handleGetPredictions handles GET /predictions.
func (h *posHandler) handleGetPredictions(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.predictionSnapshot())
}

func (h *posHandler) predictionSnapshot() gin.H {
	return gin.H{
		"selected_product": h.predictions.SelectedProduct(),
		"forecast":         h.predictions.Forecast(),
		"optimal_price":    h.predictions.OptimalPrice(),
	}
}

// handleListProducts handles GET /products. It refreshes the catalog
// snapshot; on failure the previous snapshot is served, flagged stale.
func (h *posHandler) handleListProducts(ctx *gin.Context) {
	products, err := h.catalog.Refresh(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusOK, gin.H{
			"products": h.catalog.Products(),
			"stale":    true,
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"products": products})
}

// handleCreateProduct handles POST /products.
func (h *posHandler) handleCreateProduct(ctx *gin.Context) {
	var req struct {
		Name          string  `json:"name" binding:"required"`
		SKU           string  `json:"sku" binding:"required"`
		CostPrice     string  `json:"cost_price" binding:"required"`
		BasePrice     string  `json:"base_price" binding:"required"`
		StockQuantity int     `json:"stock_quantity"`
		Description   *string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	costPrice, err := decimal.NewFromString(req.CostPrice)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid cost_price"})
		return
	}
	basePrice, err := decimal.NewFromString(req.BasePrice)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid base_price"})
		return
	}

	created, err := h.catalog.CreateProduct(ctx.Request.Context(), pos.NewProduct{
		Name:          req.Name,
		SKU:           req.SKU,
		CostPrice:     costPrice,
		BasePrice:     basePrice,
		StockQuantity: req.StockQuantity,
		Description:   req.Description,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// handleProfitGroups handles GET /profit-groups.
func (h *posHandler) handleProfitGroups(ctx *gin.Context) {
	groups, err := h.catalog.ProfitGroups(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"profit_groups": groups})
}

// handleStoreStatus handles POST /store-status.
func (h *posHandler) handleStoreStatus(ctx *gin.Context) {
	var req struct {
		VacancyRate *float64 `json:"vacancy_rate"`
		LineLength  *int     `json:"line_length"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	if err := h.status.Report(ctx.Request.Context(), req.VacancyRate, req.LineLength); err != nil {
		writeError(ctx, err)
		return
	}

	vacancy, line := h.status.Last()
	ctx.JSON(http.StatusOK, gin.H{"vacancy_rate": vacancy, "line_length": line})
}
