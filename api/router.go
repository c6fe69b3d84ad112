package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pos_client/internal/pos"
)

// Gateways bundles the backend ports the facade is wired against. In
// production both are the same HTTP client; tests substitute stubs.
type Gateways struct {
	Sale    pos.Gateway
	Catalog pos.CatalogGateway
}

// InitRoutes builds the sessions over the given gateways and registers all
// facade endpoints on the Gin engine.
func InitRoutes(e *gin.Engine, gw Gateways, logger *zap.Logger) {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	saleSession := pos.NewSaleSession(gw.Sale, logger)
	predictionSession := pos.NewPredictionSession(gw.Sale, logger)
	catalog := pos.NewCatalog(gw.Catalog, logger)
	storeStatus := pos.NewStoreStatus(gw.Catalog, logger)

	h := NewPOSHandler(saleSession, predictionSession, catalog, storeStatus, logger)

	e.POST("/sale/start", h.handleStartSale)
	e.GET("/sale", h.handleGetSale)
	e.POST("/sale/items", h.handleAddItem)
	e.POST("/sale/refresh", h.handleRefreshSale)
	e.POST("/sale/complete", h.handleCompleteSale)

	e.POST("/predictions/select", h.handleSelectProduct)
	e.GET("/predictions", h.handleGetPredictions)

	e.GET("/products", h.handleListProducts)
	e.POST("/products", h.handleCreateProduct)
	e.GET("/profit-groups", h.handleProfitGroups)
	e.POST("/store-status", h.handleStoreStatus)

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
