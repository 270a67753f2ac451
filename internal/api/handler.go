package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"petshop-service/internal/models"
	"petshop-service/internal/service"
	"petshop-service/internal/store"
	"petshop-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	saleService   *service.SaleService
	store         *store.Store
	commitTimeout time.Duration
}

// NewHandler creates a new HTTP handler. commitTimeout bounds each sale
// commit sequence; a store call that outlives it fails the attempt.
func NewHandler(saleService *service.SaleService, store *store.Store, commitTimeout time.Duration) *Handler {
	return &Handler{
		saleService:   saleService,
		store:         store,
		commitTimeout: commitTimeout,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/sales", h.createSale)
		v1.GET("/sales", h.listSales)
		v1.GET("/sales/:id", h.getSale)
		v1.PUT("/sales/:id", h.amendSale)
		v1.DELETE("/sales/:id", h.deleteSale)

		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.POST("/products", h.createProduct)
		v1.PUT("/products/:id", h.updateProduct)
		v1.DELETE("/products/:id", h.deleteProduct)
		v1.GET("/products/:id/movements", h.listStockMovements)

		v1.GET("/customers", h.listCustomers)
		v1.GET("/customers/:id", h.getCustomer)
		v1.POST("/customers", h.createCustomer)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// respondError translates a commit failure into an HTTP response that
// names the offending product and shortfall, never a generic message.
func respondError(c *gin.Context, err error) {
	var insufficient *models.InsufficientStockError
	var unknown *models.UnknownProductError
	var invalidQty *models.InvalidQuantityError
	var partial *models.PartialReconciliationError

	switch {
	case errors.Is(err, models.ErrEmptySale):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Sale has no line items",
		})
	case errors.As(err, &invalidQty):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "Invalid line item quantity",
			"quantity": invalidQty.Quantity,
		})
	case errors.As(err, &unknown):
		c.JSON(http.StatusNotFound, gin.H{
			"error":      "Unknown product",
			"product_id": unknown.ProductID,
		})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{
			"error":      "Insufficient stock",
			"product_id": insufficient.ProductID,
			"available":  insufficient.Available,
			"requested":  insufficient.Requested,
		})
	case errors.As(err, &partial):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":         "Reconciliation left stock in an intermediate state",
			"uncompensated": partial.Applied,
			"cause":         partial.Cause.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Commit failed",
			"details": err.Error(),
		})
	}
}

// createSale handles committing a new sale
func (h *Handler) createSale(c *gin.Context) {
	var req service.CreateSaleRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.commitTimeout)
	defer cancel()

	sale, err := h.saleService.CreateSale(ctx, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sale)
}

// listSales handles listing all sales
func (h *Handler) listSales(c *gin.Context) {
	sales, err := h.saleService.ListSales(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list sales",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, sales)
}

// getSale handles get sale by ID
func (h *Handler) getSale(c *gin.Context) {
	saleID, ok := pathID(c)
	if !ok {
		return
	}

	sale, items, err := h.saleService.GetSale(c.Request.Context(), saleID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Sale not found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sale":  sale,
		"items": items,
	})
}

// amendSale handles replacing a sale's line items
func (h *Handler) amendSale(c *gin.Context) {
	saleID, ok := pathID(c)
	if !ok {
		return
	}

	var req service.AmendSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.commitTimeout)
	defer cancel()

	sale, err := h.saleService.AmendSale(ctx, saleID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sale)
}

// deleteSale handles deleting a sale
func (h *Handler) deleteSale(c *gin.Context) {
	saleID, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.commitTimeout)
	defer cancel()

	if err := h.saleService.DeleteSale(ctx, saleID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// listProducts handles listing all products
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.store.GetProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list products",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, products)
}

// getProduct handles get product by ID
func (h *Handler) getProduct(c *gin.Context) {
	productID, ok := pathID(c)
	if !ok {
		return
	}

	product, err := h.store.GetProductByID(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// createProduct handles creating a product
func (h *Handler) createProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	if product.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock must not be negative"})
		return
	}

	if err := h.store.CreateProduct(c.Request.Context(), &product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create product",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// updateProduct handles replacing a product record
func (h *Handler) updateProduct(c *gin.Context) {
	productID, ok := pathID(c)
	if !ok {
		return
	}

	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	if product.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock must not be negative"})
		return
	}
	product.ID = productID

	if err := h.store.UpdateProduct(c.Request.Context(), &product); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// deleteProduct handles deleting a product
func (h *Handler) deleteProduct(c *gin.Context) {
	productID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.store.DeleteProduct(c.Request.Context(), productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete product",
			"details": err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// listStockMovements handles listing a product's stock movement history
func (h *Handler) listStockMovements(c *gin.Context) {
	productID, ok := pathID(c)
	if !ok {
		return
	}

	movements, err := h.store.GetStockMovements(c.Request.Context(), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list stock movements",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, movements)
}

// listCustomers handles listing all customers
func (h *Handler) listCustomers(c *gin.Context) {
	customers, err := h.store.GetCustomers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to list customers",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, customers)
}

// getCustomer handles get customer by ID
func (h *Handler) getCustomer(c *gin.Context) {
	customerID, ok := pathID(c)
	if !ok {
		return
	}

	customer, err := h.store.GetCustomerByID(c.Request.Context(), customerID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Customer not found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, customer)
}

// createCustomer handles creating a customer
func (h *Handler) createCustomer(c *gin.Context) {
	var customer models.Customer
	if err := c.ShouldBindJSON(&customer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.store.CreateCustomer(c.Request.Context(), &customer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create customer",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, customer)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid ID",
		})
		return 0, false
	}
	return id, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
