// internal/interfaces/http/handlers/catalog.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/branch"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/coupon"
	"github.com/KoS9999/DrinkUp-MobileApp-sub000/internal/domain/product"
)

// CatalogHandler serves the public menu: products, toppings, categories,
// branches and coupon lookup
type CatalogHandler struct {
	productService *product.Service
	branchService  *branch.Service
	couponService  *coupon.Service
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(productService *product.Service, branchService *branch.Service, couponService *coupon.Service) *CatalogHandler {
	return &CatalogHandler{
		productService: productService,
		branchService:  branchService,
		couponService:  couponService,
	}
}

// GetProducts handles GET /products
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	var req product.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	resp, err := h.productService.GetProducts(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    resp,
	})
}

// GetProduct handles GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	prod, err := h.productService.GetProduct(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    prod,
	})
}

// GetToppings handles GET /toppings
func (h *CatalogHandler) GetToppings(c *gin.Context) {
	toppings, err := h.productService.GetToppings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve toppings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Toppings retrieved successfully",
		"data":    toppings,
	})
}

// GetCategories handles GET /categories
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.productService.GetCategories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Categories retrieved successfully",
		"data":    categories,
	})
}

// GetBranches handles GET /branches
func (h *CatalogHandler) GetBranches(c *gin.Context) {
	branches, err := h.branchService.GetBranches()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve branches"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Branches retrieved successfully",
		"data":    branches,
	})
}

// GetCoupon handles GET /coupons/:code
func (h *CatalogHandler) GetCoupon(c *gin.Context) {
	code := c.Param("code")

	cpn, err := h.couponService.GetByCode(code)
	if err != nil {
		if errors.Is(err, coupon.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Coupon not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve coupon"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon retrieved successfully",
		"data":    cpn,
	})
}

// parseIDParam parses a numeric path parameter
func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
