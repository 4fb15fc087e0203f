package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

const maxProductPageSize = 100

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type ProductRequest struct {
	Name          string               `json:"name"`
	Description   string               `json:"description"`
	Price         float64              `json:"price"`
	DiscountPrice float64              `json:"discountPrice"`
	CountInStock  int                  `json:"countInStock"`
	SKU           string               `json:"sku"`
	Category      string               `json:"category"`
	Brand         string               `json:"brand"`
	Sizes         []string             `json:"sizes"`
	Colors        []string             `json:"colors"`
	Collections   string               `json:"collections"`
	Material      string               `json:"material"`
	Gender        string               `json:"gender"`
	Images        []model.ProductImage `json:"images"`
	IsFeatured    bool                 `json:"isFeatured"`
	IsPublished   bool                 `json:"isPublished"`
}

func (r ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		DiscountPrice: r.DiscountPrice,
		CountInStock:  r.CountInStock,
		SKU:           r.SKU,
		Category:      r.Category,
		Brand:         r.Brand,
		Sizes:         r.Sizes,
		Colors:        r.Colors,
		Collections:   r.Collections,
		Material:      r.Material,
		Gender:        r.Gender,
		Images:        r.Images,
		IsFeatured:    r.IsFeatured,
		IsPublished:   r.IsPublished,
	}
}

func queryFloat(c *gin.Context, key string) float64 {
	v, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// ListProducts returns published products
// GET /api/v1/products?category=&brand=&gender=&size=&color=&search=&minPrice=&maxPrice=&sortBy=&limit=
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	limit := queryInt(c, "limit")
	if limit > maxProductPageSize {
		limit = maxProductPageSize
	}

	filter := repository.ProductFilter{
		Category: c.Query("category"),
		Brand:    c.Query("brand"),
		Gender:   c.Query("gender"),
		Material: c.Query("material"),
		Size:     c.Query("size"),
		Color:    c.Query("color"),
		Search:   c.Query("search"),
		MinPrice: queryFloat(c, "minPrice"),
		MaxPrice: queryFloat(c, "maxPrice"),
		SortBy:   repository.ProductSort(c.Query("sortBy")),
		Limit:    limit,
		Offset:   queryInt(c, "offset"),
	}

	products, err := ctrl.productService.ListProducts(filter)
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetFeaturedProducts
// GET /api/v1/products/featured
func (ctrl *ProductController) GetFeaturedProducts(c *gin.Context) {
	products, err := ctrl.productService.GetFeaturedProducts(queryInt(c, "limit"))
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetProductByID
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	product, err := ctrl.productService.GetProductByID(c.Param("id"))
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct adds a product to the catalog
// POST /api/v1/admin/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	adminID, _ := middleware.GetUserID(c)

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.BadRequest(c, "Invalid request data")
		return
	}

	product, err := ctrl.productService.CreateProduct(adminID, req.input())
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// UpdateProduct replaces the editable fields of a product
// PUT /api/v1/admin/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product request", map[string]interface{}{
			"product_id": c.Param("id"),
			"error":      err.Error(),
		})
		errors.BadRequest(c, "Invalid request data")
		return
	}

	product, err := ctrl.productService.UpdateProduct(c.Param("id"), req.input())
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct
// DELETE /api/v1/admin/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	if err := ctrl.productService.DeleteProduct(c.Param("id")); err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product removed",
	})
}
