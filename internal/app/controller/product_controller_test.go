package controller

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProductControllerTest(t *testing.T) *gin.Engine {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	ctrl := NewProductController(service.NewProductService(repository.NewProductRepository(testDB)))

	router := newTestRouter()
	router.GET("/products", ctrl.ListProducts)
	router.GET("/products/featured", ctrl.GetFeaturedProducts)
	router.GET("/products/:id", ctrl.GetProductByID)
	router.POST("/admin/products", ctrl.CreateProduct)
	router.PUT("/admin/products/:id", ctrl.UpdateProduct)
	router.DELETE("/admin/products/:id", ctrl.DeleteProduct)
	return router
}

func createProduct(t *testing.T, router *gin.Engine, req ProductRequest) model.Product {
	w := perform(t, router, admin, http.MethodPost, "/admin/products", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var product model.Product
	decode(t, w, &product)
	return product
}

func TestProductController_CatalogListing(t *testing.T) {
	router := setupProductControllerTest(t)

	createProduct(t, router, ProductRequest{Name: "Cheap Tee", SKU: "T1", Price: 10, Category: "Top Wear", Sizes: []string{"S", "M"}, IsPublished: true})
	createProduct(t, router, ProductRequest{Name: "Pricey Tee", SKU: "T2", Price: 90, Category: "Top Wear", Sizes: []string{"L"}, IsPublished: true, IsFeatured: true})
	createProduct(t, router, ProductRequest{Name: "Draft", SKU: "T3", Price: 50, Category: "Top Wear"})

	var products []model.Product

	w := perform(t, router, anonymous, http.MethodGet, "/products?sortBy=priceDesc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &products)
	require.Len(t, products, 2)
	assert.Equal(t, "T2", products[0].SKU)

	w = perform(t, router, anonymous, http.MethodGet, "/products?size=M&maxPrice=50", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "T1", products[0].SKU)

	w = perform(t, router, anonymous, http.MethodGet, "/products/featured", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &products)
	require.Len(t, products, 1)
	assert.Equal(t, "T2", products[0].SKU)
}

func TestProductController_AdminLifecycle(t *testing.T) {
	router := setupProductControllerTest(t)
	product := createProduct(t, router, ProductRequest{Name: "Jacket", SKU: "J1", Price: 120, IsPublished: true})
	assert.Equal(t, admin.userID, product.CreatedBy)

	w := perform(t, router, admin, http.MethodPost, "/admin/products", ProductRequest{Name: "Copy", SKU: "J1", Price: 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "A product with this SKU already exists", messageOf(t, w))

	w = perform(t, router, admin, http.MethodPost, "/admin/products", ProductRequest{SKU: "J2", Price: 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(t, router, admin, http.MethodPut, "/admin/products/"+product.ID,
		ProductRequest{Name: "Jacket", SKU: "J1", Price: 99.99, IsPublished: true})
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(t, router, anonymous, http.MethodGet, "/products/"+product.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched model.Product
	decode(t, w, &fetched)
	assert.Equal(t, 99.99, fetched.Price)

	w = perform(t, router, admin, http.MethodDelete, "/admin/products/"+product.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(t, router, anonymous, http.MethodGet, "/products/"+product.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = perform(t, router, anonymous, http.MethodGet, "/products/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
