package service

import (
	"errors"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

const defaultFeaturedLimit = 8

var (
	ErrProductNotFound     = apperrors.NotFound("Product not found")
	ErrInvalidProductInput = apperrors.Validation("Product name, SKU and a non-negative price are required")
	ErrDuplicateSKU        = apperrors.Validation("A product with this SKU already exists")
)

// ProductInput is the editable part of a catalog product
type ProductInput struct {
	Name          string
	Description   string
	Price         float64
	DiscountPrice float64
	CountInStock  int
	SKU           string
	Category      string
	Brand         string
	Sizes         []string
	Colors        []string
	Collections   string
	Material      string
	Gender        string
	Images        []model.ProductImage
	IsFeatured    bool
	IsPublished   bool
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.SKU) == "" ||
		in.Price < 0 || in.DiscountPrice < 0 || in.CountInStock < 0 {
		return ErrInvalidProductInput
	}
	return nil
}

func (in ProductInput) apply(p *model.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price
	p.DiscountPrice = in.DiscountPrice
	p.CountInStock = in.CountInStock
	p.SKU = strings.TrimSpace(in.SKU)
	p.Category = in.Category
	p.Brand = in.Brand
	p.Sizes = in.Sizes
	p.Colors = in.Colors
	p.Collections = in.Collections
	p.Material = in.Material
	p.Gender = in.Gender
	p.Images = in.Images
	p.IsFeatured = in.IsFeatured
	p.IsPublished = in.IsPublished
}

type ProductService interface {
	ListProducts(filter repository.ProductFilter) ([]model.Product, error)
	GetFeaturedProducts(limit int) ([]model.Product, error)
	GetProductByID(id string) (*model.Product, error)
	CreateProduct(adminID string, in ProductInput) (*model.Product, error)
	UpdateProduct(id string, in ProductInput) (*model.Product, error)
	DeleteProduct(id string) error
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

// ListProducts serves the storefront, so unpublished products never show
func (s *productService) ListProducts(filter repository.ProductFilter) ([]model.Product, error) {
	filter.PublishedOnly = true
	products, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		return nil, apperrors.Upstream(err, "Failed to load products")
	}
	return products, nil
}

func (s *productService) GetFeaturedProducts(limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}
	return s.ListProducts(repository.ProductFilter{
		FeaturedOnly: true,
		SortBy:       repository.ProductSortNewest,
		Limit:        limit,
	})
}

func (s *productService) GetProductByID(id string) (*model.Product, error) {
	if !validID(id) {
		return nil, ErrInvalidProductID
	}

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, apperrors.Upstream(err, "Failed to load product")
	}
	return product, nil
}

func (s *productService) CreateProduct(adminID string, in ProductInput) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product := &model.Product{CreatedBy: adminID}
	in.apply(product)

	if err := s.productRepo.Create(product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return nil, ErrDuplicateSKU
		}
		return nil, apperrors.Upstream(err, "Failed to create product")
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"sku":        product.SKU,
		"admin_id":   adminID,
	})
	return product, nil
}

func (s *productService) UpdateProduct(id string, in ProductInput) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}
	in.apply(product)

	if err := s.productRepo.Update(product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return nil, ErrDuplicateSKU
		}
		return nil, apperrors.Upstream(err, "Failed to update product")
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": product.ID,
	})
	return product, nil
}

func (s *productService) DeleteProduct(id string) error {
	if !validID(id) {
		return ErrInvalidProductID
	}

	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return apperrors.Upstream(err, "Failed to delete product")
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

// isUniqueViolation catches duplicate keys from drivers that gorm does not
// translate without TranslateError
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
