package repository

import (
	"errors"
	"fmt"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductSort string

const (
	ProductSortNewest     ProductSort = "newest"
	ProductSortPriceAsc   ProductSort = "priceAsc"
	ProductSortPriceDesc  ProductSort = "priceDesc"
	ProductSortPopularity ProductSort = "popularity"
)

type ProductFilter struct {
	Category      string
	Brand         string
	Gender        string
	Material      string
	Size          string
	Color         string
	Search        string
	MinPrice      float64
	MaxPrice      float64
	FeaturedOnly  bool
	PublishedOnly bool
	SortBy        ProductSort
	Limit         int
	Offset        int
}

type ProductRepository interface {
	Create(product *model.Product) error
	BulkCreate(products []model.Product, batchSize int) (int64, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, error)
	FindByID(id string) (*model.Product, error)
	FindByIDs(ids []string) ([]model.Product, error)
	Update(product *model.Product) error
	Delete(id string) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name": product.Name,
		"sku":  product.SKU,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
			"sku":  product.SKU,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
	})
	return nil
}

// BulkCreate inserts products in batches, skipping SKUs that already exist.
// It returns how many rows were inserted.
func (r *productRepository) BulkCreate(products []model.Product, batchSize int) (int64, error) {
	if len(products) == 0 {
		return 0, nil
	}

	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sku"}},
		DoNothing: true,
	}).CreateInBatches(products, batchSize)
	if res.Error != nil {
		logger.Error("Failed to bulk create products", res.Error, map[string]interface{}{
			"count": len(products),
		})
		return 0, res.Error
	}

	logger.Info("Products bulk created", map[string]interface{}{
		"requested": len(products),
		"inserted":  res.RowsAffected,
	})
	return res.RowsAffected, nil
}

// whereVariant matches one element of a Variants column. Outside postgres the
// column holds the array literal, where every element is double quoted.
func (r *productRepository) whereVariant(query *gorm.DB, column, value string) *gorm.DB {
	if r.db.Dialector.Name() == "postgres" {
		return query.Where(fmt.Sprintf("? = ANY(%s)", column), value)
	}
	return query.Where(fmt.Sprintf("%s LIKE ?", column), fmt.Sprintf("%%%q%%", value))
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"category": filter.Category,
		"brand":    filter.Brand,
		"search":   filter.Search,
		"sort_by":  filter.SortBy,
	})

	query := r.db.Model(&model.Product{})

	if filter.PublishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if filter.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Brand != "" {
		query = query.Where("brand = ?", filter.Brand)
	}
	if filter.Gender != "" {
		query = query.Where("gender = ?", filter.Gender)
	}
	if filter.Material != "" {
		query = query.Where("material = ?", filter.Material)
	}
	if filter.Size != "" {
		query = r.whereVariant(query, "sizes", filter.Size)
	}
	if filter.Color != "" {
		query = r.whereVariant(query, "colors", filter.Color)
	}
	if filter.MinPrice > 0 {
		query = query.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		query = query.Where("price <= ?", filter.MaxPrice)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	switch filter.SortBy {
	case ProductSortPriceAsc:
		query = query.Order("price ASC")
	case ProductSortPriceDesc:
		query = query.Order("price DESC")
	case ProductSortPopularity:
		query = query.Order("rating DESC").Order("num_reviews DESC")
	default:
		query = query.Order("created_at DESC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, map[string]interface{}{
			"category": filter.Category,
			"search":   filter.Search,
		})
		return nil, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) FindByID(id string) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
				"product_id": id,
			})
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads the products in one query; missing ids are simply absent
func (r *productRepository) FindByIDs(ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	var products []model.Product
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		logger.Error("Failed to find products by IDs in database", err, map[string]interface{}{
			"count": len(ids),
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
	})

	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id string) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	res := r.db.Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		logger.Error("Failed to delete product from database", res.Error, map[string]interface{}{
			"product_id": id,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
