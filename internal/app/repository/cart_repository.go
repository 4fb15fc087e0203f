package repository

import (
	"errors"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// ErrStaleCart means the cart changed between read and write
var ErrStaleCart = errors.New("cart was modified concurrently")

var cartColumns = []string{"user_id", "guest_id", "products", "total_price", "merged_guest_carts", "version", "updated_at"}

type CartRepository interface {
	Create(cart *model.Cart) error
	FindByID(id string) (*model.Cart, error)
	FindByUserID(userID string) (*model.Cart, error)
	FindByGuestID(guestID string) (*model.Cart, error)
	Save(cart *model.Cart) error
	Delete(cart *model.Cart) error
	DeleteByUserID(userID string) (int64, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Create(cart *model.Cart) error {
	logger.Debug("Creating cart in database", map[string]interface{}{
		"user_id":  cart.UserID,
		"guest_id": cart.GuestID,
		"items":    len(cart.Products),
	})

	if err := r.db.Create(cart).Error; err != nil {
		logger.Error("Failed to create cart in database", err, map[string]interface{}{
			"user_id":  cart.UserID,
			"guest_id": cart.GuestID,
		})
		return err
	}

	logger.Debug("Cart created in database", map[string]interface{}{
		"cart_id": cart.ID,
	})
	return nil
}

func (r *cartRepository) FindByID(id string) (*model.Cart, error) {
	var cart model.Cart
	if err := r.db.First(&cart, "id = ?", id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find cart by ID in database", err, map[string]interface{}{
				"cart_id": id,
			})
		}
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) FindByUserID(userID string) (*model.Cart, error) {
	return r.findOne("user_id = ?", userID)
}

func (r *cartRepository) FindByGuestID(guestID string) (*model.Cart, error) {
	return r.findOne("guest_id = ?", guestID)
}

// findOne returns the oldest matching cart. A user can briefly own two carts
// after a concurrent lazy create; the oldest one is treated as canonical.
func (r *cartRepository) findOne(query string, arg string) (*model.Cart, error) {
	logger.Debug("Finding cart in database", map[string]interface{}{
		"query": query,
		"arg":   arg,
	})

	var cart model.Cart
	err := r.db.Where(query, arg).Order("created_at ASC").First(&cart).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find cart in database", err, map[string]interface{}{
				"query": query,
				"arg":   arg,
			})
		}
		return nil, err
	}

	logger.Debug("Cart found in database", map[string]interface{}{
		"cart_id": cart.ID,
		"version": cart.Version,
	})
	return &cart, nil
}

// Save writes the cart only if nobody else wrote it since it was read,
// bumping Version on success and returning ErrStaleCart otherwise.
func (r *cartRepository) Save(cart *model.Cart) error {
	prev := cart.Version
	cart.Version = prev + 1

	logger.Debug("Saving cart in database", map[string]interface{}{
		"cart_id":     cart.ID,
		"version":     prev,
		"items":       len(cart.Products),
		"total_price": cart.TotalPrice,
	})

	res := r.db.Model(cart).Where("version = ?", prev).Select(cartColumns).Updates(cart)
	if res.Error != nil {
		cart.Version = prev
		logger.Error("Failed to save cart in database", res.Error, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		cart.Version = prev
		logger.Warn("Stale cart write rejected", map[string]interface{}{
			"cart_id": cart.ID,
			"version": prev,
		})
		return ErrStaleCart
	}
	return nil
}

// Delete removes the cart document if it is still at the version that was read
func (r *cartRepository) Delete(cart *model.Cart) error {
	logger.Debug("Deleting cart from database", map[string]interface{}{
		"cart_id": cart.ID,
		"version": cart.Version,
	})

	res := r.db.Where("id = ? AND version = ?", cart.ID, cart.Version).Delete(&model.Cart{})
	if res.Error != nil {
		logger.Error("Failed to delete cart from database", res.Error, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleCart
	}
	return nil
}

// DeleteByUserID removes every cart owned by the user, regardless of id
func (r *cartRepository) DeleteByUserID(userID string) (int64, error) {
	logger.Debug("Deleting carts by user ID from database", map[string]interface{}{
		"user_id": userID,
	})

	res := r.db.Where("user_id = ?", userID).Delete(&model.Cart{})
	if res.Error != nil {
		logger.Error("Failed to delete carts by user ID from database", res.Error, map[string]interface{}{
			"user_id": userID,
		})
		return 0, res.Error
	}

	logger.Debug("Carts deleted by user ID from database", map[string]interface{}{
		"user_id": userID,
		"deleted": res.RowsAffected,
	})
	return res.RowsAffected, nil
}
