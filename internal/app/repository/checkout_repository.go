package repository

import (
	"errors"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type CheckoutRepository interface {
	Create(checkout *model.Checkout) error
	FindByID(id string) (*model.Checkout, error)
	MarkPaid(checkout *model.Checkout) error
	ClaimFinalize(id, orderID string) (bool, error)
	AdvanceFinalize(id string, from, to model.FinalizeStep, finalizedAt *time.Time) error
	FindStuckFinalizing(before time.Time) ([]model.Checkout, error)
}

type checkoutRepository struct {
	db *gorm.DB
}

func NewCheckoutRepository(db *gorm.DB) CheckoutRepository {
	return &checkoutRepository{db: db}
}

func (r *checkoutRepository) Create(checkout *model.Checkout) error {
	logger.Debug("Creating checkout in database", map[string]interface{}{
		"user_id":     checkout.UserID,
		"items":       len(checkout.CheckoutItems),
		"total_price": checkout.TotalPrice,
	})

	if err := r.db.Create(checkout).Error; err != nil {
		logger.Error("Failed to create checkout in database", err, map[string]interface{}{
			"user_id": checkout.UserID,
		})
		return err
	}

	logger.Debug("Checkout created in database", map[string]interface{}{
		"checkout_id": checkout.ID,
	})
	return nil
}

func (r *checkoutRepository) FindByID(id string) (*model.Checkout, error) {
	var checkout model.Checkout
	if err := r.db.First(&checkout, "id = ?", id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find checkout by ID in database", err, map[string]interface{}{
				"checkout_id": id,
			})
		}
		return nil, err
	}
	return &checkout, nil
}

// MarkPaid persists the payment fields of checkout
func (r *checkoutRepository) MarkPaid(checkout *model.Checkout) error {
	logger.Debug("Marking checkout paid in database", map[string]interface{}{
		"checkout_id": checkout.ID,
	})

	err := r.db.Model(checkout).
		Select("is_paid", "paid_at", "payment_status", "payment_details", "updated_at").
		Updates(checkout).Error
	if err != nil {
		logger.Error("Failed to mark checkout paid in database", err, map[string]interface{}{
			"checkout_id": checkout.ID,
		})
		return err
	}
	return nil
}

// ClaimFinalize moves an unclaimed checkout into order_pending and reserves
// orderID for it. Only one caller can win the claim.
func (r *checkoutRepository) ClaimFinalize(id, orderID string) (bool, error) {
	res := r.db.Model(&model.Checkout{}).
		Where("id = ? AND finalize_step = ? AND is_finalized = ?", id, string(model.FinalizeStepNone), false).
		Updates(map[string]interface{}{
			"finalize_step": string(model.FinalizeStepOrderPending),
			"order_id":      orderID,
			"updated_at":    time.Now(),
		})
	if res.Error != nil {
		logger.Error("Failed to claim checkout for finalize", res.Error, map[string]interface{}{
			"checkout_id": id,
		})
		return false, res.Error
	}

	logger.Debug("Finalize claim attempted", map[string]interface{}{
		"checkout_id": id,
		"claimed":     res.RowsAffected == 1,
	})
	return res.RowsAffected == 1, nil
}

// AdvanceFinalize moves the checkout from one finalize step to the next.
// A non-nil finalizedAt also flips is_finalized.
func (r *checkoutRepository) AdvanceFinalize(id string, from, to model.FinalizeStep, finalizedAt *time.Time) error {
	updates := map[string]interface{}{
		"finalize_step": string(to),
		"updated_at":    time.Now(),
	}
	if finalizedAt != nil {
		updates["is_finalized"] = true
		updates["finalized_at"] = *finalizedAt
	}

	res := r.db.Model(&model.Checkout{}).
		Where("id = ? AND finalize_step = ?", id, string(from)).
		Updates(updates)
	if res.Error != nil {
		logger.Error("Failed to advance checkout finalize step", res.Error, map[string]interface{}{
			"checkout_id": id,
			"from":        from,
			"to":          to,
		})
		return res.Error
	}
	if res.RowsAffected == 0 {
		logger.Warn("Finalize step already advanced", map[string]interface{}{
			"checkout_id": id,
			"from":        from,
		})
	}
	return nil
}

// FindStuckFinalizing lists checkouts left mid-finalize since before the cutoff
func (r *checkoutRepository) FindStuckFinalizing(before time.Time) ([]model.Checkout, error) {
	var checkouts []model.Checkout
	err := r.db.
		Where("finalize_step IN ?", []string{
			string(model.FinalizeStepOrderPending),
			string(model.FinalizeStepCartPending),
		}).
		Where("updated_at < ?", before).
		Order("updated_at ASC").
		Find(&checkouts).Error
	if err != nil {
		logger.Error("Failed to find stuck checkouts in database", err)
		return nil, err
	}
	return checkouts, nil
}
