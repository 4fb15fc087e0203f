package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidCheckoutID    = apperrors.Validation("Invalid checkout ID")
	ErrNoCheckoutItems      = apperrors.Validation("No items in checkout")
	ErrInvalidCheckoutItem  = apperrors.Validation("Every checkout item needs a valid productId, a positive quantity and a non-negative price")
	ErrIncompleteAddress    = apperrors.Validation("Shipping address requires address, city, postalCode and country")
	ErrPaymentMethod        = apperrors.Validation("Payment method is required")
	ErrTotalMismatch        = apperrors.Validation("Total price mismatch")
	ErrCheckoutProductGone  = apperrors.Validation("One or more products are no longer available")
	ErrItemPriceChanged     = apperrors.Validation("Item price does not match the catalog")
	ErrInvalidPaymentStatus = apperrors.Validation("Invalid Payment Status")
	ErrCheckoutNotFound     = apperrors.NotFound("Checkout not found")
	ErrAlreadyFinalized     = apperrors.Conflict("Checkout already finalized")
	ErrCheckoutNotPaid      = apperrors.Conflict("Checkout is not paid")
)

// CreateCheckoutInput is what the client asserts when checkout begins
type CreateCheckoutInput struct {
	Items           model.LineItems
	ShippingAddress model.ShippingAddress
	PaymentMethod   string
	TotalPrice      float64
}

type CheckoutService interface {
	CreateCheckout(userID string, in CreateCheckoutInput) (*model.Checkout, error)
	GetCheckout(userID, checkoutID string) (*model.Checkout, error)
	MarkPaid(userID, checkoutID, paymentStatus string, details map[string]interface{}) (*model.Checkout, error)
	Finalize(userID, checkoutID string) (*model.Order, error)
	RecoverStuckFinalizations(before time.Time) (int, error)
}

type checkoutService struct {
	checkoutRepo   repository.CheckoutRepository
	orderRepo      repository.OrderRepository
	cartRepo       repository.CartRepository
	productRepo    repository.ProductRepository
	totalTolerance decimal.Decimal
}

func NewCheckoutService(
	checkoutRepo repository.CheckoutRepository,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	totalTolerance float64,
) CheckoutService {
	return &checkoutService{
		checkoutRepo:   checkoutRepo,
		orderRepo:      orderRepo,
		cartRepo:       cartRepo,
		productRepo:    productRepo,
		totalTolerance: decimal.NewFromFloat(totalTolerance),
	}
}

// CreateCheckout snapshots the items at catalog prices and persists the
// checkout with a server-computed total. A client total outside the tolerance
// is rejected; a zero client total is taken as "not supplied".
func (s *checkoutService) CreateCheckout(userID string, in CreateCheckoutInput) (*model.Checkout, error) {
	logger.Info("Creating checkout", map[string]interface{}{
		"user_id":      userID,
		"items":        len(in.Items),
		"client_total": in.TotalPrice,
	})

	if len(in.Items) == 0 {
		return nil, ErrNoCheckoutItems
	}
	for _, item := range in.Items {
		if !validID(item.ProductID) || item.Quantity <= 0 || item.Price < 0 {
			return nil, ErrInvalidCheckoutItem
		}
	}
	if !in.ShippingAddress.Complete() {
		return nil, ErrIncompleteAddress
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return nil, ErrPaymentMethod
	}

	items, err := s.priceItems(userID, in.Items)
	if err != nil {
		return nil, err
	}
	total := items.Total()
	if in.TotalPrice != 0 {
		diff := decimal.NewFromFloat(in.TotalPrice).Sub(decimal.NewFromFloat(total)).Abs()
		if diff.GreaterThan(s.totalTolerance) {
			logger.Warn("Checkout rejected: total price mismatch", map[string]interface{}{
				"user_id":      userID,
				"client_total": in.TotalPrice,
				"server_total": total,
			})
			return nil, ErrTotalMismatch
		}
	}

	checkout := &model.Checkout{
		UserID:          userID,
		CheckoutItems:   items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   strings.TrimSpace(in.PaymentMethod),
		TotalPrice:      total,
		PaymentStatus:   model.PaymentStatusPending,
	}
	if err := s.checkoutRepo.Create(checkout); err != nil {
		return nil, apperrors.Upstream(err, "Failed to create checkout")
	}

	logger.Info("Checkout created", map[string]interface{}{
		"checkout_id": checkout.ID,
		"user_id":     userID,
		"total_price": checkout.TotalPrice,
	})
	return checkout, nil
}

// loadOwned returns the checkout if it exists and belongs to userID. Other
// users' checkouts look like missing ones.
func (s *checkoutService) loadOwned(userID, checkoutID string) (*model.Checkout, error) {
	if !validID(checkoutID) {
		return nil, ErrInvalidCheckoutID
	}

	checkout, err := s.checkoutRepo.FindByID(checkoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCheckoutNotFound
		}
		return nil, apperrors.Upstream(err, "Failed to load checkout")
	}
	if checkout.UserID != userID {
		logger.Warn("Checkout accessed by non-owner", map[string]interface{}{
			"checkout_id": checkoutID,
			"user_id":     userID,
		})
		return nil, ErrCheckoutNotFound
	}
	return checkout, nil
}

func (s *checkoutService) GetCheckout(userID, checkoutID string) (*model.Checkout, error) {
	return s.loadOwned(userID, checkoutID)
}

// MarkPaid accepts only the literal "Paid". Repeating it keeps the first
// paidAt and replaces the payment details.
func (s *checkoutService) MarkPaid(userID, checkoutID, paymentStatus string, details map[string]interface{}) (*model.Checkout, error) {
	if !validID(checkoutID) {
		return nil, ErrInvalidCheckoutID
	}
	if model.PaymentStatus(paymentStatus) != model.PaymentStatusPaid {
		logger.Warn("Payment update rejected: invalid status", map[string]interface{}{
			"checkout_id":    checkoutID,
			"payment_status": paymentStatus,
		})
		return nil, ErrInvalidPaymentStatus
	}

	checkout, err := s.loadOwned(userID, checkoutID)
	if err != nil {
		return nil, err
	}

	if checkout.PaidAt == nil {
		now := time.Now()
		checkout.PaidAt = &now
	}
	checkout.IsPaid = true
	checkout.PaymentStatus = model.PaymentStatusPaid
	checkout.PaymentDetails = details

	if err := s.checkoutRepo.MarkPaid(checkout); err != nil {
		return nil, apperrors.Upstream(err, "Failed to update payment status")
	}

	logger.Info("Checkout marked paid", map[string]interface{}{
		"checkout_id": checkout.ID,
		"user_id":     userID,
	})
	return checkout, nil
}

// Finalize turns a paid checkout into an order. The claim on the checkout
// reserves the order id, so concurrent or repeated calls produce one order.
func (s *checkoutService) Finalize(userID, checkoutID string) (*model.Order, error) {
	checkout, err := s.loadOwned(userID, checkoutID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"checkout_id": checkout.ID,
		"user_id":     userID,
	}

	switch {
	case checkout.IsFinalized || checkout.FinalizeStep != model.FinalizeStepNone:
		logger.Warn("Finalize rejected: already finalized", fields)
		return nil, ErrAlreadyFinalized
	case !checkout.IsPaid:
		logger.Warn("Finalize rejected: checkout not paid", fields)
		return nil, ErrCheckoutNotPaid
	case len(checkout.CheckoutItems) == 0:
		logger.Warn("Finalize rejected: no items", fields)
		return nil, ErrNoCheckoutItems
	}

	orderID := uuid.NewString()
	claimed, err := s.checkoutRepo.ClaimFinalize(checkout.ID, orderID)
	if err != nil {
		return nil, apperrors.Upstream(err, "Failed to finalize checkout")
	}
	if !claimed {
		logger.Warn("Finalize rejected: lost the claim", fields)
		return nil, ErrAlreadyFinalized
	}
	checkout.OrderID = orderID
	checkout.FinalizeStep = model.FinalizeStepOrderPending

	order, err := s.resumeFinalize(checkout)
	if err != nil {
		logger.Error("Finalize interrupted, left for recovery", err, fields)
		return nil, apperrors.Upstream(err, "Failed to finalize checkout")
	}

	logger.Info("Checkout finalized", map[string]interface{}{
		"checkout_id": checkout.ID,
		"order_id":    order.ID,
		"user_id":     userID,
		"total_price": order.TotalPrice,
	})
	return order, nil
}

// resumeFinalize runs the remaining steps from wherever the checkout stopped.
// Each step can be repeated safely.
func (s *checkoutService) resumeFinalize(checkout *model.Checkout) (*model.Order, error) {
	order, err := s.ensureOrder(checkout)
	if err != nil {
		return nil, err
	}

	if checkout.FinalizeStep == model.FinalizeStepOrderPending {
		now := time.Now()
		if err := s.checkoutRepo.AdvanceFinalize(checkout.ID, model.FinalizeStepOrderPending, model.FinalizeStepCartPending, &now); err != nil {
			return nil, err
		}
		checkout.IsFinalized = true
		checkout.FinalizedAt = &now
		checkout.FinalizeStep = model.FinalizeStepCartPending
	}

	if checkout.FinalizeStep == model.FinalizeStepCartPending {
		// every cart of the user goes, including one created after checkout began
		if _, err := s.cartRepo.DeleteByUserID(checkout.UserID); err != nil {
			return nil, err
		}
		if err := s.checkoutRepo.AdvanceFinalize(checkout.ID, model.FinalizeStepCartPending, model.FinalizeStepDone, nil); err != nil {
			return nil, err
		}
		checkout.FinalizeStep = model.FinalizeStepDone
	}

	return order, nil
}

// ensureOrder returns the order reserved for checkout, creating it if the
// earlier attempt never got that far
func (s *checkoutService) ensureOrder(checkout *model.Checkout) (*model.Order, error) {
	existing, err := s.orderRepo.FindByID(checkout.OrderID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	items, err := s.orderItems(checkout.CheckoutItems)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		ID:              checkout.OrderID,
		UserID:          checkout.UserID,
		CheckoutID:      checkout.ID,
		OrderItems:      items,
		ShippingAddress: checkout.ShippingAddress,
		PaymentMethod:   checkout.PaymentMethod,
		TotalPrice:      checkout.TotalPrice,
		IsPaid:          checkout.IsPaid,
		PaidAt:          checkout.PaidAt,
		PaymentStatus:   checkout.PaymentStatus,
		PaymentDetails:  checkout.PaymentDetails,
		Status:          model.OrderStatusProcessing,
	}
	if err := s.orderRepo.Create(order); err != nil {
		// a concurrent recovery may have written it first
		if existing, findErr := s.orderRepo.FindByID(checkout.OrderID); findErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return order, nil
}

func (s *checkoutService) productsByID(items model.LineItems) (map[string]*model.Product, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return byID, nil
}

// priceItems copies the client lines into a checkout snapshot carrying the
// catalog price. Every line must name a catalog product and quote its
// current price; missing name and image come from the catalog.
func (s *checkoutService) priceItems(userID string, in model.LineItems) (model.LineItems, error) {
	byID, err := s.productsByID(in)
	if err != nil {
		return nil, apperrors.Upstream(err, "Failed to load products")
	}

	items := model.CartToCheckoutItems(in)
	for i := range items {
		product, ok := byID[items[i].ProductID]
		if !ok {
			logger.Warn("Checkout rejected: unknown product", map[string]interface{}{
				"user_id":    userID,
				"product_id": items[i].ProductID,
			})
			return nil, ErrCheckoutProductGone
		}
		diff := decimal.NewFromFloat(items[i].Price).Sub(decimal.NewFromFloat(product.Price)).Abs()
		if diff.GreaterThan(s.totalTolerance) {
			logger.Warn("Checkout rejected: item price differs from catalog", map[string]interface{}{
				"user_id":       userID,
				"product_id":    product.ID,
				"client_price":  items[i].Price,
				"catalog_price": product.Price,
			})
			return nil, ErrItemPriceChanged
		}
		items[i].Price = product.Price
		if items[i].Name == "" {
			items[i].Name = product.Name
		}
		if items[i].Image == "" {
			items[i].Image = product.PrimaryImage()
		}
	}
	return items, nil
}

func (s *checkoutService) orderItems(items model.LineItems) (model.LineItems, error) {
	byID, err := s.productsByID(items)
	if err != nil {
		return nil, err
	}
	return model.CheckoutToOrderItems(items, func(productID string) (*model.Product, bool) {
		p, ok := byID[productID]
		return p, ok
	}), nil
}

// RecoverStuckFinalizations resumes checkouts that stopped mid-finalize and
// were last touched before the cutoff. It returns how many completed.
func (s *checkoutService) RecoverStuckFinalizations(before time.Time) (int, error) {
	stuck, err := s.checkoutRepo.FindStuckFinalizing(before)
	if err != nil {
		return 0, apperrors.Upstream(err, "Failed to load stuck checkouts")
	}

	recovered := 0
	for i := range stuck {
		checkout := &stuck[i]
		if _, err := s.resumeFinalize(checkout); err != nil {
			logger.Error("Failed to resume finalize", err, map[string]interface{}{
				"checkout_id": checkout.ID,
				"step":        checkout.FinalizeStep,
			})
			continue
		}
		recovered++
		logger.Info("Resumed interrupted finalize", map[string]interface{}{
			"checkout_id": checkout.ID,
			"order_id":    checkout.OrderID,
		})
	}
	return recovered, nil
}
