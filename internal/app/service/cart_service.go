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

var (
	ErrInvalidProductID   = apperrors.Validation("Invalid product ID")
	ErrVariantRequired    = apperrors.Validation("Size and color are required")
	ErrInvalidQuantity    = apperrors.Validation("Quantity must be greater than zero")
	ErrGuestIDRequired    = apperrors.Validation("guestId is required")
	ErrCartNotFound       = apperrors.NotFound("Cart not found")
	ErrCartItemNotFound   = apperrors.NotFound("Product not found in cart")
	ErrCartBusy           = apperrors.Busy("Cart was modified concurrently, please retry")
	errCartStorageFailure = "Failed to update cart"
)

// CartItemInput identifies a line by product and variant. Quantity is
// ignored by RemoveItem.
type CartItemInput struct {
	ProductID string
	Quantity  int
	Size      string
	Color     string
}

func (in CartItemInput) key() model.LineItemKey {
	return model.NewLineItemKey(in.ProductID, in.Size, in.Color)
}

func (in CartItemInput) validate() error {
	if !validID(in.ProductID) {
		return ErrInvalidProductID
	}
	if strings.TrimSpace(in.Size) == "" || strings.TrimSpace(in.Color) == "" {
		return ErrVariantRequired
	}
	return nil
}

type CartService interface {
	GetCart(id Identity) (*model.Cart, error)
	AddItem(id Identity, in CartItemInput) (*model.Cart, bool, error)
	UpdateItem(id Identity, in CartItemInput) (*model.Cart, error)
	RemoveItem(id Identity, in CartItemInput) (*model.Cart, error)
	ClearCart(id Identity) error
	MergeGuestCart(userID, guestID string) (*model.Cart, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	maxRetries  int
}

func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	maxRetries int,
) CartService {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		maxRetries:  maxRetries,
	}
}

func (s *cartService) findCart(id Identity) (*model.Cart, error) {
	var (
		cart *model.Cart
		err  error
	)
	if id.IsUser() {
		cart, err = s.cartRepo.FindByUserID(id.UserID)
	} else {
		cart, err = s.cartRepo.FindByGuestID(id.GuestID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, apperrors.Upstream(err, "Failed to load cart")
	}
	return cart, nil
}

func (s *cartService) GetCart(id Identity) (*model.Cart, error) {
	logger.Debug("Fetching cart", id.LogFields())

	cart, err := s.findCart(id)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem increments a matching line or appends a new one, creating the
// cart on first use. The bool reports whether a cart was created.
func (s *cartService) AddItem(id Identity, in CartItemInput) (*model.Cart, bool, error) {
	fields := id.LogFields()
	fields["product_id"] = in.ProductID
	fields["quantity"] = in.Quantity
	logger.Info("Adding item to cart", fields)

	if err := in.validate(); err != nil {
		return nil, false, err
	}
	if in.Quantity <= 0 {
		return nil, false, ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(in.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: product not found", fields)
			return nil, false, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, fields)
		return nil, false, apperrors.Upstream(err, "Failed to load product")
	}

	item := model.LineItem{
		ProductID: product.ID,
		Name:      product.Name,
		Image:     product.PrimaryImage(),
		Price:     product.Price,
		Size:      in.Size,
		Color:     in.Color,
		Quantity:  in.Quantity,
	}

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		cart, err := s.findCart(id)
		if errors.Is(err, ErrCartNotFound) {
			cart = &model.Cart{UserID: id.UserID, GuestID: id.GuestID}
			cart.AddItem(item)
			if err := s.cartRepo.Create(cart); err != nil {
				logger.Error("Failed to create cart", err, fields)
				return nil, false, apperrors.Upstream(err, errCartStorageFailure)
			}
			logger.Info("Cart created", map[string]interface{}{
				"cart_id":     cart.ID,
				"total_price": cart.TotalPrice,
			})
			return cart, true, nil
		}
		if err != nil {
			return nil, false, err
		}

		cart.AddItem(item)
		err = s.cartRepo.Save(cart)
		if errors.Is(err, repository.ErrStaleCart) {
			continue
		}
		if err != nil {
			logger.Error("Failed to save cart", err, fields)
			return nil, false, apperrors.Upstream(err, errCartStorageFailure)
		}

		logger.Info("Item added to cart", map[string]interface{}{
			"cart_id":     cart.ID,
			"items":       len(cart.Products),
			"total_price": cart.TotalPrice,
		})
		return cart, false, nil
	}

	logger.Warn("Giving up on contended cart", fields)
	return nil, false, ErrCartBusy
}

// UpdateItem sets an absolute quantity; zero or less removes the line
func (s *cartService) UpdateItem(id Identity, in CartItemInput) (*model.Cart, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.mutate(id, "update", func(cart *model.Cart) error {
		if !cart.SetQuantity(in.key(), in.Quantity) {
			return ErrCartItemNotFound
		}
		return nil
	})
}

// RemoveItem drops one line. A nil cart with a nil error means the cart
// became empty and was deleted.
func (s *cartService) RemoveItem(id Identity, in CartItemInput) (*model.Cart, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.mutate(id, "remove", func(cart *model.Cart) error {
		if !cart.RemoveItem(in.key()) {
			return ErrCartItemNotFound
		}
		return nil
	})
}

// ClearCart removes the lines one at a time. A failure part way through
// leaves the remaining lines in place.
func (s *cartService) ClearCart(id Identity) error {
	cart, err := s.findCart(id)
	if err != nil {
		return err
	}

	logger.Info("Clearing cart", map[string]interface{}{
		"cart_id": cart.ID,
		"items":   len(cart.Products),
	})

	for _, item := range cart.Products {
		in := CartItemInput{ProductID: item.ProductID, Size: item.Size, Color: item.Color}
		if _, err := s.mutate(id, "clear", func(c *model.Cart) error {
			c.RemoveItem(in.key())
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// mutate applies fn to a fresh copy of the cart and writes it back, retrying
// on version conflicts. An emptied cart is deleted and nil is returned.
func (s *cartService) mutate(id Identity, op string, fn func(cart *model.Cart) error) (*model.Cart, error) {
	fields := id.LogFields()
	fields["op"] = op

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		cart, err := s.findCart(id)
		if err != nil {
			return nil, err
		}
		if err := fn(cart); err != nil {
			logger.Warn("Cart mutation rejected", fields)
			return nil, err
		}

		if cart.IsEmpty() {
			err = s.cartRepo.Delete(cart)
		} else {
			err = s.cartRepo.Save(cart)
		}
		if errors.Is(err, repository.ErrStaleCart) {
			logger.Debug("Retrying stale cart write", map[string]interface{}{
				"cart_id": cart.ID,
				"attempt": attempt + 1,
			})
			continue
		}
		if err != nil {
			logger.Error("Failed to write cart", err, fields)
			return nil, apperrors.Upstream(err, errCartStorageFailure)
		}

		if cart.IsEmpty() {
			logger.Info("Cart deleted after last item removed", map[string]interface{}{
				"cart_id": cart.ID,
			})
			return nil, nil
		}
		return cart, nil
	}

	logger.Warn("Giving up on contended cart", fields)
	return nil, ErrCartBusy
}

// MergeGuestCart folds the guest cart into the user's cart after login.
// Absent or empty guest carts leave the user cart untouched.
func (s *cartService) MergeGuestCart(userID, guestID string) (*model.Cart, error) {
	guestID = strings.TrimSpace(guestID)
	if guestID == "" {
		return nil, ErrGuestIDRequired
	}
	fields := map[string]interface{}{
		"user_id":  userID,
		"guest_id": guestID,
	}
	logger.Info("Merging guest cart", fields)

	userIdentity := Identity{UserID: userID}

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		guestCart, err := s.findCart(Identity{GuestID: guestID})
		if err != nil && !errors.Is(err, ErrCartNotFound) {
			return nil, err
		}
		userCart, userErr := s.findCart(userIdentity)
		if userErr != nil && !errors.Is(userErr, ErrCartNotFound) {
			return nil, userErr
		}

		if guestCart == nil || guestCart.IsEmpty() {
			logger.Debug("Nothing to merge", fields)
			return userCart, nil
		}

		if userCart == nil {
			guestCart.UserID = userID
			guestCart.GuestID = ""
			err = s.cartRepo.Save(guestCart)
			if errors.Is(err, repository.ErrStaleCart) {
				continue
			}
			if err != nil {
				logger.Error("Failed to reassign guest cart", err, fields)
				return nil, apperrors.Upstream(err, "Failed to merge cart")
			}
			logger.Info("Guest cart reassigned to user", map[string]interface{}{
				"cart_id": guestCart.ID,
				"user_id": userID,
			})
			return guestCart, nil
		}

		if userCart.AbsorbGuestCart(guestCart) {
			err = s.cartRepo.Save(userCart)
			if errors.Is(err, repository.ErrStaleCart) {
				continue
			}
			if err != nil {
				logger.Error("Failed to save merged cart", err, fields)
				return nil, apperrors.Upstream(err, "Failed to merge cart")
			}
		}

		// the user cart holds the guest lines up to this version. A newer guest
		// write makes the delete stale and the next pass absorbs the difference.
		err = s.cartRepo.Delete(guestCart)
		if errors.Is(err, repository.ErrStaleCart) {
			continue
		}
		if err != nil {
			logger.Error("Failed to delete merged guest cart", err, fields)
			return nil, apperrors.Upstream(err, "Failed to merge cart")
		}
		s.pruneMergedGuestCarts(userCart)

		logger.Info("Guest cart merged", map[string]interface{}{
			"cart_id":     userCart.ID,
			"guest_cart":  guestCart.ID,
			"items":       len(userCart.Products),
			"total_price": userCart.TotalPrice,
		})
		return userCart, nil
	}

	logger.Warn("Giving up on contended merge", fields)
	return nil, ErrCartBusy
}

// pruneMergedGuestCarts drops merge records whose guest cart no longer
// exists. Losing the write race leaves them for the next merge.
func (s *cartService) pruneMergedGuestCarts(cart *model.Cart) {
	pruned := cart.ForgetMergedGuestCarts(func(guestCartID string) bool {
		_, err := s.cartRepo.FindByID(guestCartID)
		return errors.Is(err, gorm.ErrRecordNotFound)
	})
	if !pruned {
		return
	}
	if err := s.cartRepo.Save(cart); err != nil {
		logger.Warn("Failed to prune merged guest cart records", map[string]interface{}{
			"cart_id": cart.ID,
			"error":   err.Error(),
		})
	}
}
