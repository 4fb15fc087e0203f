package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart belongs to exactly one identity: UserID for signed-in shoppers,
// GuestID for anonymous ones. GuestID is cleared once a user owns the cart.
type Cart struct {
	ID         string    `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID     string    `gorm:"type:varchar(36);index" json:"user,omitempty"`
	GuestID    string    `gorm:"type:varchar(100);index" json:"guestId,omitempty"`
	Products   LineItems `gorm:"serializer:json;type:text" json:"products"`
	TotalPrice float64   `gorm:"not null;default:0" json:"totalPrice"`
	// MergedGuestCarts records guest carts folded into this one that may still exist
	MergedGuestCarts []MergedGuestCart `gorm:"serializer:json;type:text" json:"-"`
	Version          int               `gorm:"not null" json:"version"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// MergedGuestCart is the guest cart version that was absorbed and the lines
// it held at that version.
type MergedGuestCart struct {
	CartID  string    `json:"cartId"`
	Version int       `json:"version"`
	Items   LineItems `json:"items"`
}

func (Cart) TableName() string {
	return "carts"
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Version == 0 {
		c.Version = 1
	}
	return nil
}

// Recalculate derives TotalPrice from the line items
func (c *Cart) Recalculate() {
	c.TotalPrice = c.Products.Total()
}

// AddItem increments the quantity of a matching line or appends a new one
func (c *Cart) AddItem(item LineItem) {
	if i := c.Products.Index(item.Key()); i >= 0 {
		c.Products[i].Quantity += item.Quantity
	} else {
		item.SchemaVersion = LineItemSchemaVersion
		item.Size = NormalizeVariant(item.Size)
		item.Color = NormalizeVariant(item.Color)
		c.Products = append(c.Products, item)
	}
	c.Recalculate()
}

// SetQuantity sets an absolute quantity; quantity <= 0 removes the line.
// It reports false when no line matches key.
func (c *Cart) SetQuantity(key LineItemKey, quantity int) bool {
	i := c.Products.Index(key)
	if i < 0 {
		return false
	}
	if quantity > 0 {
		c.Products[i].Quantity = quantity
	} else {
		c.Products = append(c.Products[:i], c.Products[i+1:]...)
	}
	c.Recalculate()
	return true
}

// RemoveItem drops the line matching key and reports whether one existed
func (c *Cart) RemoveItem(key LineItemKey) bool {
	return c.SetQuantity(key, 0)
}

func (c *Cart) IsEmpty() bool {
	return len(c.Products) == 0
}

func (c *Cart) mergedIndex(guestCartID string) int {
	for i, m := range c.MergedGuestCarts {
		if m.CartID == guestCartID {
			return i
		}
	}
	return -1
}

// AbsorbGuestCart adds whatever guest has gained since the version last
// absorbed into c and records the new version. It reports false when this
// version of guest was already absorbed. Quantities the guest dropped after
// an earlier absorb stay in c.
func (c *Cart) AbsorbGuestCart(guest *Cart) bool {
	i := c.mergedIndex(guest.ID)
	var absorbed LineItems
	if i >= 0 {
		if c.MergedGuestCarts[i].Version >= guest.Version {
			return false
		}
		absorbed = c.MergedGuestCarts[i].Items
	}

	for _, item := range guest.Products {
		already := 0
		if j := absorbed.Index(item.Key()); j >= 0 {
			already = absorbed[j].Quantity
		}
		if item.Quantity > already {
			item.Quantity -= already
			c.AddItem(item)
		}
	}

	record := MergedGuestCart{
		CartID:  guest.ID,
		Version: guest.Version,
		Items:   append(LineItems(nil), guest.Products...),
	}
	if i >= 0 {
		c.MergedGuestCarts[i] = record
	} else {
		c.MergedGuestCarts = append(c.MergedGuestCarts, record)
	}
	return true
}

// ForgetMergedGuestCarts drops the records gone reports true for and tells
// whether any were dropped
func (c *Cart) ForgetMergedGuestCarts(gone func(guestCartID string) bool) bool {
	kept := c.MergedGuestCarts[:0]
	for _, m := range c.MergedGuestCarts {
		if !gone(m.CartID) {
			kept = append(kept, m)
		}
	}
	dropped := len(kept) != len(c.MergedGuestCarts)
	c.MergedGuestCarts = kept
	return dropped
}
