package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

// FinalizeStep marks how far a checkout got through finalize, so a crash
// between the order write and the cart delete can be resumed.
type FinalizeStep string

const (
	FinalizeStepNone         FinalizeStep = ""
	FinalizeStepOrderPending FinalizeStep = "order_pending"
	FinalizeStepCartPending  FinalizeStep = "cart_pending"
	FinalizeStepDone         FinalizeStep = "done"
)

type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Complete reports whether every address field is non-blank
func (a ShippingAddress) Complete() bool {
	for _, field := range []string{a.Address, a.City, a.PostalCode, a.Country} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

type Checkout struct {
	ID              string                 `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID          string                 `gorm:"type:varchar(36);not null;index" json:"user"`
	CheckoutItems   LineItems              `gorm:"serializer:json;type:text" json:"checkoutItems"`
	ShippingAddress ShippingAddress        `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	PaymentMethod   string                 `gorm:"not null" json:"paymentMethod"`
	TotalPrice      float64                `gorm:"not null" json:"totalPrice"`
	IsPaid          bool                   `gorm:"not null;default:false" json:"isPaid"`
	PaidAt          *time.Time             `json:"paidAt,omitempty"`
	PaymentStatus   PaymentStatus          `gorm:"type:varchar(20);not null" json:"paymentStatus"`
	PaymentDetails  map[string]interface{} `gorm:"serializer:json;type:text" json:"paymentDetails,omitempty"`
	IsFinalized     bool                   `gorm:"not null;default:false" json:"isFinalized"`
	FinalizedAt     *time.Time             `json:"finalizedAt,omitempty"`
	FinalizeStep    FinalizeStep           `gorm:"type:varchar(20);index" json:"finalizeStep,omitempty"`
	OrderID         string                 `gorm:"type:varchar(36)" json:"orderId,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

func (Checkout) TableName() string {
	return "checkouts"
}

func (c *Checkout) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.PaymentStatus == "" {
		c.PaymentStatus = PaymentStatusPending
	}
	return nil
}
