package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus is the single status vocabulary for orders
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusCompleted  OrderStatus = "completed"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusCompleted,
}

func (s OrderStatus) Valid() bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Order is the permanent receipt produced by finalizing a paid checkout.
// Only status and delivery fields change after creation.
type Order struct {
	ID              string                 `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID          string                 `gorm:"type:varchar(36);not null;index" json:"user"`
	CheckoutID      string                 `gorm:"type:varchar(36);uniqueIndex" json:"checkoutId"`
	OrderItems      LineItems              `gorm:"serializer:json;type:text" json:"orderItems"`
	ShippingAddress ShippingAddress        `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	PaymentMethod   string                 `gorm:"not null" json:"paymentMethod"`
	TotalPrice      float64                `gorm:"not null" json:"totalPrice"`
	IsPaid          bool                   `gorm:"not null;default:false" json:"isPaid"`
	PaidAt          *time.Time             `json:"paidAt,omitempty"`
	PaymentStatus   PaymentStatus          `gorm:"type:varchar(20)" json:"paymentStatus"`
	PaymentDetails  map[string]interface{} `gorm:"serializer:json;type:text" json:"paymentDetails,omitempty"`
	IsDelivered     bool                   `gorm:"not null;default:false" json:"isDelivered"`
	DeliveredAt     *time.Time             `json:"deliveredAt,omitempty"`
	Status          OrderStatus            `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = OrderStatusProcessing
	}
	return nil
}
