package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address is a shipping address saved to a user's address book
type Address struct {
	ID         string         `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID     string         `gorm:"type:varchar(36);not null;index" json:"user"`
	Label      string         `gorm:"size:100" json:"label"`
	Address    string         `gorm:"type:text;not null" json:"address"`
	City       string         `gorm:"size:100;not null" json:"city"`
	PostalCode string         `gorm:"size:20;not null" json:"postalCode"`
	Country    string         `gorm:"size:100;not null" json:"country"`
	IsDefault  bool           `gorm:"default:false" json:"isDefault"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Address) TableName() string {
	return "addresses"
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// ShippingAddress is the snapshot copied onto a checkout
func (a *Address) ShippingAddress() ShippingAddress {
	return ShippingAddress{
		Address:    a.Address,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}
