package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductImage struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

type Product struct {
	ID            string         `gorm:"type:varchar(36);primarykey" json:"id"`
	Name          string         `gorm:"not null" json:"name"`
	Description   string         `gorm:"type:text" json:"description"`
	Price         float64        `gorm:"not null" json:"price"`
	DiscountPrice float64        `json:"discountPrice,omitempty"`
	CountInStock  int            `gorm:"not null;default:0" json:"countInStock"`
	SKU           string         `gorm:"type:varchar(64);uniqueIndex" json:"sku"`
	Category      string         `gorm:"type:varchar(100);index" json:"category"`
	Brand         string         `gorm:"type:varchar(100);index" json:"brand"`
	Sizes         Variants       `json:"sizes"`
	Colors        Variants       `json:"colors"`
	Collections   string         `json:"collections"`
	Material      string         `json:"material"`
	Gender        string         `gorm:"type:varchar(20);index" json:"gender"`
	Images        []ProductImage `gorm:"serializer:json;type:text" json:"images"`
	IsFeatured    bool           `gorm:"default:false" json:"isFeatured"`
	IsPublished   bool           `json:"isPublished"`
	Rating        float64        `json:"rating"`
	NumReviews    int            `json:"numReviews"`
	CreatedBy     string         `gorm:"type:varchar(36)" json:"user,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PrimaryImage is the first image URL, or "" for imageless products
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}
