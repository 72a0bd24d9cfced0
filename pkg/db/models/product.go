package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents one storefront listing.
type Product struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Slug            string          `gorm:"column:slug;not null;uniqueIndex"`
	SKU             string          `gorm:"column:sku;not null"`
	Name            string          `gorm:"column:name;not null"`
	Description     *string         `gorm:"column:description"`
	Price           decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	PrimaryImageURL *string         `gorm:"column:primary_image_url"`
	IsActive        bool            `gorm:"column:is_active;not null;default:true"`
	IsFeatured      bool            `gorm:"column:is_featured;not null;default:false"`
	Images          []ProductImage  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }
