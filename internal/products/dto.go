package product

import (
	"time"

	"github.com/averyhale/meadowcart-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO is the catalog payload returned to clients.
type ProductDTO struct {
	ID              uuid.UUID         `json:"id"`
	Slug            string            `json:"slug"`
	SKU             string            `json:"sku"`
	Name            string            `json:"name"`
	Description     *string           `json:"description,omitempty"`
	Price           decimal.Decimal   `json:"price"`
	PrimaryImageURL *string           `json:"primary_image_url,omitempty"`
	IsActive        bool              `json:"is_active"`
	IsFeatured      bool              `json:"is_featured"`
	Images          []ProductImageDTO `json:"images,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ProductImageDTO captures one gallery entry.
type ProductImageDTO struct {
	ID        uuid.UUID `json:"id"`
	URL       string    `json:"url"`
	ObjectKey string    `json:"object_key"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductListResult bundles a page of products.
type ProductListResult struct {
	Products []ProductDTO `json:"products"`
	Total    int64        `json:"total"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	dto := &ProductDTO{
		ID:              product.ID,
		Slug:            product.Slug,
		SKU:             product.SKU,
		Name:            product.Name,
		Description:     product.Description,
		Price:           product.Price,
		PrimaryImageURL: product.PrimaryImageURL,
		IsActive:        product.IsActive,
		IsFeatured:      product.IsFeatured,
		CreatedAt:       product.CreatedAt,
		UpdatedAt:       product.UpdatedAt,
	}

	if len(product.Images) > 0 {
		dto.Images = make([]ProductImageDTO, len(product.Images))
		for i, img := range product.Images {
			dto.Images[i] = ProductImageDTO{
				ID:        img.ID,
				URL:       img.URL,
				ObjectKey: img.ObjectKey,
				Position:  img.Position,
				CreatedAt: img.CreatedAt,
			}
		}
	}
	return dto
}
