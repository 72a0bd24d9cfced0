package product

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/averyhale/meadowcart-backend/internal/cart"
	"github.com/averyhale/meadowcart-backend/pkg/db"
	"github.com/averyhale/meadowcart-backend/pkg/db/models"
	pkgerrors "github.com/averyhale/meadowcart-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes the storefront catalog plus the admin management surface.
type Service interface {
	ListProducts(ctx context.Context, filters ListFilters) (*ProductListResult, error)
	GetProductBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	CartProduct(ctx context.Context, productID uuid.UUID) (*cart.Product, error)

	AdminListProducts(ctx context.Context, filters ListFilters) (*ProductListResult, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	BulkDeleteProducts(ctx context.Context, ids []uuid.UUID) error
	AttachImage(ctx context.Context, productID uuid.UUID, input AttachImageInput) (*ProductDTO, error)
	DetachImage(ctx context.Context, productID, imageID uuid.UUID) (*ProductDTO, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	SKU             string
	Name            string
	Slug            *string
	Description     *string
	Price           decimal.Decimal
	PrimaryImageURL *string
	IsActive        bool
	IsFeatured      bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	SKU             *string
	Name            *string
	Slug            *string
	Description     *string
	Price           *decimal.Decimal
	PrimaryImageURL *string
	IsActive        *bool
	IsFeatured      *bool
}

// AttachImageInput registers an uploaded object as a gallery entry.
type AttachImageInput struct {
	ObjectKey string
	URL       string
	Position  int
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// service implements the product service.
type service struct {
	repo     *Repository
	dbClient txRunner
}

// NewService constructs a product service instance.
func NewService(repo *Repository, dbClient txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// ListProducts returns the public catalog page: active products only.
func (s *service) ListProducts(ctx context.Context, filters ListFilters) (*ProductListResult, error) {
	filters.ActiveOnly = true
	return s.list(ctx, filters)
}

// AdminListProducts returns the back-office view including inactive products.
func (s *service) AdminListProducts(ctx context.Context, filters ListFilters) (*ProductListResult, error) {
	filters.ActiveOnly = false
	return s.list(ctx, filters)
}

func (s *service) list(ctx context.Context, filters ListFilters) (*ProductListResult, error) {
	rows, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	result := &ProductListResult{
		Products: make([]ProductDTO, 0, len(rows)),
		Total:    total,
	}
	for i := range rows {
		result.Products = append(result.Products, *NewProductDTO(&rows[i]))
	}
	return result, nil
}

// GetProductBySlug loads one active product for the storefront detail page.
func (s *service) GetProductBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}

	model, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product by slug")
	}
	if !model.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return NewProductDTO(model), nil
}

// CartProduct resolves an active product into the snapshot the cart captures
// at add time.
func (s *service) CartProduct(ctx context.Context, productID uuid.UUID) (*cart.Product, error) {
	model, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	if !model.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	snapshot := &cart.Product{
		ID:    model.ID.String(),
		Name:  model.Name,
		Price: model.Price,
		SKU:   model.SKU,
	}
	if model.PrimaryImageURL != nil {
		snapshot.ImageURL = *model.PrimaryImageURL
	}
	return snapshot, nil
}

// CreateProduct creates the product, minting a slug from the name when none
// was supplied.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	input.SKU = strings.TrimSpace(input.SKU)
	input.Name = strings.TrimSpace(input.Name)
	if input.SKU == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	slug := Slugify(input.Name)
	if input.Slug != nil {
		slug = Slugify(*input.Slug)
	}
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}

	var created *models.Product
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		taken, err := txRepo.SlugExists(ctx, slug, uuid.Nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check slug")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
		}

		created, err = txRepo.CreateProduct(ctx, &models.Product{
			ID:              uuid.New(),
			Slug:            slug,
			SKU:             input.SKU,
			Name:            input.Name,
			Description:     input.Description,
			Price:           input.Price,
			PrimaryImageURL: input.PrimaryImageURL,
			IsActive:        input.IsActive,
			IsFeatured:      input.IsFeatured,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewProductDTO(created), nil
}

// UpdateProduct applies the provided fields to an existing product.
func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	var updated *models.Product
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		model, err := txRepo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}

		if err := applyUpdate(model, input); err != nil {
			return err
		}

		if input.Slug != nil || input.Name != nil {
			taken, err := txRepo.SlugExists(ctx, model.Slug, model.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check slug")
			}
			if taken {
				return pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
			}
		}

		updated, err = txRepo.UpdateProduct(ctx, model)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewProductDTO(updated), nil
}

// DeleteProduct removes the product and its gallery.
func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	return nil
}

// BulkDeleteProducts removes a batch of products in one transaction.
func (s *service) BulkDeleteProducts(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one product id is required")
	}
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).DeleteProducts(ctx, ids); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: bulk delete products")
		}
		return nil
	})
}

// AttachImage records an uploaded object as a gallery entry, promoting the
// first entry to the product's primary image when none is set.
func (s *service) AttachImage(ctx context.Context, productID uuid.UUID, input AttachImageInput) (*ProductDTO, error) {
	input.ObjectKey = strings.TrimSpace(input.ObjectKey)
	input.URL = strings.TrimSpace(input.URL)
	if input.ObjectKey == "" || input.URL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "object key and url are required")
	}

	var updated *models.Product
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		model, err := txRepo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}

		if _, err := txRepo.AddImage(ctx, &models.ProductImage{
			ID:        uuid.New(),
			ProductID: model.ID,
			ObjectKey: input.ObjectKey,
			URL:       input.URL,
			Position:  input.Position,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product image")
		}

		if model.PrimaryImageURL == nil {
			url := input.URL
			model.PrimaryImageURL = &url
			if _, err := txRepo.UpdateProduct(ctx, model); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update primary image")
			}
		}

		updated, err = txRepo.FindByID(ctx, model.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewProductDTO(updated), nil
}

func (s *service) DetachImage(ctx context.Context, productID, imageID uuid.UUID) (*ProductDTO, error) {
	var updated *models.Product
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		model, err := txRepo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}

		var removed *models.ProductImage
		for i := range model.Images {
			if model.Images[i].ID == imageID {
				removed = &model.Images[i]
				break
			}
		}
		if removed == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product image not found")
		}

		if err := txRepo.DeleteImage(ctx, imageID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product image")
		}

		if model.PrimaryImageURL != nil && *model.PrimaryImageURL == removed.URL {
			model.PrimaryImageURL = nil
			for i := range model.Images {
				if model.Images[i].ID != imageID {
					url := model.Images[i].URL
					model.PrimaryImageURL = &url
					break
				}
			}
			// Saving with the loaded gallery would upsert the row just
			// deleted.
			model.Images = nil
			if _, err := txRepo.UpdateProduct(ctx, model); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update primary image")
			}
		}

		updated, err = txRepo.FindByID(ctx, model.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewProductDTO(updated), nil
}

func applyUpdate(model *models.Product, input UpdateProductInput) error {
	if input.SKU != nil {
		sku := strings.TrimSpace(*input.SKU)
		if sku == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "sku cannot be empty")
		}
		model.SKU = sku
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		model.Name = name
		if input.Slug == nil {
			model.Slug = Slugify(name)
		}
	}
	if input.Slug != nil {
		slug := Slugify(*input.Slug)
		if slug == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "slug cannot be empty")
		}
		model.Slug = slug
	}
	if input.Description != nil {
		model.Description = input.Description
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		model.Price = *input.Price
	}
	if input.PrimaryImageURL != nil {
		model.PrimaryImageURL = input.PrimaryImageURL
	}
	if input.IsActive != nil {
		model.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		model.IsFeatured = *input.IsFeatured
	}
	return nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify normalizes a name into a storefront slug.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
