package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/averyhale/meadowcart-backend/api/responses"
	"github.com/averyhale/meadowcart-backend/api/validators"
	"github.com/averyhale/meadowcart-backend/internal/media"
	product "github.com/averyhale/meadowcart-backend/internal/products"
	pkgerrors "github.com/averyhale/meadowcart-backend/pkg/errors"
	"github.com/averyhale/meadowcart-backend/pkg/logger"
)

// CreateProductRequest is the admin payload to create a catalog entry.
type CreateProductRequest struct {
	SKU             string  `json:"sku" validate:"required"`
	Name            string  `json:"name" validate:"required"`
	Slug            *string `json:"slug,omitempty"`
	Description     *string `json:"description,omitempty"`
	Price           string  `json:"price" validate:"required"`
	PrimaryImageURL *string `json:"primary_image_url,omitempty"`
	IsActive        bool    `json:"is_active"`
	IsFeatured      bool    `json:"is_featured"`
}

// UpdateProductRequest carries optional mutations for a catalog entry.
type UpdateProductRequest struct {
	SKU             *string `json:"sku,omitempty"`
	Name            *string `json:"name,omitempty"`
	Slug            *string `json:"slug,omitempty"`
	Description     *string `json:"description,omitempty"`
	Price           *string `json:"price,omitempty"`
	PrimaryImageURL *string `json:"primary_image_url,omitempty"`
	IsActive        *bool   `json:"is_active,omitempty"`
	IsFeatured      *bool   `json:"is_featured,omitempty"`
}

// BulkDeleteProductsRequest names the products to remove.
type BulkDeleteProductsRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

// AttachProductImageRequest registers an uploaded object against a product.
type AttachProductImageRequest struct {
	ObjectKey string `json:"object_key" validate:"required"`
	URL       string `json:"url" validate:"required"`
	Position  int    `json:"position"`
}

// PresignUploadRequest asks for a signed PUT URL for product imagery.
type PresignUploadRequest struct {
	FileName  string `json:"file_name" validate:"required"`
	MimeType  string `json:"mime_type" validate:"required"`
	SizeBytes int64  `json:"size_bytes" validate:"required,min=1"`
}

// AdminProductsList serves the back-office catalog, inactive entries included.
func AdminProductsList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := listFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.AdminListProducts(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminCreateProduct creates a catalog entry.
func AdminCreateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload CreateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := decimal.NewFromString(payload.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal string"))
			return
		}

		dto, err := svc.CreateProduct(r.Context(), product.CreateProductInput{
			SKU:             payload.SKU,
			Name:            payload.Name,
			Slug:            payload.Slug,
			Description:     payload.Description,
			Price:           price,
			PrimaryImageURL: payload.PrimaryImageURL,
			IsActive:        payload.IsActive,
			IsFeatured:      payload.IsFeatured,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// AdminUpdateProduct applies a partial update to a catalog entry.
func AdminUpdateProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload UpdateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := product.UpdateProductInput{
			SKU:             payload.SKU,
			Name:            payload.Name,
			Slug:            payload.Slug,
			Description:     payload.Description,
			PrimaryImageURL: payload.PrimaryImageURL,
			IsActive:        payload.IsActive,
			IsFeatured:      payload.IsFeatured,
		}
		if payload.Price != nil {
			price, err := decimal.NewFromString(*payload.Price)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal string"))
				return
			}
			input.Price = &price
		}

		dto, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// AdminDeleteProduct removes one catalog entry.
func AdminDeleteProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminBulkDeleteProducts removes a batch of catalog entries.
func AdminBulkDeleteProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload BulkDeleteProductsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.BulkDeleteProducts(r.Context(), payload.IDs); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "deleted", "count": len(payload.IDs)})
	}
}

// AdminAttachProductImage registers an uploaded object as a gallery entry.
func AdminAttachProductImage(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload AttachProductImageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.AttachImage(r.Context(), productID, product.AttachImageInput{
			ObjectKey: payload.ObjectKey,
			URL:       payload.URL,
			Position:  payload.Position,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// AdminDetachProductImage removes a gallery entry, promoting the next image
// to primary when the removed one held that spot.
func AdminDetachProductImage(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		imageID, err := uuid.Parse(chi.URLParam(r, "imageId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "image id must be a uuid"))
			return
		}

		dto, err := svc.DetachImage(r.Context(), productID, imageID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// AdminPresignUpload signs a one-off PUT URL for product imagery.
func AdminPresignUpload(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload PresignUploadRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out, err := svc.PresignUpload(r.Context(), media.PresignInput{
			FileName:  payload.FileName,
			MimeType:  payload.MimeType,
			SizeBytes: payload.SizeBytes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func productIDParam(r *http.Request) (uuid.UUID, error) {
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be a uuid")
	}
	return productID, nil
}
