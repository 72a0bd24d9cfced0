package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	product "github.com/averyhale/meadowcart-backend/internal/products"
	pkgerrors "github.com/averyhale/meadowcart-backend/pkg/errors"
)

type stubCatalogService struct {
	product.Service

	result      *product.ProductListResult
	dto         *product.ProductDTO
	err         error
	lastFilters product.ListFilters
	lastSlug    string
}

func (s *stubCatalogService) ListProducts(ctx context.Context, filters product.ListFilters) (*product.ProductListResult, error) {
	s.lastFilters = filters
	return s.result, s.err
}

func (s *stubCatalogService) GetProductBySlug(ctx context.Context, slug string) (*product.ProductDTO, error) {
	s.lastSlug = slug
	return s.dto, s.err
}

func TestProductsListParsesQuery(t *testing.T) {
	t.Parallel()

	svc := &stubCatalogService{result: &product.ProductListResult{
		Products: []product.ProductDTO{{
			ID:    uuid.New(),
			Slug:  "lavender-bundle",
			Name:  "Lavender Bundle",
			Price: decimal.RequireFromString("12.50"),
		}},
		Total: 1,
	}}
	handler := ProductsList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?q=lavender&featured=true&limit=12&offset=24", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastFilters.Query != "lavender" || !svc.lastFilters.FeaturedOnly {
		t.Fatalf("filters not forwarded: %+v", svc.lastFilters)
	}
	if svc.lastFilters.Limit != 12 || svc.lastFilters.Offset != 24 {
		t.Fatalf("paging not forwarded: %+v", svc.lastFilters)
	}

	var envelope struct {
		Data product.ProductListResult `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if envelope.Data.Total != 1 || len(envelope.Data.Products) != 1 {
		t.Fatalf("unexpected list payload: %+v", envelope.Data)
	}
}

func TestProductsListRejectsBadLimit(t *testing.T) {
	t.Parallel()

	svc := &stubCatalogService{}
	handler := ProductsList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=abc", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestProductBySlug(t *testing.T) {
	t.Parallel()

	svc := &stubCatalogService{dto: &product.ProductDTO{
		ID:   uuid.New(),
		Slug: "wildflower-honey",
		Name: "Wildflower Honey",
	}}
	handler := ProductBySlug(svc, nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("slug", "wildflower-honey")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/wildflower-honey", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastSlug != "wildflower-honey" {
		t.Fatalf("slug not forwarded, got %q", svc.lastSlug)
	}
}

func TestProductBySlugNotFound(t *testing.T) {
	t.Parallel()

	svc := &stubCatalogService{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	handler := ProductBySlug(svc, nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("slug", "gone")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/gone", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
