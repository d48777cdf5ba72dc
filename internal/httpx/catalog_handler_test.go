package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketcat/storefront-api/internal/catalog"
)

type stubCatalogRepo struct {
	vendors []catalog.Vendor
	count   int
	err     error
}

func (s *stubCatalogRepo) ListActiveVendors(context.Context) ([]catalog.Vendor, error) {
	return s.vendors, s.err
}

func (s *stubCatalogRepo) ListActiveCategories(context.Context) ([]catalog.Category, error) {
	return nil, s.err
}

func (s *stubCatalogRepo) ListProducts(context.Context, catalog.Filter) ([]catalog.Product, error) {
	return nil, s.err
}

func (s *stubCatalogRepo) GetProduct(context.Context, string) (catalog.Product, error) {
	return catalog.Product{}, catalog.ErrProductNotFound
}

func (s *stubCatalogRepo) CountProductsByVendor(context.Context, string) (int, error) {
	return s.count, s.err
}

func (s *stubCatalogRepo) CountProductsByCategory(context.Context, string) (int, error) {
	return s.count, s.err
}

func newCatalogServer(t *testing.T, repo catalog.Repository) *httptest.Server {
	t.Helper()
	svc := catalog.NewService(repo, nil, time.Minute)
	router := NewRouter(nil)
	(&CatalogHandler{Catalog: svc}).Register(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestListVendors(t *testing.T) {
	srv := newCatalogServer(t, &stubCatalogRepo{
		vendors: []catalog.Vendor{{ID: "v1", Name: "TechGadgets", WhatsAppContact: "+5491111111111"}},
	})

	resp, err := http.Get(srv.URL + "/vendors")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var vs []catalog.Vendor
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&vs))
	require.Len(t, vs, 1)
	assert.Equal(t, "TechGadgets", vs[0].Name)
}

// provider failures render as empty shelves, never as error pages
func TestListVendorsDegradesToEmpty(t *testing.T) {
	srv := newCatalogServer(t, &stubCatalogRepo{err: errors.New("db down")})

	resp, err := http.Get(srv.URL + "/vendors")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var vs []catalog.Vendor
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&vs))
	assert.Empty(t, vs)
}

func TestProductsDegradeToEmpty(t *testing.T) {
	srv := newCatalogServer(t, &stubCatalogRepo{err: errors.New("db down")})

	resp, err := http.Get(srv.URL + "/products?vendor_id=v1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ps []catalog.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ps))
	assert.Empty(t, ps)
}

func TestVendorProductCount(t *testing.T) {
	srv := newCatalogServer(t, &stubCatalogRepo{count: 12})

	resp, err := http.Get(srv.URL + "/vendors/v1/product-count")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 12, body["count"])
}

func TestCountDegradesToZero(t *testing.T) {
	srv := newCatalogServer(t, &stubCatalogRepo{err: errors.New("db down")})

	resp, err := http.Get(srv.URL + "/categories/c1/product-count")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 0, body["count"])
}
