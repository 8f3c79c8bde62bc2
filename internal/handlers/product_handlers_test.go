package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/daru-pasal/liquor_shop/internal/models"
	"github.com/daru-pasal/liquor_shop/internal/mykafka"
	"github.com/daru-pasal/liquor_shop/internal/repo"
	"github.com/daru-pasal/liquor_shop/internal/service"
)

func newProductHandler(t *testing.T) (*ProductHandler, *gorm.DB) {
	t.Helper()
	db := initTestDB(t)
	return &ProductHandler{
		Svc:      &service.ProductService{Repo: &repo.GormRepo{DB: db}},
		Producer: &mykafka.Producer{},
	}, db
}

func productPayload() map[string]any {
	return map[string]any{
		"name":            "Khukuri Rum",
		"category":        "rum",
		"price":           850.0,
		"description":     "dark rum",
		"alcohol_content": 42.8,
		"volume":          "750ml",
		"origin":          "Nepal",
		"stock_quantity":  12,
	}
}

func TestCreateProductHandler(t *testing.T) {
	h, db := newProductHandler(t)

	rec, c := doJSON(t, http.MethodPost, "/api/v1/admin/products", productPayload())
	require.NoError(t, h.CreateProduct(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Product models.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp.Product.ID)
	assert.Equal(t, "Khukuri Rum", resp.Product.Name)
	assert.Equal(t, uint(12), resp.Product.StockQuantity)

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateProductHandler_Validation(t *testing.T) {
	h, _ := newProductHandler(t)

	payload := productPayload()
	payload["price"] = 0.0

	_, c := doJSON(t, http.MethodPost, "/api/v1/admin/products", payload)
	err := h.CreateProduct(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestGetProductHandler(t *testing.T) {
	h, db := newProductHandler(t)

	beer := models.Product{Name: "Gorkha Strong", Category: "beer", Price: 220, Description: "strong beer"}
	require.NoError(t, db.Create(&beer).Error)

	rec, c := doJSON(t, http.MethodGet, "/api/v1/products/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.GetProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Product models.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, beer.Name, resp.Product.Name)

	_, c = doJSON(t, http.MethodGet, "/api/v1/products/42", nil)
	c.SetParamNames("id")
	c.SetParamValues("42")
	err := h.GetProduct(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestUpdateProductHandler(t *testing.T) {
	h, db := newProductHandler(t)

	beer := models.Product{Name: "Gorkha Strong", Category: "beer", Price: 220, Description: "strong beer"}
	require.NoError(t, db.Create(&beer).Error)

	payload := productPayload()
	payload["name"] = "Gorkha Premium"
	payload["price"] = 260.0

	rec, c := doJSON(t, http.MethodPut, "/api/v1/admin/products/1", payload)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Product
	require.NoError(t, db.First(&got, beer.ID).Error)
	assert.Equal(t, "Gorkha Premium", got.Name)
	assert.Equal(t, 260.0, got.Price)
}

func TestDeleteProductHandler(t *testing.T) {
	h, db := newProductHandler(t)

	beer := models.Product{Name: "Gorkha Strong", Category: "beer", Price: 220, Description: "strong beer"}
	require.NoError(t, db.Create(&beer).Error)

	rec, c := doJSON(t, http.MethodDelete, "/api/v1/admin/products/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.DeleteProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	assert.Zero(t, count)

	_, c = doJSON(t, http.MethodDelete, "/api/v1/admin/products/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	err := h.DeleteProduct(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestGetProductsHandler_SortAndFilter(t *testing.T) {
	h, db := newProductHandler(t)

	products := []models.Product{
		{Name: "Gorkha Strong", Category: "beer", Price: 220, Description: "strong beer"},
		{Name: "Khukuri Rum", Category: "rum", Price: 850, Description: "dark rum"},
		{Name: "Old Durbar", Category: "whisky", Price: 2200, Description: "blended whisky"},
	}
	for i := range products {
		require.NoError(t, db.Create(&products[i]).Error)
	}

	rec, c := doJSON(t, http.MethodGet, "/api/v1/products?sort=price&order=desc", nil)
	require.NoError(t, h.GetProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products []models.Product `json:"products"`
		Total    int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.Total)
	assert.Equal(t, "Old Durbar", resp.Products[0].Name)

	// Unrecognized sort input degrades to the name ASC fallback.
	rec, c = doJSON(t, http.MethodGet, "/api/v1/products?sort=stock_quantity;--&order=desc", nil)
	require.NoError(t, h.GetProducts(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Gorkha Strong", resp.Products[0].Name)

	rec, c = doJSON(t, http.MethodGet, "/api/v1/products?category=rum", nil)
	require.NoError(t, h.GetProducts(c))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Khukuri Rum", resp.Products[0].Name)
}

func TestGetProductsByCategoryHandler(t *testing.T) {
	h, db := newProductHandler(t)

	for _, p := range []models.Product{
		{Name: "Gorkha Strong", Category: "beer", Price: 220, Description: "strong beer"},
		{Name: "Nepal Ice", Category: "beer", Price: 180, Description: "lager"},
		{Name: "Khukuri Rum", Category: "rum", Price: 850, Description: "dark rum"},
	} {
		require.NoError(t, db.Create(&p).Error)
	}

	rec, c := doJSON(t, http.MethodGet, "/api/v1/products/category/beer?sort=price&order=desc", nil)
	c.SetParamNames("category")
	c.SetParamValues("beer")
	require.NoError(t, h.GetProductsByCategory(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products []models.Product `json:"products"`
		Total    int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "Gorkha Strong", resp.Products[0].Name)
	assert.Equal(t, "Nepal Ice", resp.Products[1].Name)
}

func TestGetCategoriesHandler(t *testing.T) {
	h, db := newProductHandler(t)

	for _, p := range []models.Product{
		{Name: "A", Category: "beer", Price: 1, Description: "d"},
		{Name: "B", Category: "beer", Price: 1, Description: "d"},
		{Name: "C", Category: "wine", Price: 1, Description: "d"},
	} {
		require.NoError(t, db.Create(&p).Error)
	}

	rec, c := doJSON(t, http.MethodGet, "/api/v1/products/categories", nil)
	require.NoError(t, h.GetCategories(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Categories []string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"beer", "wine"}, resp.Categories)
}
