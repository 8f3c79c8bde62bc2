package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/daru-pasal/liquor_shop/internal/es"
	"github.com/daru-pasal/liquor_shop/internal/logging"
	"github.com/daru-pasal/liquor_shop/internal/models"
	"github.com/daru-pasal/liquor_shop/internal/mykafka"
	"github.com/daru-pasal/liquor_shop/internal/repo"
	"github.com/daru-pasal/liquor_shop/internal/service"
	"github.com/daru-pasal/liquor_shop/internal/transport"
)

type ProductHandler struct {
	Svc      *service.ProductService
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	ESIndex  string
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ProductHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func (h *ProductHandler) index(c echo.Context, p *models.Product) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := es.IndexProduct(ctx, h.ES, h.ESIndex, p); err != nil {
		logging.FromContext(c.Request().Context()).Error("product indexing failed", "error", err)
	}
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	filter := repo.ProductFilter{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		Sort:     c.QueryParam("sort"),
		Order:    c.QueryParam("order"),
	}

	products, err := h.Svc.List(c.Request().Context(), filter)
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("list products failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get products")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products": products,
		"total":    len(products),
	})
}

// GetProductsByCategory is the path-param variant of the category filter,
// with the same sort whitelist.
func (h *ProductHandler) GetProductsByCategory(c echo.Context) error {
	filter := repo.ProductFilter{
		Category: c.Param("category"),
		Sort:     c.QueryParam("sort"),
		Order:    c.QueryParam("order"),
	}

	products, err := h.Svc.List(c.Request().Context(), filter)
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("list products by category failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get products")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"products": products,
		"total":    len(products),
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	product, err := h.Svc.Get(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		logging.FromContext(c.Request().Context()).Error("get product failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get product")
	}

	return c.JSON(http.StatusOK, echo.Map{"product": product})
}

func (h *ProductHandler) GetCategories(c echo.Context) error {
	categories, err := h.Svc.Categories(c.Request().Context())
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("list categories failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get categories")
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": categories})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.Create(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		logging.FromContext(c.Request().Context()).Error("create product failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create product")
	}

	h.publish(c, fmt.Sprint(product.ID), map[string]any{
		"type":       "product_created",
		"product_id": product.ID,
		"name":       product.Name,
	})
	h.index(c, product)

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Product created successfully",
		"product": product,
	})
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.Update(c.Request().Context(), uint(id), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		logging.FromContext(c.Request().Context()).Error("update product failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update product")
	}

	h.publish(c, fmt.Sprint(product.ID), map[string]any{
		"type":       "product_updated",
		"product_id": product.ID,
		"name":       product.Name,
	})
	h.index(c, product)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product updated successfully",
		"product": product,
	})
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.Svc.Delete(c.Request().Context(), uint(id)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		logging.FromContext(c.Request().Context()).Error("delete product failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete product")
	}

	h.publish(c, fmt.Sprint(id), map[string]any{
		"type":       "product_deleted",
		"product_id": id,
	})
	if h.ES != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := es.DeleteProduct(ctx, h.ES, h.ESIndex, uint(id)); err != nil {
			logging.FromContext(c.Request().Context()).Error("product unindexing failed", "error", err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}
