package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/daru-pasal/liquor_shop/internal/logging"
	"github.com/daru-pasal/liquor_shop/internal/middleware/auth"
	"github.com/daru-pasal/liquor_shop/internal/models"
	"github.com/daru-pasal/liquor_shop/internal/mykafka"
	"github.com/daru-pasal/liquor_shop/internal/service"
	"github.com/daru-pasal/liquor_shop/internal/transport"
)

type OrderHandler struct {
	Svc      *service.OrderService
	Producer *mykafka.Producer
}

func (h *OrderHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

// CreateOrder accepts the checkout payload. Auth is optional: an order
// placed without a session is a guest order with no owner.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var userID *uint
	if id, ok := auth.CurrentUserID(c); ok {
		userID = &id
	}

	order, err := h.Svc.PlaceOrder(ctx, req, userID)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("order rejected", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		// Storage failure: the transaction is already rolled back. Log the
		// cause, never surface it.
		l.Error("order transaction failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create order")
	}

	h.publish(c, fmt.Sprint(order.ID), map[string]any{
		"type":     "order_created",
		"order_id": order.ID,
		"total":    order.TotalAmount,
	})

	l.Info("order created", "order_id", order.ID, "items_summary", order.ItemsSummary)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Order created successfully",
		"order":   order,
	})
}

func (h *OrderHandler) MyOrders(c echo.Context) error {
	userID, ok := auth.CurrentUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "login required")
	}

	orders, err := h.Svc.MyOrders(c.Request().Context(), userID)
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("list own orders failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get orders")
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

type orderDetail struct {
	models.Order
	Items []models.OrderItem `json:"items"`
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	userID, _ := auth.CurrentUserID(c)
	role := auth.CurrentRole(c)

	order, items, err := h.Svc.GetOrder(c.Request().Context(), uint(id), userID, role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrAccessDenied):
			return echo.NewHTTPError(http.StatusForbidden, "access denied")
		}
		logging.FromContext(c.Request().Context()).Error("get order failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get order details")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"order": orderDetail{Order: *order, Items: items},
	})
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	limit := parseIntDefault(c.QueryParam("limit"), 10)
	status := c.QueryParam("status")

	orders, pagination, err := h.Svc.ListAll(c.Request().Context(), status, page, limit)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		logging.FromContext(c.Request().Context()).Error("list orders failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get orders")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"orders":     orders,
		"pagination": pagination,
	})
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.UpdateStatus(c.Request().Context(), uint(id), req.Status); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		case errors.Is(err, service.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		logging.FromContext(c.Request().Context()).Error("update order status failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update order status")
	}

	h.publish(c, fmt.Sprint(id), map[string]any{
		"type":     "order_status_updated",
		"order_id": id,
		"status":   req.Status,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Order status updated successfully"})
}

func (h *OrderHandler) Statistics(c echo.Context) error {
	stats, err := h.Svc.Statistics(c.Request().Context())
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("order statistics failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to get order statistics")
	}
	return c.JSON(http.StatusOK, stats)
}
