package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/daru-pasal/liquor_shop/internal/models"
	"github.com/daru-pasal/liquor_shop/internal/repo"
	"github.com/daru-pasal/liquor_shop/internal/transport"
	"github.com/daru-pasal/liquor_shop/internal/util"
)

var (
	ErrValidation   = errors.New("validation")    // 400
	ErrNotFound     = errors.New("not found")     // 404
	ErrAccessDenied = errors.New("access denied") // 403
)

type OrderService struct {
	Repo *repo.GormRepo
}

// PlaceOrder validates the payload and atomically materializes the order
// header, its item snapshots and the guarded stock decrements. Validation
// failures are reported before any mutation; storage failures roll the
// whole transaction back and bubble up unwrapped for the handler to log.
func (s *OrderService) PlaceOrder(ctx context.Context, req transport.CreateOrderRequest, userID *uint) (*models.Order, error) {
	if err := validateOrder(req); err != nil {
		return nil, err
	}

	method := req.PaymentMethod
	if method == "" {
		method = models.PaymentCOD
	}

	order := &models.Order{
		UserID:          userID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryCity:    req.DeliveryCity,
		PaymentMethod:   method,
		TotalAmount:     req.TotalAmount,
		Status:          models.StatusPending,
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.OrderItem{
			ProductID:   it.ID,
			ProductName: it.Name,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}

	if err := s.Repo.CreateOrder(ctx, order, items); err != nil {
		return nil, err
	}

	return s.Repo.GetOrderWithSummary(ctx, order.ID)
}

func validateOrder(req transport.CreateOrderRequest) error {
	if req.CustomerName == "" || req.CustomerEmail == "" || req.DeliveryAddress == "" {
		return fmt.Errorf("%w: customer details, delivery address, total amount, and items are required", ErrValidation)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: items required", ErrValidation)
	}
	if req.TotalAmount <= 0 {
		return fmt.Errorf("%w: total amount must be greater than 0", ErrValidation)
	}
	if req.PaymentMethod != "" && !req.PaymentMethod.Valid() {
		return fmt.Errorf("%w: invalid payment method", ErrValidation)
	}
	for _, it := range req.Items {
		if it.Name == "" {
			return fmt.Errorf("%w: item name required", ErrValidation)
		}
		if it.Quantity == 0 {
			return fmt.Errorf("%w: item quantity must be greater than 0", ErrValidation)
		}
		if it.Price < 0 {
			return fmt.Errorf("%w: item price must be >= 0", ErrValidation)
		}
	}
	return nil
}

func (s *OrderService) MyOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.Repo.ListUserOrders(ctx, userID)
}

// GetOrder returns the order with its items, restricted to the owner or an
// administrator.
func (s *OrderService) GetOrder(ctx context.Context, id, viewerID uint, role models.Role) (*models.Order, []models.OrderItem, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return nil, nil, err
	}

	if !role.IsAdmin() && (order.UserID == nil || *order.UserID != viewerID) {
		return nil, nil, ErrAccessDenied
	}

	items, err := s.Repo.ListOrderItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// ListAll is the admin listing. status "" or "all" disables the filter; any
// other value must be one of the five enumerated statuses.
func (s *OrderService) ListAll(ctx context.Context, status string, page, limit int) ([]models.Order, transport.Pagination, error) {
	var filter models.OrderStatus
	if status != "" && status != "all" {
		filter = models.OrderStatus(status)
		if !filter.Valid() {
			return nil, transport.Pagination{}, fmt.Errorf("%w: invalid status", ErrValidation)
		}
	}

	offset, limit := util.Calculate(page, limit)
	total, orders, err := s.Repo.ListOrders(ctx, filter, offset, limit)
	if err != nil {
		return nil, transport.Pagination{}, err
	}

	if page < 1 {
		page = 1
	}
	return orders, transport.Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: util.Pages(total, limit),
	}, nil
}

// UpdateStatus transitions the order directly to the target status. Every
// enumerated value may replace every other.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: invalid status", ErrValidation)
	}
	if err := s.Repo.UpdateOrderStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return err
	}
	return nil
}

func (s *OrderService) Statistics(ctx context.Context) (*repo.OrderStats, error) {
	return s.Repo.OrderStatistics(ctx)
}
