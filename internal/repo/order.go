package repo

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/daru-pasal/liquor_shop/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

// CreateOrder persists the order header, its items and the stock decrements
// in one transaction. Items are written in input order with their snapshot
// fields taken from the request, not from the products table.
//
// The decrement is a single conditional UPDATE: it only applies when the
// current stock covers the requested quantity, so two orders racing for the
// last unit cannot both take it. Zero rows affected means insufficient
// stock; the order still goes through.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}

			if items[i].ProductID == 0 {
				continue
			}
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ?", items[i].ProductID, items[i].Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", items[i].Quantity))
			if res.Error != nil {
				return res.Error
			}
		}
		return nil
	})
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrderItems(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	if err := r.DB.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetOrderWithSummary is the post-commit confirmation read: the header plus
// the "name (quantity)" items summary.
func (r *GormRepo) GetOrderWithSummary(ctx context.Context, id uint) (*models.Order, error) {
	order, err := r.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := r.ListOrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.ItemsSummary = Summarize(items)
	return order, nil
}

func (r *GormRepo) ListUserOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	if err := r.attachSummaries(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListOrders is the admin listing: optional status filter plus offset
// pagination, with a companion total count over the same filter.
func (r *GormRepo) ListOrders(ctx context.Context, status models.OrderStatus, offset, limit int) (int64, []models.Order, error) {
	filtered := func() *gorm.DB {
		q := r.DB.WithContext(ctx).Model(&models.Order{})
		if status != "" {
			q = q.Where("status = ?", status)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	if err := filtered().Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	if err := r.attachSummaries(ctx, orders); err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type StatusCount struct {
	Status models.OrderStatus `json:"status"`
	Count  int64              `json:"count"`
}

type OrderStats struct {
	TotalOrders    int64          `json:"total_orders"`
	TotalRevenue   float64        `json:"total_revenue"`
	OrdersByStatus []StatusCount  `json:"orders_by_status"`
	RecentOrders   []models.Order `json:"recent_orders"`
}

// OrderStatistics aggregates the admin overview: order count, revenue over
// non-cancelled orders, per-status counts and the five newest orders.
func (r *GormRepo) OrderStatistics(ctx context.Context) (*OrderStats, error) {
	var stats OrderStats

	if err := r.DB.WithContext(ctx).Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}

	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("status <> ?", models.StatusCancelled).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&stats.TotalRevenue).Error; err != nil {
		return nil, err
	}

	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&stats.OrdersByStatus).Error; err != nil {
		return nil, err
	}

	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Order("created_at DESC").
		Limit(5).
		Find(&stats.RecentOrders).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

// Summarize renders items as "Name (qty)" pairs for confirmation display.
func Summarize(items []models.OrderItem) string {
	if len(items) == 0 {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s (%d)", it.ProductName, it.Quantity))
	}
	return strings.Join(parts, ", ")
}

func (r *GormRepo) attachSummaries(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	var items []models.OrderItem
	if err := r.DB.WithContext(ctx).
		Where("order_id IN ?", ids).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return err
	}

	byOrder := make(map[uint][]models.OrderItem, len(orders))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	for i := range orders {
		orders[i].ItemsSummary = Summarize(byOrder[orders[i].ID])
	}
	return nil
}
