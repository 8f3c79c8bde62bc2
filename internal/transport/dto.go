package transport

import "github.com/daru-pasal/liquor_shop/internal/models"

type CreateOrderItem struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity uint    `json:"quantity"`
}

type CreateOrderRequest struct {
	CustomerName    string               `json:"customer_name"`
	CustomerEmail   string               `json:"customer_email"`
	CustomerPhone   string               `json:"customer_phone"`
	DeliveryAddress string               `json:"delivery_address"`
	DeliveryCity    string               `json:"delivery_city"`
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
	TotalAmount     float64              `json:"total_amount"`
	Items           []CreateOrderItem    `json:"items"`
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type ProductRequest struct {
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Price          float64 `json:"price"`
	Description    string  `json:"description"`
	AlcoholContent float64 `json:"alcohol_content"`
	Volume         string  `json:"volume"`
	Origin         string  `json:"origin"`
	Image          string  `json:"image"`
	StockQuantity  uint    `json:"stock_quantity"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}
