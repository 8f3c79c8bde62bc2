package models

import "time"

// Role is a closed set. Authorization checks go through IsAdmin, never
// through raw string comparison in handlers.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) IsAdmin() bool { return r == RoleAdmin }

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         Role   `gorm:"not null;default:user"    json:"role"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

type Product struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string    `gorm:"not null"                 json:"name"`
	Category       string    `gorm:"not null;index"           json:"category"`
	Price          float64   `gorm:"not null"                 json:"price"`
	Description    string    `gorm:"not null"                 json:"description"`
	AlcoholContent float64   `json:"alcohol_content"`
	Volume         string    `json:"volume"`
	Origin         string    `json:"origin"`
	Image          string    `json:"image"`
	StockQuantity  uint      `gorm:"not null;default:0"       json:"stock_quantity"`
	CreatedAt      time.Time `json:"created_at"`
}

// OrderStatus values. Any of the five may replace any other, there is no
// transition state machine.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "cod"
	PaymentESewa        PaymentMethod = "esewa"
	PaymentKhalti       PaymentMethod = "khalti"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentESewa, PaymentKhalti, PaymentBankTransfer:
		return true
	}
	return false
}

// Order is the header row. UserID is nil for guest checkout.
type Order struct {
	ID              uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          *uint         `gorm:"index"                    json:"user_id"`
	CustomerName    string        `gorm:"not null"                 json:"customer_name"`
	CustomerEmail   string        `gorm:"not null"                 json:"customer_email"`
	CustomerPhone   string        `json:"customer_phone"`
	DeliveryAddress string        `gorm:"not null"                 json:"delivery_address"`
	DeliveryCity    string        `json:"delivery_city"`
	PaymentMethod   PaymentMethod `gorm:"not null;default:cod"     json:"payment_method"`
	TotalAmount     float64       `gorm:"not null"                 json:"total_amount"`
	Status          OrderStatus   `gorm:"not null;default:pending" json:"status"`
	CreatedAt       time.Time     `json:"created_at"`

	// ItemsSummary is computed from the order's items on read, it is not a
	// column.
	ItemsSummary string `gorm:"-" json:"items_summary,omitempty"`
}

// OrderItem snapshots name and price at purchase time. The snapshot is never
// re-derived from the live product row, so historical orders keep their
// pricing even if the catalog entry later changes or is removed.
type OrderItem struct {
	ID          uint    `gorm:"primaryKey"                json:"id"`
	OrderID     uint    `gorm:"index;not null"            json:"order_id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `gorm:"not null"                  json:"product_name"`
	Quantity    uint    `gorm:"not null;check:quantity>0" json:"quantity"`
	Price       float64 `gorm:"not null"                  json:"price"`
}
