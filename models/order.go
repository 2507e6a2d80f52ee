package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentProvider is the closed set of supported checkout providers.
type PaymentProvider string

const (
	ProviderFlutterwave PaymentProvider = "flutterwave"
	ProviderPaystack    PaymentProvider = "paystack"
)

// PaymentStatus moves pending -> success | failed and is terminal after that.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

// Terminal reports whether the payment status can no longer change.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentSuccess || s == PaymentFailed
}

// OrderStatus moves pending -> delivered | canceled and is terminal after that.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderDelivered OrderStatus = "delivered"
	OrderCanceled  OrderStatus = "canceled"
)

// Terminal reports whether the order status can no longer change.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCanceled
}

// SplitType tags how a bill fragment was carved from the order total.
type SplitType string

const (
	SplitEven       SplitType = "even"
	SplitPercentage SplitType = "percentage"
	SplitCustom     SplitType = "custom"
	SplitByItem     SplitType = "item"
)

// Order is append-only: it is created once, mutated only to attach a payment
// URL or transition a status, and never deleted.
type Order struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	CompanyID  uint   `json:"company_id" gorm:"index"`
	GuestID    uint   `json:"guest_id" gorm:"index"`
	RoomNumber string `json:"room_number"`

	TotalAmount     decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2)"`
	PaymentProvider PaymentProvider `json:"payment_provider"`
	PaymentURL      *string         `json:"payment_url,omitempty"`
	PaymentStatus   PaymentStatus   `json:"payment_status" gorm:"default:pending"`
	OrderStatus     OrderStatus     `json:"order_status" gorm:"default:pending"`

	Items  []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Splits []Split     `json:"splits,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItem carries the unit price captured at order time. The live catalog
// price is never re-read, so the order total stays immutable.
type OrderItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	OrderID   uint            `json:"order_id" gorm:"index"`
	ItemID    uint            `json:"item_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2)"`
}

// Split is a sub-payment fragment of one order, tracked to success or
// failure independently of the parent order and of sibling splits.
type Split struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	OrderID       uint            `json:"order_id" gorm:"index"`
	GuestID       uint            `json:"guest_id"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(12,2)"`
	SplitType     SplitType       `json:"split_type"`
	PaymentStatus PaymentStatus   `json:"payment_status" gorm:"default:pending"`
	PaymentURL    *string         `json:"payment_url,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
