package auction

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// ShippingAddress is created empty at settlement; collection happens later in
// the fulfillment flow.
type ShippingAddress struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// Order is created as a side effect of a won auction.
type Order struct {
	ID              string
	UserID          string
	ListingID       string
	TotalAmount     decimal.Decimal
	Status          OrderStatus
	ShippingAddress ShippingAddress
	PaymentMethod   string
	CreatedAt       time.Time
}

func NewOrder(id, userID, listingID string, amount decimal.Decimal, now time.Time) (*Order, error) {
	if id == "" {
		return nil, errors.New("order id cannot be empty")
	}

	if userID == "" {
		return nil, errors.New("user id cannot be empty")
	}

	if listingID == "" {
		return nil, errors.New("listing id cannot be empty")
	}

	if !amount.IsPositive() {
		return nil, errors.New("order amount must be positive")
	}

	return &Order{
		ID:            id,
		UserID:        userID,
		ListingID:     listingID,
		TotalAmount:   amount,
		Status:        OrderPending,
		PaymentMethod: "pending",
		CreatedAt:     now,
	}, nil
}
