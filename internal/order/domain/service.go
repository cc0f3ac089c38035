package domain

import "context"

type CreateOrderRequest struct {
	SubscriptionID string  `json:"subscription_id"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	// Status is accepted for wire compatibility but new orders always start
	// as pending; payment confirmation flips them later.
	Status string `json:"status,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (Order, error)
	GetByID(ctx context.Context, id string) (Order, error)
	UpdateStatus(ctx context.Context, id string, req UpdateOrderStatusRequest) (Order, error)
}
