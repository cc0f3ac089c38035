package domain

import (
	"context"
	"errors"
	"time"
)

type CreatePlanRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type UpdatePlanRequest struct {
	Name  *string  `json:"name,omitempty"`
	Price *float64 `json:"price,omitempty"`
}

type UpgradePlanRequest struct {
	NewPlanID string `json:"new_plan_id"`
}

type UpgradePlanResponse struct {
	Success       bool      `json:"success"`
	ProratedPrice float64   `json:"prorated_price"`
	OrderID       string    `json:"order_id"`
	PlanID        string    `json:"plan_id"`
	CycleEnd      time.Time `json:"cycle_end"`
}

type Service interface {
	List(ctx context.Context) ([]Plan, error)
	Create(ctx context.Context, req CreatePlanRequest) (Plan, error)
	Update(ctx context.Context, id string, req UpdatePlanRequest) (Plan, error)
	// Upgrade moves the caller's team to a strictly higher-priced plan and
	// bills the difference prorated over the remainder of the current cycle.
	Upgrade(ctx context.Context, req UpgradePlanRequest) (UpgradePlanResponse, error)
}

var (
	ErrPlanNotFound   = errors.New("plan_not_found")
	ErrPlanCodeExists = errors.New("plan_code_exists")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidPrice   = errors.New("invalid_price")

	// Upgrade failures carry the message surfaced to callers verbatim.
	ErrNoTeam         = errors.New("User does not belong to any team")
	ErrNoSubscription = errors.New("No active subscription found")
	ErrInvalidPlanID  = errors.New("Invalid plan ID")
	ErrNotAnUpgrade   = errors.New("New plan must have a higher price to be considered an upgrade")
	ErrNoActivation   = errors.New("No activation record found")
)
