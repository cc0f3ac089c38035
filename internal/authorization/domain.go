// Package authorization gates privileged operations behind casbin RBAC.
package authorization

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

const (
	ObjectPlan  = "plan"
	ObjectOrder = "order"
)

const (
	ActionPlanView    = "plan.view"
	ActionPlanCreate  = "plan.create"
	ActionPlanUpdate  = "plan.update"
	ActionPlanUpgrade = "plan.upgrade"

	ActionOrderView         = "order.view"
	ActionOrderCreate       = "order.create"
	ActionOrderUpdateStatus = "order.update_status"
)

var (
	ErrInvalidActor = errors.New("authorization_invalid_actor")
	ErrForbidden    = errors.New("forbidden")
)

type Service interface {
	// Authorize reports whether the user may perform action on object.
	// A nil return means allowed.
	Authorize(ctx context.Context, userID snowflake.ID, object string, action string) error
}
