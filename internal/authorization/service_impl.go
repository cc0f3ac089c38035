package authorization

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	userdomain "github.com/faturahq/fatura/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	UserRepo userdomain.Repository
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	userRepo userdomain.Repository
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		userRepo: p.UserRepo,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, userID snowflake.ID, object string, action string) error {
	if userID == 0 {
		return ErrInvalidActor
	}

	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidActor
	}

	roleName := "role:member"
	if user.IsAdmin {
		roleName = "role:admin"
	}

	subject := fmt.Sprintf("user:%s", userID.String())
	if err := s.ensureGrouping(subject, roleName); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Warn("authorization denied",
			zap.String("subject", subject),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

// ensureGrouping keeps the subject's role grouping in sync with the users
// table; a user promoted to or demoted from admin takes effect on their next
// request.
func (s *ServiceImpl) ensureGrouping(subject string, roleName string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == roleName {
			continue
		}
		params := make([]interface{}, 0, len(rule))
		for _, value := range rule {
			params = append(params, value)
		}
		_, _ = s.enforcer.RemoveGroupingPolicy(params...)
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName)
	return err
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Members manage their own billing surface.
		{"role:member", ObjectPlan, ActionPlanView},
		{"role:member", ObjectPlan, ActionPlanUpgrade},
		{"role:member", ObjectOrder, ActionOrderView},
		{"role:member", ObjectOrder, ActionOrderCreate},
		{"role:member", ObjectOrder, ActionOrderUpdateStatus},

		// Admins additionally manage the plan catalog.
		{"role:admin", ObjectPlan, ActionPlanView},
		{"role:admin", ObjectPlan, ActionPlanCreate},
		{"role:admin", ObjectPlan, ActionPlanUpdate},
		{"role:admin", ObjectPlan, ActionPlanUpgrade},
		{"role:admin", ObjectOrder, ActionOrderView},
		{"role:admin", ObjectOrder, ActionOrderCreate},
		{"role:admin", ObjectOrder, ActionOrderUpdateStatus},
	}

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}

var Module = fx.Module("authorization",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)
