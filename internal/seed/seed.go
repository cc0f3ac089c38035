// Package seed bootstraps a usable dataset for local and demo deployments.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/faturahq/fatura/internal/order/domain"
	orderrepository "github.com/faturahq/fatura/internal/order/repository"
	plandomain "github.com/faturahq/fatura/internal/plan/domain"
	planrepository "github.com/faturahq/fatura/internal/plan/repository"
	subscriptiondomain "github.com/faturahq/fatura/internal/subscription/domain"
	subscriptionrepository "github.com/faturahq/fatura/internal/subscription/repository"
	teamdomain "github.com/faturahq/fatura/internal/team/domain"
	teamrepository "github.com/faturahq/fatura/internal/team/repository"
	userdomain "github.com/faturahq/fatura/internal/user/domain"
	userrepository "github.com/faturahq/fatura/internal/user/repository"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail = "admin@fatura.dev"
	defaultAdminName  = "Fatura Admin"

	demoOwnerEmail = "owner@fatura.dev"
	demoOwnerName  = "Demo Owner"
	demoTeamName   = "Demo Team"
)

var demoPlans = []struct {
	Code  string
	Name  string
	Price float64
}{
	{Code: "basic", Name: "Basic", Price: 30},
	{Code: "standard", Name: "Standard", Price: 60},
	{Code: "premium", Name: "Premium", Price: 120},
}

type seeder struct {
	node *snowflake.Node

	users         userdomain.Repository
	teams         teamdomain.Repository
	plans         plandomain.Repository
	subscriptions subscriptiondomain.Repository
	orders        orderdomain.Repository
}

// EnsureDemoData seeds an admin, a demo owner with a team, the plan catalog
// and an active subscription on the cheapest plan. Every step is idempotent
// so restarts leave existing rows alone.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	s := &seeder{
		node: node,

		users:         userrepository.Provide(),
		teams:         teamrepository.Provide(),
		plans:         planrepository.Provide(),
		subscriptions: subscriptionrepository.Provide(),
		orders:        orderrepository.Provide(),
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.ensureUserTx(ctx, tx, defaultAdminEmail, defaultAdminName, true); err != nil {
			return err
		}

		owner, err := s.ensureUserTx(ctx, tx, demoOwnerEmail, demoOwnerName, false)
		if err != nil {
			return err
		}

		team, err := s.ensureTeamTx(ctx, tx, owner.ID)
		if err != nil {
			return err
		}

		plans, err := s.ensurePlansTx(ctx, tx)
		if err != nil {
			return err
		}

		return s.ensureSubscriptionTx(ctx, tx, team.ID, plans[0].ID)
	})
}

func (s *seeder) ensureUserTx(ctx context.Context, tx *gorm.DB, email, name string, isAdmin bool) (userdomain.User, error) {
	existing, err := s.users.FindByEmail(ctx, tx, email)
	if err != nil {
		return userdomain.User{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	now := time.Now().UTC()
	user := userdomain.User{
		ID:        s.node.Generate(),
		Email:     email,
		Name:      name,
		IsAdmin:   isAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Insert(ctx, tx, &user); err != nil {
		return userdomain.User{}, err
	}
	return user, nil
}

func (s *seeder) ensureTeamTx(ctx context.Context, tx *gorm.DB, ownerID snowflake.ID) (teamdomain.Team, error) {
	existing, err := s.teams.FindFirstByUserID(ctx, tx, ownerID)
	if err != nil {
		return teamdomain.Team{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	now := time.Now().UTC()
	team := teamdomain.Team{
		ID:         s.node.Generate(),
		UserID:     ownerID,
		Name:       demoTeamName,
		IsPersonal: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.teams.Insert(ctx, tx, &team); err != nil {
		return teamdomain.Team{}, err
	}
	return team, nil
}

func (s *seeder) ensurePlansTx(ctx context.Context, tx *gorm.DB) ([]plandomain.Plan, error) {
	existing, err := s.plans.List(ctx, tx)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]plandomain.Plan, len(existing))
	for _, plan := range existing {
		byCode[plan.Code] = plan
	}

	now := time.Now().UTC()
	plans := make([]plandomain.Plan, 0, len(demoPlans))
	for _, seed := range demoPlans {
		if plan, ok := byCode[seed.Code]; ok {
			plans = append(plans, plan)
			continue
		}

		plan := plandomain.Plan{
			ID:        s.node.Generate(),
			Code:      seed.Code,
			Name:      seed.Name,
			Price:     seed.Price,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.plans.Insert(ctx, tx, &plan); err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (s *seeder) ensureSubscriptionTx(ctx context.Context, tx *gorm.DB, teamID, planID snowflake.ID) error {
	existing, err := s.subscriptions.FindFirstByTeamID(ctx, tx, teamID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	now := time.Now().UTC()
	subscription := subscriptiondomain.Subscription{
		ID:        s.node.Generate(),
		TeamID:    teamID,
		PlanID:    planID,
		Status:    subscriptiondomain.SubscriptionStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.subscriptions.Insert(ctx, tx, &subscription); err != nil {
		return err
	}

	order := orderdomain.Order{
		ID:             s.node.Generate(),
		SubscriptionID: subscription.ID,
		Amount:         0,
		Currency:       "SAR",
		Status:         orderdomain.OrderStatusPaid,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.orders.Insert(ctx, tx, &order); err != nil {
		return err
	}

	activation := subscriptiondomain.SubscriptionActivation{
		ID:             s.node.Generate(),
		SubscriptionID: subscription.ID,
		OrderID:        order.ID,
		StartDate:      now,
		EndDate:        now.AddDate(0, 1, 0),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return s.subscriptions.InsertActivation(ctx, tx, &activation)
}
