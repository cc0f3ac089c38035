package service

import (
	"context"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/faturahq/fatura/internal/authctx"
	orderdomain "github.com/faturahq/fatura/internal/order/domain"
	plandomain "github.com/faturahq/fatura/internal/plan/domain"
	subscriptiondomain "github.com/faturahq/fatura/internal/subscription/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Upgrade moves the caller's subscription to a higher-priced plan. The order,
// the plan switch and the new activation land in one transaction; the
// subscription row is locked first so concurrent upgrades on the same
// subscription serialize instead of double-billing.
func (s *Service) Upgrade(ctx context.Context, req plandomain.UpgradePlanRequest) (plandomain.UpgradePlanResponse, error) {
	userID, ok := authctx.UserIDFromContext(ctx)
	if !ok {
		return plandomain.UpgradePlanResponse{}, plandomain.ErrNoTeam
	}

	team, err := s.teamRepo.FindFirstByUserID(ctx, s.db, userID)
	if err != nil {
		return plandomain.UpgradePlanResponse{}, err
	}
	if team == nil {
		return plandomain.UpgradePlanResponse{}, plandomain.ErrNoTeam
	}

	policy := s.policy.Get()
	now := s.clock.Now()

	var resp plandomain.UpgradePlanResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subscription, err := s.subscriptionRepo.FindFirstByTeamIDForUpdate(ctx, tx, team.ID)
		if err != nil {
			return err
		}
		if subscription == nil {
			return plandomain.ErrNoSubscription
		}

		newPlanID, err := snowflake.ParseString(strings.TrimSpace(req.NewPlanID))
		if err != nil {
			return plandomain.ErrInvalidPlanID
		}

		currentPlan, err := s.repo.FindByID(ctx, tx, subscription.PlanID)
		if err != nil {
			return err
		}
		newPlan, err := s.repo.FindByID(ctx, tx, newPlanID)
		if err != nil {
			return err
		}
		if currentPlan == nil || newPlan == nil {
			return plandomain.ErrInvalidPlanID
		}
		if newPlan.Price <= currentPlan.Price {
			return plandomain.ErrNotAnUpgrade
		}

		activation, err := s.subscriptionRepo.FindLatestActivation(ctx, tx, subscription.ID)
		if err != nil {
			return err
		}
		if activation == nil {
			return plandomain.ErrNoActivation
		}

		remainingDays := int(math.Ceil(activation.EndDate.Sub(now).Hours() / 24))
		prorated := (newPlan.Price - currentPlan.Price) / float64(policy.DaysPerMonth) * float64(remainingDays)
		if prorated < 0 {
			prorated = 0
		}

		order := orderdomain.Order{
			ID:             s.genID.Generate(),
			SubscriptionID: subscription.ID,
			Amount:         prorated,
			Currency:       policy.Currency,
			Status:         orderdomain.OrderStatusPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.orderRepo.Insert(ctx, tx, &order); err != nil {
			return err
		}

		if err := s.subscriptionRepo.UpdatePlan(ctx, tx, subscription.ID, newPlan.ID, now); err != nil {
			return err
		}

		next := subscriptiondomain.SubscriptionActivation{
			ID:             s.genID.Generate(),
			SubscriptionID: subscription.ID,
			OrderID:        order.ID,
			StartDate:      now,
			EndDate:        activation.EndDate,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.subscriptionRepo.InsertActivation(ctx, tx, &next); err != nil {
			return err
		}

		resp = plandomain.UpgradePlanResponse{
			Success:       true,
			ProratedPrice: prorated,
			OrderID:       order.ID.String(),
			PlanID:        newPlan.ID.String(),
			CycleEnd:      next.EndDate,
		}
		return nil
	})
	if err != nil {
		return plandomain.UpgradePlanResponse{}, err
	}

	if s.metrics != nil {
		s.metrics.PlanUpgrades.Inc()
	}
	s.log.Info("plan upgraded",
		zap.String("team_id", team.ID.String()),
		zap.String("order_id", resp.OrderID),
		zap.String("plan_id", resp.PlanID),
		zap.Float64("prorated_price", resp.ProratedPrice),
	)
	return resp, nil
}
