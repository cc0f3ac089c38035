package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/faturahq/fatura/internal/clock"
	"github.com/faturahq/fatura/internal/config"
	"github.com/faturahq/fatura/internal/metrics"
	orderdomain "github.com/faturahq/fatura/internal/order/domain"
	plandomain "github.com/faturahq/fatura/internal/plan/domain"
	subscriptiondomain "github.com/faturahq/fatura/internal/subscription/domain"
	teamdomain "github.com/faturahq/fatura/internal/team/domain"
	"github.com/faturahq/fatura/pkg/db"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID  *snowflake.Node
	clock  clock.Clock
	policy *config.BillingPolicyHolder

	repo             plandomain.Repository
	teamRepo         teamdomain.Repository
	subscriptionRepo subscriptiondomain.Repository
	orderRepo        orderdomain.Repository

	metrics *metrics.Metrics
}

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Policy *config.BillingPolicyHolder

	Repo             plandomain.Repository
	TeamRepo         teamdomain.Repository
	SubscriptionRepo subscriptiondomain.Repository
	OrderRepo        orderdomain.Repository

	Metrics *metrics.Metrics `optional:"true"`
}

func NewService(p ServiceParam) plandomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("plan.service"),

		genID:  p.GenID,
		clock:  p.Clock,
		policy: p.Policy,

		repo:             p.Repo,
		teamRepo:         p.TeamRepo,
		subscriptionRepo: p.SubscriptionRepo,
		orderRepo:        p.OrderRepo,

		metrics: p.Metrics,
	}
}

func (s *Service) List(ctx context.Context) ([]plandomain.Plan, error) {
	return s.repo.List(ctx, s.db)
}

func (s *Service) Create(ctx context.Context, req plandomain.CreatePlanRequest) (plandomain.Plan, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return plandomain.Plan{}, plandomain.ErrInvalidName
	}
	if req.Price <= 0 {
		return plandomain.Plan{}, plandomain.ErrInvalidPrice
	}

	now := s.clock.Now()
	plan := plandomain.Plan{
		ID:        s.genID.Generate(),
		Code:      slug.Make(name),
		Name:      name,
		Price:     req.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &plan); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return plandomain.Plan{}, plandomain.ErrPlanCodeExists
		}
		return plandomain.Plan{}, err
	}

	s.log.Info("plan created",
		zap.String("plan_id", plan.ID.String()),
		zap.String("code", plan.Code),
		zap.Float64("price", plan.Price),
	)
	return plan, nil
}

func (s *Service) Update(ctx context.Context, id string, req plandomain.UpdatePlanRequest) (plandomain.Plan, error) {
	planID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return plandomain.Plan{}, plandomain.ErrPlanNotFound
	}

	patch := plandomain.PlanPatch{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return plandomain.Plan{}, plandomain.ErrInvalidName
		}
		patch.Name = &name
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return plandomain.Plan{}, plandomain.ErrInvalidPrice
		}
		patch.Price = req.Price
	}

	matched, err := s.repo.Update(ctx, s.db, planID, patch, s.clock.Now())
	if err != nil {
		return plandomain.Plan{}, err
	}
	if matched == 0 {
		return plandomain.Plan{}, plandomain.ErrPlanNotFound
	}

	updated, err := s.repo.FindByID(ctx, s.db, planID)
	if err != nil {
		return plandomain.Plan{}, err
	}
	if updated == nil {
		return plandomain.Plan{}, plandomain.ErrPlanNotFound
	}
	return *updated, nil
}
