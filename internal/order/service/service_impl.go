package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/faturahq/fatura/internal/authctx"
	"github.com/faturahq/fatura/internal/clock"
	"github.com/faturahq/fatura/internal/metrics"
	orderdomain "github.com/faturahq/fatura/internal/order/domain"
	subscriptiondomain "github.com/faturahq/fatura/internal/subscription/domain"
	teamdomain "github.com/faturahq/fatura/internal/team/domain"
	userdomain "github.com/faturahq/fatura/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock

	repo             orderdomain.Repository
	subscriptionRepo subscriptiondomain.Repository
	teamRepo         teamdomain.Repository
	userRepo         userdomain.Repository

	metrics *metrics.Metrics
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock

	Repo             orderdomain.Repository
	SubscriptionRepo subscriptiondomain.Repository
	TeamRepo         teamdomain.Repository
	UserRepo         userdomain.Repository

	Metrics *metrics.Metrics `optional:"true"`
}

func NewService(p ServiceParam) orderdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("order.service"),

		genID: p.GenID,
		clock: p.Clock,

		repo:             p.Repo,
		subscriptionRepo: p.SubscriptionRepo,
		teamRepo:         p.TeamRepo,
		userRepo:         p.UserRepo,

		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req orderdomain.CreateOrderRequest) (orderdomain.Order, error) {
	subscriptionID, err := snowflake.ParseString(strings.TrimSpace(req.SubscriptionID))
	if err != nil {
		return orderdomain.Order{}, orderdomain.ErrInvalidSubscriptionID
	}
	if req.Amount <= 0 {
		return orderdomain.Order{}, orderdomain.ErrInvalidAmount
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		return orderdomain.Order{}, orderdomain.ErrInvalidCurrency
	}

	subscription, err := s.subscriptionRepo.FindByID(ctx, s.db, subscriptionID)
	if err != nil {
		return orderdomain.Order{}, err
	}
	if subscription == nil {
		return orderdomain.Order{}, orderdomain.ErrInvalidSubscriptionID
	}
	if err := s.authorizeSubscription(ctx, subscription); err != nil {
		return orderdomain.Order{}, err
	}

	now := s.clock.Now()
	order := orderdomain.Order{
		ID:             s.genID.Generate(),
		SubscriptionID: subscription.ID,
		Amount:         req.Amount,
		Currency:       currency,
		// Orders always start pending regardless of the requested status.
		Status:    orderdomain.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &order); err != nil {
		return orderdomain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.OrdersCreated.Inc()
	}
	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("subscription_id", order.SubscriptionID.String()),
		zap.Float64("amount", order.Amount),
	)
	return order, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (orderdomain.Order, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return orderdomain.Order{}, orderdomain.ErrOrderNotFound
	}

	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return orderdomain.Order{}, err
	}
	if order == nil {
		return orderdomain.Order{}, orderdomain.ErrOrderNotFound
	}
	if err := s.authorizeOrder(ctx, order); err != nil {
		return orderdomain.Order{}, err
	}
	return *order, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, req orderdomain.UpdateOrderStatusRequest) (orderdomain.Order, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return orderdomain.Order{}, orderdomain.ErrOrderNotFound
	}

	status := orderdomain.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !orderdomain.ValidStatus(status) {
		return orderdomain.Order{}, orderdomain.ErrInvalidStatus
	}

	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return orderdomain.Order{}, err
	}
	if order == nil {
		return orderdomain.Order{}, orderdomain.ErrOrderNotFound
	}
	if err := s.authorizeOrder(ctx, order); err != nil {
		return orderdomain.Order{}, err
	}

	matched, err := s.repo.UpdateStatus(ctx, s.db, orderID, status, s.clock.Now())
	if err != nil {
		return orderdomain.Order{}, err
	}
	if matched == 0 {
		return orderdomain.Order{}, orderdomain.ErrOrderNotFound
	}

	updated, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return orderdomain.Order{}, err
	}
	if updated == nil {
		return orderdomain.Order{}, orderdomain.ErrOrderNotFound
	}

	s.log.Info("order status updated",
		zap.String("order_id", updated.ID.String()),
		zap.String("status", string(updated.Status)),
	)
	return *updated, nil
}

func (s *Service) authorizeOrder(ctx context.Context, order *orderdomain.Order) error {
	subscription, err := s.subscriptionRepo.FindByID(ctx, s.db, order.SubscriptionID)
	if err != nil {
		return err
	}
	if subscription == nil {
		return orderdomain.ErrNotOwner
	}
	return s.authorizeSubscription(ctx, subscription)
}

// authorizeSubscription allows the owner of the subscription's team and any
// admin; everyone else gets ErrNotOwner.
func (s *Service) authorizeSubscription(ctx context.Context, subscription *subscriptiondomain.Subscription) error {
	userID, ok := authctx.UserIDFromContext(ctx)
	if !ok {
		return orderdomain.ErrNotOwner
	}

	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if user != nil && user.IsAdmin {
		return nil
	}

	team, err := s.teamRepo.FindByID(ctx, s.db, subscription.TeamID)
	if err != nil {
		return err
	}
	if team == nil || team.UserID != userID {
		return orderdomain.ErrNotOwner
	}
	return nil
}
