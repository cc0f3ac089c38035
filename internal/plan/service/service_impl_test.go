package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/faturahq/fatura/internal/authctx"
	"github.com/faturahq/fatura/internal/clock"
	"github.com/faturahq/fatura/internal/config"
	orderdomain "github.com/faturahq/fatura/internal/order/domain"
	orderrepository "github.com/faturahq/fatura/internal/order/repository"
	plandomain "github.com/faturahq/fatura/internal/plan/domain"
	planrepository "github.com/faturahq/fatura/internal/plan/repository"
	subscriptiondomain "github.com/faturahq/fatura/internal/subscription/domain"
	subscriptionrepository "github.com/faturahq/fatura/internal/subscription/repository"
	teamdomain "github.com/faturahq/fatura/internal/team/domain"
	teamrepository "github.com/faturahq/fatura/internal/team/repository"
	userdomain "github.com/faturahq/fatura/internal/user/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupPlanService(t *testing.T) (*gorm.DB, plandomain.Service, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&teamdomain.Team{},
		&plandomain.Plan{},
		&subscriptiondomain.Subscription{},
		&orderdomain.Order{},
		&subscriptiondomain.SubscriptionActivation{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	svc := NewService(ServiceParam{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  fakeClock,
		Policy: config.NewStaticBillingPolicyHolder(config.BillingPolicy{Currency: "SAR", DaysPerMonth: 30}),

		Repo:             planrepository.Provide(),
		TeamRepo:         teamrepository.Provide(),
		SubscriptionRepo: subscriptionrepository.Provide(),
		OrderRepo:        orderrepository.Provide(),
	})
	return db, svc, node, fakeClock
}

type upgradeFixture struct {
	userID         snowflake.ID
	teamID         snowflake.ID
	subscriptionID snowflake.ID
	currentPlanID  snowflake.ID
	newPlanID      snowflake.ID
	cycleEnd       time.Time
}

func seedUpgradeFixture(t *testing.T, db *gorm.DB, node *snowflake.Node, now time.Time, currentPrice, newPrice float64, cycleEnd time.Time) upgradeFixture {
	t.Helper()

	user := userdomain.User{ID: node.Generate(), Email: fmt.Sprintf("%s@example.com", t.Name()), Name: "Owner", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(&user).Error)

	team := teamdomain.Team{ID: node.Generate(), UserID: user.ID, Name: "Team", IsPersonal: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(&team).Error)

	currentPlan := plandomain.Plan{ID: node.Generate(), Code: "basic", Name: "Basic", Price: currentPrice, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(&currentPlan).Error)

	newPlan := plandomain.Plan{ID: node.Generate(), Code: "standard", Name: "Standard", Price: newPrice, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(&newPlan).Error)

	subscription := subscriptiondomain.Subscription{
		ID:        node.Generate(),
		TeamID:    team.ID,
		PlanID:    currentPlan.ID,
		Status:    subscriptiondomain.SubscriptionStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(&subscription).Error)

	initialOrder := orderdomain.Order{
		ID:             node.Generate(),
		SubscriptionID: subscription.ID,
		Amount:         currentPrice,
		Currency:       "SAR",
		Status:         orderdomain.OrderStatusPaid,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, db.Create(&initialOrder).Error)

	activation := subscriptiondomain.SubscriptionActivation{
		ID:             node.Generate(),
		SubscriptionID: subscription.ID,
		OrderID:        initialOrder.ID,
		StartDate:      now.AddDate(0, 0, -20),
		EndDate:        cycleEnd,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, db.Create(&activation).Error)

	return upgradeFixture{
		userID:         user.ID,
		teamID:         team.ID,
		subscriptionID: subscription.ID,
		currentPlanID:  currentPlan.ID,
		newPlanID:      newPlan.ID,
		cycleEnd:       cycleEnd,
	}
}

func TestCreatePlan(t *testing.T) {
	_, svc, _, _ := setupPlanService(t)

	plan, err := svc.Create(context.Background(), plandomain.CreatePlanRequest{Name: "Pro Plan", Price: 99.5})
	require.NoError(t, err)
	assert.Equal(t, "pro-plan", plan.Code)
	assert.Equal(t, "Pro Plan", plan.Name)
	assert.Equal(t, 99.5, plan.Price)
	assert.NotZero(t, plan.ID)
}

func TestCreatePlanRejectsInvalidInput(t *testing.T) {
	_, svc, _, _ := setupPlanService(t)

	_, err := svc.Create(context.Background(), plandomain.CreatePlanRequest{Name: "  ", Price: 10})
	assert.ErrorIs(t, err, plandomain.ErrInvalidName)

	_, err = svc.Create(context.Background(), plandomain.CreatePlanRequest{Name: "Pro", Price: 0})
	assert.ErrorIs(t, err, plandomain.ErrInvalidPrice)

	_, err = svc.Create(context.Background(), plandomain.CreatePlanRequest{Name: "Pro", Price: -5})
	assert.ErrorIs(t, err, plandomain.ErrInvalidPrice)
}

func TestUpdatePlanPartial(t *testing.T) {
	_, svc, _, _ := setupPlanService(t)

	plan, err := svc.Create(context.Background(), plandomain.CreatePlanRequest{Name: "Basic", Price: 30})
	require.NoError(t, err)

	newPrice := 45.0
	updated, err := svc.Update(context.Background(), plan.ID.String(), plandomain.UpdatePlanRequest{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, 45.0, updated.Price)
	assert.Equal(t, "Basic", updated.Name)

	newName := "Basic v2"
	updated, err = svc.Update(context.Background(), plan.ID.String(), plandomain.UpdatePlanRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Basic v2", updated.Name)
	assert.Equal(t, 45.0, updated.Price)
}

func TestUpdatePlanNotFound(t *testing.T) {
	_, svc, node, _ := setupPlanService(t)

	newPrice := 45.0
	_, err := svc.Update(context.Background(), node.Generate().String(), plandomain.UpdatePlanRequest{Price: &newPrice})
	assert.ErrorIs(t, err, plandomain.ErrPlanNotFound)

	_, err = svc.Update(context.Background(), "not-a-snowflake", plandomain.UpdatePlanRequest{Price: &newPrice})
	assert.ErrorIs(t, err, plandomain.ErrPlanNotFound)
}

func TestUpgradeProratesTenRemainingDays(t *testing.T) {
	db, svc, node, fakeClock := setupPlanService(t)
	now := fakeClock.Now()

	// 10 full days left on a 30/SAR plan moving to 60/SAR: (60-30)/30*10 = 10.
	fix := seedUpgradeFixture(t, db, node, now, 30, 60, now.Add(10*24*time.Hour))
	ctx := authctx.WithUserID(context.Background(), fix.userID)

	resp, err := svc.Upgrade(ctx, plandomain.UpgradePlanRequest{NewPlanID: fix.newPlanID.String()})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.InDelta(t, 10.0, resp.ProratedPrice, 0.0001)
	assert.Equal(t, fix.newPlanID.String(), resp.PlanID)
	assert.Equal(t, fix.cycleEnd, resp.CycleEnd.UTC())

	// Order is pending in the policy currency.
	var order orderdomain.Order
	require.NoError(t, db.Where("id = ?", resp.OrderID).First(&order).Error)
	assert.Equal(t, orderdomain.OrderStatusPending, order.Status)
	assert.Equal(t, "SAR", order.Currency)
	assert.InDelta(t, 10.0, order.Amount, 0.0001)
	assert.Equal(t, fix.subscriptionID, order.SubscriptionID)

	// Subscription now points at the new plan.
	var subscription subscriptiondomain.Subscription
	require.NoError(t, db.Where("id = ?", fix.subscriptionID).First(&subscription).Error)
	assert.Equal(t, fix.newPlanID, subscription.PlanID)

	// A new activation starts now and keeps the original cycle end.
	var activations []subscriptiondomain.SubscriptionActivation
	require.NoError(t, db.Where("subscription_id = ?", fix.subscriptionID).Order("start_date asc").Find(&activations).Error)
	require.Len(t, activations, 2)
	latest := activations[1]
	assert.Equal(t, now, latest.StartDate.UTC())
	assert.Equal(t, fix.cycleEnd, latest.EndDate.UTC())
	assert.Equal(t, order.ID, latest.OrderID)
}

func TestUpgradeReplayedHasOneWinner(t *testing.T) {
	db, svc, node, fakeClock := setupPlanService(t)
	now := fakeClock.Now()

	fix := seedUpgradeFixture(t, db, node, now, 30, 60, now.Add(10*24*time.Hour))
	ctx := authctx.WithUserID(context.Background(), fix.userID)

	resp, err := svc.Upgrade(ctx, plandomain.UpgradePlanRequest{NewPlanID: fix.newPlanID.String()})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, resp.ProratedPrice, 0.0001)

	// A second upgrade to the same plan sees the winner's plan_id and fails
	// the price check, so only one upgrade ever bills.
	_, err = svc.Upgrade(ctx, plandomain.UpgradePlanRequest{NewPlanID: fix.newPlanID.String()})
	assert.ErrorIs(t, err, plandomain.ErrNotAnUpgrade)

	var activations int64
	require.NoError(t, db.Model(&subscriptiondomain.SubscriptionActivation{}).
		Where("subscription_id = ?", fix.subscriptionID).Count(&activations).Error)
	assert.Equal(t, int64(2), activations)

	var pendingOrders int64
	require.NoError(t, db.Model(&orderdomain.Order{}).
		Where("subscription_id = ? AND status = ?", fix.subscriptionID, orderdomain.OrderStatusPending).Count(&pendingOrders).Error)
	assert.Equal(t, int64(1), pendingOrders)

	// The losing attempt left the cycle window untouched.
	var latest subscriptiondomain.SubscriptionActivation
	require.NoError(t, db.Where("subscription_id = ?", fix.subscriptionID).
		Order("start_date desc, id desc").First(&latest).Error)
	assert.Equal(t, fix.cycleEnd, latest.EndDate.UTC())
}

func TestUpgradeRoundsPartialDaysUp(t *testing.T) {
	db, svc, node, fakeClock := setupPlanService(t)
	now := fakeClock.Now()

	// 10 days and one hour left counts as 11 billable days.
	fix := seedUpgradeFixture(t, db, node, now, 30, 60, now.Add(10*24*time.Hour+time.Hour))
	ctx := authctx.WithUserID(context.Background(), fix.userID)

	resp, err := svc.Upgrade(ctx, plandomain.UpgradePlanRequest{NewPlanID: fix.newPlanID.String()})
	require.NoError(t, err)
	assert.InDelta(t, 11.0, resp.ProratedPrice, 0.0001)
}

func TestUpgradeExpiredCycleIsFree(t *testing.T) {
	db, svc, node, fakeClock := setupPlanService(t)
	now := fakeClock.Now()

	// Cycle already over: the switch still happens but bills nothing.
	fix := seedUpgradeFixture(t, db, node, now, 30, 60, now.Add(-5*24*time.Hour))
	ctx := authctx.WithUserID(context.Background(), fix.userID)

	resp, err := svc.Upgrade(ctx, plandomain.UpgradePlanRequest{NewPlanID: fix.newPlanID.String()})
	require.NoError(t, err)
	assert.Equal(t, 0.0, resp.ProratedPrice)

	var subscription subscriptiondomain.Subscription
	require.NoError(t, db.Where("id = ?", fix.subscriptionID).First(&subscription).Error)
	assert.Equal(t, fix.newPlanID, subscription.PlanID)
}

func TestUpgradeRejectsNonUpgrade(t *testing.T) {
	db, svc, node, fakeClock := setupPlanService(t)
	now := fakeClock.Now()

	fix := seedUpgradeFixture(t, db, node, now, 60, 30, now.Add(10*24*time.Hour))
	ctx := authctx.WithUserID(context.Background(), fix.userID)

	_, err := svc.Upgrade(ctx, plandomain.UpgradePlanRequest{NewPlanID: fix.newPlanID.String()})
	assert.ErrorIs(t, err, plandomain.ErrNotAnUpgrade)

	// Equal price is not an upgrade either.
	_, err = svc.Upgrade(ctx, plandomain.UpgradePlanRequest{NewPlanID: fix.currentPlanID.String()})
	assert.ErrorIs(t, err, plandomain.ErrNotAnUpgrade)

	// Nothing changed.
	var subscription subscriptiondomain.Subscription
	require.NoError(t, db.Where("id = ?", fix.subscriptionID).First(&subscription).Error)
	assert.Equal(t, fix.currentPlanID, subscription.PlanID)

	var count int64
	require.NoError(t, db.Model(&orderdomain.Order{}).Where("status = ?", orderdomain.OrderStatusPending).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpgradeRejectsUnknownPlan(t *testing.T) {
	db, svc, node, fakeClock := setupPlanService(t)
	now := fakeClock.Now()

	fix := seedUpgradeFixture(t, db, node, now, 30, 60, now.Add(10*24*time.Hour))
	ctx := authctx.WithUserID(context.Background(), fix.userID)

	_, err := svc.Upgrade(ctx, plandomain.UpgradePlanRequest{NewPlanID: node.Generate().String()})
	assert.ErrorIs(t, err, plandomain.ErrInvalidPlanID)

	_, err = svc.Upgrade(ctx, plandomain.UpgradePlanRequest{NewPlanID: "garbage"})
	assert.ErrorIs(t, err, plandomain.ErrInvalidPlanID)
}

func TestUpgradeRequiresTeam(t *testing.T) {
	db, svc, node, fakeClock := setupPlanService(t)
	now := fakeClock.Now()

	user := userdomain.User{ID: node.Generate(), Email: "loner@example.com", Name: "Loner", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(&user).Error)

	ctx := authctx.WithUserID(context.Background(), user.ID)
	_, err := svc.Upgrade(ctx, plandomain.UpgradePlanRequest{NewPlanID: node.Generate().String()})
	assert.ErrorIs(t, err, plandomain.ErrNoTeam)

	// Missing identity behaves the same as a user without a team.
	_, err = svc.Upgrade(context.Background(), plandomain.UpgradePlanRequest{NewPlanID: node.Generate().String()})
	assert.ErrorIs(t, err, plandomain.ErrNoTeam)
}

func TestUpgradeRequiresSubscription(t *testing.T) {
	db, svc, node, fakeClock := setupPlanService(t)
	now := fakeClock.Now()

	user := userdomain.User{ID: node.Generate(), Email: "nosub@example.com", Name: "No Sub", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(&user).Error)
	team := teamdomain.Team{ID: node.Generate(), UserID: user.ID, Name: "Team", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(&team).Error)
	plan := plandomain.Plan{ID: node.Generate(), Code: "standard", Name: "Standard", Price: 60, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(&plan).Error)

	ctx := authctx.WithUserID(context.Background(), user.ID)
	_, err := svc.Upgrade(ctx, plandomain.UpgradePlanRequest{NewPlanID: plan.ID.String()})
	assert.ErrorIs(t, err, plandomain.ErrNoSubscription)
}

func TestUpgradeRequiresActivation(t *testing.T) {
	db, svc, node, fakeClock := setupPlanService(t)
	now := fakeClock.Now()

	fix := seedUpgradeFixture(t, db, node, now, 30, 60, now.Add(10*24*time.Hour))
	require.NoError(t, db.Where("subscription_id = ?", fix.subscriptionID).Delete(&subscriptiondomain.SubscriptionActivation{}).Error)

	ctx := authctx.WithUserID(context.Background(), fix.userID)
	_, err := svc.Upgrade(ctx, plandomain.UpgradePlanRequest{NewPlanID: fix.newPlanID.String()})
	assert.ErrorIs(t, err, plandomain.ErrNoActivation)

	// The rejected upgrade must not have switched the plan.
	var subscription subscriptiondomain.Subscription
	require.NoError(t, db.Where("id = ?", fix.subscriptionID).First(&subscription).Error)
	assert.Equal(t, fix.currentPlanID, subscription.PlanID)
}
