package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/faturahq/fatura/internal/authorization"
	"github.com/faturahq/fatura/internal/clock"
	"github.com/faturahq/fatura/internal/config"
	orderdomain "github.com/faturahq/fatura/internal/order/domain"
	orderrepository "github.com/faturahq/fatura/internal/order/repository"
	orderservice "github.com/faturahq/fatura/internal/order/service"
	plandomain "github.com/faturahq/fatura/internal/plan/domain"
	planrepository "github.com/faturahq/fatura/internal/plan/repository"
	planservice "github.com/faturahq/fatura/internal/plan/service"
	subscriptiondomain "github.com/faturahq/fatura/internal/subscription/domain"
	subscriptionrepository "github.com/faturahq/fatura/internal/subscription/repository"
	teamdomain "github.com/faturahq/fatura/internal/team/domain"
	teamrepository "github.com/faturahq/fatura/internal/team/repository"
	userdomain "github.com/faturahq/fatura/internal/user/domain"
	userrepository "github.com/faturahq/fatura/internal/user/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type serverFixture struct {
	db      *gorm.DB
	server  *Server
	node    *snowflake.Node
	adminID snowflake.ID
	userID  snowflake.ID
}

func setupServer(t *testing.T) *serverFixture {
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
	now := fakeClock.Now()
	log := zap.NewNop()

	admin := userdomain.User{ID: node.Generate(), Email: "admin@example.com", Name: "Admin", IsAdmin: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(&admin).Error)
	member := userdomain.User{ID: node.Generate(), Email: "member@example.com", Name: "Member", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(&member).Error)

	userRepo := userrepository.Provide()
	teamRepo := teamrepository.Provide()
	subscriptionRepo := subscriptionrepository.Provide()
	planRepo := planrepository.Provide()
	orderRepo := orderrepository.Provide()

	policy := config.NewStaticBillingPolicyHolder(config.BillingPolicy{Currency: "SAR", DaysPerMonth: 30})

	planSvc := planservice.NewService(planservice.ServiceParam{
		DB: db, Log: log, GenID: node, Clock: fakeClock, Policy: policy,
		Repo: planRepo, TeamRepo: teamRepo, SubscriptionRepo: subscriptionRepo, OrderRepo: orderRepo,
	})
	orderSvc := orderservice.NewService(orderservice.ServiceParam{
		DB: db, Log: log, GenID: node, Clock: fakeClock,
		Repo: orderRepo, SubscriptionRepo: subscriptionRepo, TeamRepo: teamRepo, UserRepo: userRepo,
	})

	enforcer, err := authorization.NewEnforcer(db)
	require.NoError(t, err)
	authzSvc := authorization.NewService(authorization.Params{
		DB: db, Log: log, Enforcer: enforcer, UserRepo: userRepo,
	})

	cfg := &config.Config{Environment: "test", IdentityHeader: "X-User-ID"}
	engine := NewEngine(cfg, nil)
	srv := NewServer(ServerParams{
		Gin: engine, Cfg: cfg, Log: log,
		PlanSvc: planSvc, OrderSvc: orderSvc, AuthzSvc: authzSvc,
	})

	return &serverFixture{db: db, server: srv, node: node, adminID: admin.ID, userID: member.ID}
}

func (f *serverFixture) request(t *testing.T, method, path string, userID snowflake.ID, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-User-ID", userID.String())
	}

	rec := httptest.NewRecorder()
	f.server.Engine().ServeHTTP(rec, req)
	return rec
}

func TestListPlansIsPublic(t *testing.T) {
	f := setupServer(t)

	rec := f.request(t, http.MethodGet, "/api/plans", 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreatePlanRequiresAdmin(t *testing.T) {
	f := setupServer(t)
	body := map[string]any{"name": "Pro", "price": 99.0}

	rec := f.request(t, http.MethodPost, "/api/plans", 0, body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/plans", f.userID, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.request(t, http.MethodPost, "/api/plans", f.adminID, body)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdatePlanUnknownIsNotFound(t *testing.T) {
	f := setupServer(t)

	body := map[string]any{"price": 10.0}
	rec := f.request(t, http.MethodPatch, "/api/plans/"+f.node.Generate().String(), f.adminID, body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpgradeWithoutTeamReturnsVerbatimMessage(t *testing.T) {
	f := setupServer(t)

	body := map[string]any{"new_plan_id": f.node.Generate().String()}
	rec := f.request(t, http.MethodPost, "/api/plans/upgrade", f.userID, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "User does not belong to any team", resp.Error.Message)
}

func TestGetOrderUnknownIsNotFound(t *testing.T) {
	f := setupServer(t)

	rec := f.request(t, http.MethodGet, "/api/orders/"+f.node.Generate().String(), f.adminID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	f := setupServer(t)

	rec := f.request(t, http.MethodGet, "/api/nope", f.adminID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
