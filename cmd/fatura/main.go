package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/faturahq/fatura/internal/authorization"
	"github.com/faturahq/fatura/internal/clock"
	"github.com/faturahq/fatura/internal/config"
	"github.com/faturahq/fatura/internal/logger"
	"github.com/faturahq/fatura/internal/metrics"
	"github.com/faturahq/fatura/internal/migration"
	"github.com/faturahq/fatura/internal/order"
	"github.com/faturahq/fatura/internal/plan"
	"github.com/faturahq/fatura/internal/server"
	"github.com/faturahq/fatura/internal/subscription"
	"github.com/faturahq/fatura/internal/team"
	"github.com/faturahq/fatura/internal/user"
	"github.com/faturahq/fatura/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,
		db.Module,
		metrics.Module,
		migration.Module,

		// Functional domains
		user.Module,
		team.Module,
		subscription.Module,
		plan.Module,
		order.Module,
		authorization.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
