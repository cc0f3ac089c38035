package migration

import (
	"github.com/faturahq/fatura/internal/config"
	orderdomain "github.com/faturahq/fatura/internal/order/domain"
	plandomain "github.com/faturahq/fatura/internal/plan/domain"
	"github.com/faturahq/fatura/internal/seed"
	subscriptiondomain "github.com/faturahq/fatura/internal/subscription/domain"
	teamdomain "github.com/faturahq/fatura/internal/team/domain"
	userdomain "github.com/faturahq/fatura/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg *config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Non-postgres deployments (sqlite dev databases) build the
			// schema from the models directly.
			if err := conn.AutoMigrate(
				&userdomain.User{},
				&teamdomain.Team{},
				&plandomain.Plan{},
				&subscriptiondomain.Subscription{},
				&orderdomain.Order{},
				&subscriptiondomain.SubscriptionActivation{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoData(conn)
		}
		return nil
	}),
)
