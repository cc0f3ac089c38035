package plan

import (
	"github.com/faturahq/fatura/internal/plan/repository"
	"github.com/faturahq/fatura/internal/plan/service"
	"go.uber.org/fx"
)

var Module = fx.Module("plan",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
