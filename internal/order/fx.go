package order

import (
	"github.com/faturahq/fatura/internal/order/repository"
	"github.com/faturahq/fatura/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
