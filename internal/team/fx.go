package team

import (
	"github.com/faturahq/fatura/internal/team/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("team",
	fx.Provide(repository.Provide),
)
