package payout

import (
	"github.com/resaleops/stockroom/internal/payout/repository"
	"github.com/resaleops/stockroom/internal/payout/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payout.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
