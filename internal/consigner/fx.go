package consigner

import (
	"github.com/resaleops/stockroom/internal/consigner/repository"
	"github.com/resaleops/stockroom/internal/consigner/service"
	"go.uber.org/fx"
)

var Module = fx.Module("consigner.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
