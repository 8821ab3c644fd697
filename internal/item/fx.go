package item

import (
	"github.com/resaleops/stockroom/internal/item/repository"
	"github.com/resaleops/stockroom/internal/item/service"
	"go.uber.org/fx"
)

var Module = fx.Module("item.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
