package location

import (
	"github.com/resaleops/stockroom/internal/location/repository"
	"github.com/resaleops/stockroom/internal/location/service"
	"go.uber.org/fx"
)

var Module = fx.Module("location.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
