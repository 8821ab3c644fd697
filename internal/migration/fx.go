package migration

import (
	"github.com/resaleops/stockroom/internal/catalog"
	"github.com/resaleops/stockroom/internal/config"
	consignerdomain "github.com/resaleops/stockroom/internal/consigner/domain"
	itemdomain "github.com/resaleops/stockroom/internal/item/domain"
	locationdomain "github.com/resaleops/stockroom/internal/location/domain"
	payoutdomain "github.com/resaleops/stockroom/internal/payout/domain"
	"github.com/resaleops/stockroom/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, holder *catalog.Holder) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql are dev conveniences; the schema comes from the
			// model definitions there.
			err := conn.AutoMigrate(
				&locationdomain.Location{},
				&consignerdomain.Consigner{},
				&itemdomain.Item{},
				&payoutdomain.Receipt{},
			)
			if err != nil {
				return err
			}
		}

		return seed.EnsureDefaultLocation(conn, holder.Get().Defaults.Location)
	}),
)
