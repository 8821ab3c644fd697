package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/resaleops/stockroom/internal/catalog"
	"github.com/resaleops/stockroom/internal/clock"
	"github.com/resaleops/stockroom/internal/config"
	"github.com/resaleops/stockroom/internal/migration"
	"github.com/resaleops/stockroom/internal/observability"
	"github.com/resaleops/stockroom/internal/server"
	"github.com/resaleops/stockroom/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		catalog.Module,
		migration.Module,
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
