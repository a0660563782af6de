package main

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/charity/internal/clock"
	"github.com/smallbiznis/charity/internal/config"
	"github.com/smallbiznis/charity/internal/migration"
	"github.com/smallbiznis/charity/internal/observability"
	"github.com/smallbiznis/charity/internal/seed"
	"github.com/smallbiznis/charity/internal/server"
	"github.com/smallbiznis/charity/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		seed.Module,

		// Routes, gateways, campaign and donation services.
		server.Module,
	)
	app.Run()
}

// RegisterSnowflake uses SNOWFLAKE_NODE_ID so replicas never mint the same id.
func RegisterSnowflake() (*snowflake.Node, error) {
	nodeID := int64(1)
	if raw := os.Getenv("SNOWFLAKE_NODE_ID"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		nodeID = parsed
	}
	return snowflake.NewNode(nodeID)
}
