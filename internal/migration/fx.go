package migration

import (
	"github.com/smallbiznis/charity/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations", fx.Invoke(migrateOnBoot))

func migrateOnBoot(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
	if !cfg.DBAutoMigrate {
		return nil
	}
	log = log.Named("migration").With(zap.String("dialect", conn.Dialector.Name()))

	if conn.Dialector.Name() != "postgres" {
		log.Info("creating schema from models")
		return AutoMigrate(conn)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	res, err := Up(sqlDB)
	if err != nil {
		return err
	}
	log.Info("schema ready",
		zap.Uint("version", res.Version),
		zap.Bool("changed", res.Changed),
		zap.Bool("dirty", res.Dirty),
	)
	return nil
}
