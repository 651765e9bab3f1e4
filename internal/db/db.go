package db

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"devrush/internal/config"
	"devrush/internal/model"
	"devrush/internal/repository"
	"devrush/internal/repository/memory"
)

// Models lists every table owned by the service, children last.
var Models = []interface{}{
	&model.User{},
	&model.Team{},
	&model.TeamMember{},
	&model.Submission{},
}

// mysqlTableOptions gives MySQL tables a binary collation so emails and join
// codes compare case-sensitively, as they do on Postgres and in memory.
const mysqlTableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"

// migrationDB returns the handle tables are created through for driver.
func migrationDB(gormDB *gorm.DB, driver string) *gorm.DB {
	if driver == config.StoreMySQL {
		return gormDB.Set("gorm:table_options", mysqlTableOptions)
	}
	return gormDB
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		// Unique violations surface as gorm.ErrDuplicatedKey.
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

// Open connects the configured store driver, migrates it, and returns the store.
func Open(cfg *config.Config, log *zap.Logger) (repository.Store, error) {
	var (
		gormDB *gorm.DB
		err    error
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Info("using in-memory store")
		return memory.NewStore(), nil
	case config.StoreMySQL:
		gormDB, err = NewMySQL(cfg.MySQLDSN)
	case config.StorePostgres:
		gormDB, err = NewPostgres(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.ResetDB {
		log.Warn("RESET_DB=true detected, dropping all tables")
		for i := len(Models) - 1; i >= 0; i-- {
			if err := gormDB.Migrator().DropTable(Models[i]); err != nil {
				log.Warn("drop table failed (may not exist)", zap.Error(err))
			}
		}
	}

	// Tables created before the collation was set keep theirs; RESET_DB recreates them.
	if err := migrationDB(gormDB, cfg.StoreDriver).AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	log.Info("database ready", zap.String("driver", cfg.StoreDriver))
	return repository.NewStore(gormDB), nil
}
