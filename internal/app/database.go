package app

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/vietbooks/bookstore/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// getDatabase opens the configured database. Postgres is the production
// backend; sqlite exists for development and tests.
func getDatabase(cfg config.DBConfig, workdir string) *gorm.DB {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite":
		dsn := filepath.Join(workdir, cfg.Name+".db") + "?_pragma=busy_timeout(10000)"
		dialector = sqlite.Open(dsn)
	default:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=%s",
			cfg.Host, cfg.User, cfg.Passwd, cfg.Name, cfg.Port, time.Local.String())
		dialector = postgres.Open(dsn)
	}

	logLevel := logger.Silent
	if cfg.Type != "sqlite" {
		logLevel = logger.Error
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		zap.S().Panicf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		zap.S().Panicf("failed to access database pool: %v", err)
	}
	if cfg.MaxConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
	}
	if cfg.IdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.IdleConn)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db
}
