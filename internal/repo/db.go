package repo

import (
	"PartsKeeper/internal/model"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// DefaultDSN — локальная SQLite рядом с сервером, если DATABASE_URI не задан.
const DefaultDSN = "file:partskeeper_audit.db?_pragma=busy_timeout(5000)"

// InitDB открывает локальную БД для резервного журнала.
// postgres:// и DSN вида "host=... user=..." уходят в Postgres, остальное — в SQLite (modernc).
func InitDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	var dial gorm.Dialector
	if isPostgresDSN(dsn) {
		dial = postgres.Open(dsn)
	} else {
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	}
	db, err := gorm.Open(dial, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&model.AuditEntry{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}
