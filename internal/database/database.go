package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	"unicode"

	"petshop/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewGormLogger logs slow queries and real failures to w. Lookups that find
// no row are expected and stay silent.
func NewGormLogger(w gormlogger.Writer) gormlogger.Interface {
	return gormlogger.New(w, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Connect opens a GORM connection for driver ("postgres" or "sqlite").
func Connect(driver, dsn string) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		// Maps driver unique violations to gorm.ErrDuplicatedKey.
		TranslateError: true,
		Logger:         NewGormLogger(log.New(os.Stdout, "\r\n", log.LstdFlags)),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(dsn), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		// SQLite allows a single writer; one connection keeps transactions
		// from failing with "database is locked".
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Pet{},
		&models.CareService{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Appointment{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// OpenSQLiteMemory opens and migrates a private in-memory database named name.
// Used by tests and local runs without postgres.
func OpenSQLiteMemory(name string) (*gorm.DB, error) {
	safe := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, name)
	db, err := Connect("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", safe))
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
