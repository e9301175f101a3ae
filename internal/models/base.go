package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// BaseModel contains common columns for all tables
type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *BaseModel) BeforeCreate(tx *gorm.DB) error {
	base.EnsureID()
	return nil
}

// EnsureID assigns a UUID when the record has none yet.
func (base *BaseModel) EnsureID() {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	DSN     string
	Verbose bool
}

// InitDB opens the database behind the development patient API and migrates its tables.
// Postgres DSNs (URL or key=value form) use the postgres driver, anything else MySQL.
func InitDB(config DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	if config.Verbose {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(dialectorFor(config.DSN), gormConfig)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&PatientRecord{},
		&PatientDocument{},
	); err != nil {
		return nil, err
	}

	return db, nil
}

func dialectorFor(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return postgres.Open(dsn)
	}
	return mysql.Open(dsn)
}
