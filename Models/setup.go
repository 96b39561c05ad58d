package Models

import (
	"fmt"
	"net"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/vishwajeetguru/smart-truck-manager/Config"
	"github.com/vishwajeetguru/smart-truck-manager/Logger"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the configured database, tunes the pool and migrates every table.
func Connect(cfg Config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialect(cfg)
	if err != nil {
		return nil, err
	}

	connection, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	if sqlDB, derr := connection.DB(); derr == nil && sqlDB != nil {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns >= 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := Migrate(connection); err != nil {
		return nil, err
	}

	DB = connection
	Logger.Log.Info().Str("driver", cfg.Driver).Msg("connected to database")
	return connection, nil
}

func dialect(cfg Config.DatabaseConfig) (gorm.Dialector, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "sqlite":
		return sqlite.Open(cfg.Path), nil
	case "mysql":
		port := cfg.Port
		if port == "" {
			port = "3306"
		}
		dsn := mysqldriver.NewConfig()
		dsn.User = cfg.User
		dsn.Passwd = cfg.Password
		dsn.Net = "tcp"
		dsn.Addr = net.JoinHostPort(cfg.Host, port)
		dsn.DBName = cfg.Name
		dsn.ParseTime = true
		dsn.Loc = time.Local
		dsn.Params = map[string]string{"charset": "utf8mb4"}
		return mysql.Open(dsn.FormatDSN()), nil
	case "postgres":
		port := cfg.Port
		if port == "" {
			port = "5432"
		}
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.Host, cfg.User, cfg.Password, cfg.Name, port, cfg.SSLMode)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// Migrate creates or updates every table, parents before children.
func Migrate(db *gorm.DB) error {
	steps := [][]interface{}{
		{&Profile{}, &OTPCode{}},
		{&Truck{}, &Supplier{}, &Material{}, &PetrolPump{}, &Notice{}},
		{&Driver{}, &Trip{}, &Expense{}},
		{&Payment{}, &FuelExpense{}, &DriverPayment{}},
	}
	for _, models := range steps {
		if err := db.AutoMigrate(models...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}
	return nil
}
