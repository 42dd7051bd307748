package db

import (
	"context"
	"database/sql"
	"fmt"
	"oauth2-token-store/config"
	"oauth2-token-store/logger"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

// DSN builds a key/value connection string. Passwords are omitted when
// withPassword is false so the result is safe to log.
func DSN(cfg config.Config, withPassword bool) string {
	d := cfg.Database
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Name, d.SSLMode)
	if withPassword && d.Password != "" {
		dsn += fmt.Sprintf(" password=%s", d.Password)
	}
	return dsn
}

// DriverName maps the configured driver onto a registered database/sql driver.
func DriverName(cfg config.Config) (string, error) {
	switch cfg.Database.Driver {
	case "", "postgres", "pq":
		return "postgres", nil
	case "pgx":
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// Connect opens the connection pool shared by every repository and verifies it.
// The pool belongs to the caller; repositories never close it.
func Connect(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	driver, err := DriverName(cfg)
	if err != nil {
		return nil, err
	}

	logger.Log.WithField("connection", DSN(cfg, false)).WithField("driver", driver).Info("Attempting to connect to the database")

	db, err := sql.Open(driver, DSN(cfg, true))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to open database connection")
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		logger.Log.WithError(err).Error("Failed to ping database")
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Log.Info("Database connection established successfully")
	return db, nil
}
