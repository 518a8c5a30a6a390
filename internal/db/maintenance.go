package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// maintenanceStatement returns the housekeeping statement for driver:
// a WAL checkpoint for SQLite, planner statistics for Postgres.
func maintenanceStatement(driver string) (string, error) {
	switch driver {
	case DriverSQLite:
		return "PRAGMA wal_checkpoint(TRUNCATE)", nil
	case DriverPostgres:
		return "ANALYZE password_records", nil
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}

// StartMaintenance runs the driver's housekeeping statement every interval
// until ctx is done. Failures are logged and retried on the next tick.
func StartMaintenance(
	ctx context.Context,
	db *sql.DB,
	driver string,
	interval time.Duration,
	log *zap.Logger,
) error {
	stmt, err := maintenanceStatement(driver)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if _, err := db.ExecContext(ctx, stmt); err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Error("storage maintenance failed", zap.String("driver", driver), zap.Error(err))
					continue
				}
				log.Debug("storage maintenance done", zap.String("driver", driver), zap.Duration("took", time.Since(start)))
			}
		}
	}()
	return nil
}
