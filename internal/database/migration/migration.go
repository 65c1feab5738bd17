package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// SentinelTable is the table whose presence marks the schema as installed.
const SentinelTable = "intake_submissions"

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_intake_submissions",
		SQL: `CREATE TABLE IF NOT EXISTS intake_submissions (
  id                UUID        PRIMARY KEY,
  serial_number     TEXT        NOT NULL,
  full_name         TEXT        NOT NULL,
  phone             TEXT        NOT NULL,
  branch            TEXT        NOT NULL,
  insurance_company TEXT        NOT NULL,
  payload           JSONB       NOT NULL,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_intake_submissions_serial_number",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_intake_submissions_serial_number ON intake_submissions (serial_number);`,
	},
	{
		Name: "create_index_intake_submissions_branch",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_intake_submissions_branch ON intake_submissions (branch);`,
	},
	{
		Name: "create_index_intake_submissions_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_intake_submissions_created_at ON intake_submissions (created_at);`,
	},
}

// EnsureMigrated creates the submission schema unless the sentinel table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With("component", "database", "db_host", dbHost)
	log.Info("db_migration_check", "status", "starting")

	var exists bool
	query := "SELECT to_regclass('public." + SentinelTable + "') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"reason", "schema already exists",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
