package migration

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sentinelQuery = "SELECT to_regclass('public.intake_submissions') IS NOT NULL"

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func TestEnsureMigrated(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(mock sqlmock.Sqlmock)
		wantErr    string
		wantLog    string
	}{
		{
			name: "schema exists",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantLog: "db_migration_skip",
		},
		{
			name: "fresh database",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
				for range steps {
					mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
				}
			},
			wantLog: "db_migration_success",
		},
		{
			name: "sentinel query fails",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).WillReturnError(errors.New("connection reset"))
			},
			wantErr: "failed to check sentinel table: connection reset",
			wantLog: "db_migration_failed",
		},
		{
			name: "step fails",
			setupMocks: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS intake_submissions").
					WillReturnError(errors.New("permission denied"))
			},
			wantErr: "migration step create_table_intake_submissions failed: permission denied",
			wantLog: `"migration_step":"create_table_intake_submissions"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setupMocks(mock)

			var buf bytes.Buffer
			err = EnsureMigrated(context.Background(), db, testLogger(&buf), "db.internal")

			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, buf.String(), tt.wantLog)
			assert.Contains(t, buf.String(), `"db_host":"db.internal"`)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
