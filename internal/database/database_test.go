package database

import (
	"testing"

	"laurel/internal/middleware"
	"laurel/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestQueryLabels(t *testing.T) {
	tests := []struct {
		name      string
		sql       string
		operation string
		table     string
	}{
		{"Select", `SELECT * FROM "promotions" WHERE id = 1`, "select", "promotions"},
		{"Insert", `INSERT INTO "promotion_badges" (promotion_id) VALUES (1)`, "insert", "promotion_badges"},
		{"Update", `UPDATE "users" SET current_level = 'engineer-3'`, "update", "users"},
		{"Delete", `DELETE FROM "promotion_badges" WHERE promotion_id = 1`, "delete", "promotion_badges"},
		{"DDL", `CREATE UNIQUE INDEX idx ON promotion_badges (badge_application_id)`, "create", "unknown"},
		{"Empty", "", "unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			operation, table := queryLabels(tt.sql)
			if operation != tt.operation || table != tt.table {
				t.Fatalf("queryLabels(%q) = (%q, %q), want (%q, %q)",
					tt.sql, operation, table, tt.operation, tt.table)
			}
		})
	}
}

func TestTraceRecordsQueryLatency(t *testing.T) {
	before := testutil.CollectAndCount(observability.DatabaseQueryLatency)

	// Silent log level still feeds the histogram.
	gormLogger := &CustomGormLogger{
		logger: middleware.Logger,
		Config: logger.Config{LogLevel: logger.Silent},
	}
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormLogger})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	var count int64
	if err := db.Table("promotions").Count(&count).Error; err != nil {
		t.Fatalf("count query: %v", err)
	}

	after := testutil.CollectAndCount(observability.DatabaseQueryLatency)
	if after <= before {
		t.Fatalf("expected query latency series to grow, had %d before and %d after", before, after)
	}
}
