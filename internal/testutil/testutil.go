// Package testutil holds shared test helpers.
package testutil

import (
	"fmt"
	"testing"

	"github.com/TaxiPark/TaxiPark/internal/common/db"
	"github.com/TaxiPark/TaxiPark/internal/model"
	"gorm.io/gorm"
)

// OpenTestDB opens an in-memory SQLite database with the schema migrated.
// Each name gets its own database, so tests stay isolated from each other.
// Cleanup happens via t.Cleanup.
func OpenTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	gdb, err := db.NewSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(&model.Car{}, &model.Driver{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
