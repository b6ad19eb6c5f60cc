package seed

import (
	"testing"

	"github.com/TaxiPark/TaxiPark/internal/model"
	"github.com/TaxiPark/TaxiPark/internal/testutil"
)

func TestRunSeedsOnceOnly(t *testing.T) {
	gdb := testutil.OpenTestDB(t, "seed_run")

	if err := Run(gdb); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var cars, drivers int64
	if err := gdb.Model(&model.Car{}).Count(&cars).Error; err != nil {
		t.Fatalf("count cars: %v", err)
	}
	if err := gdb.Model(&model.Driver{}).Count(&drivers).Error; err != nil {
		t.Fatalf("count drivers: %v", err)
	}
	if cars != 7 || drivers != 5 {
		t.Fatalf("expected 7 cars / 5 drivers, got %d / %d", cars, drivers)
	}

	// A second run must not touch a non-empty database.
	if err := Run(gdb); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if err := gdb.Model(&model.Car{}).Count(&cars).Error; err != nil {
		t.Fatalf("count cars: %v", err)
	}
	if cars != 7 {
		t.Fatalf("second run must be a no-op, got %d cars", cars)
	}

	// Every seeded reference points at an existing car.
	var assigned []model.Driver
	if err := gdb.Where("car_id IS NOT NULL").Find(&assigned).Error; err != nil {
		t.Fatalf("load drivers: %v", err)
	}
	for _, d := range assigned {
		var n int64
		if err := gdb.Model(&model.Car{}).Where("id = ?", *d.CarID).Count(&n).Error; err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 1 {
			t.Fatalf("driver %d references missing car %d", d.ID, *d.CarID)
		}
	}
}
