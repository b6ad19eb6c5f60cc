package driver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/TaxiPark/TaxiPark/internal/common/apperr"
	"github.com/TaxiPark/TaxiPark/internal/model"
	"github.com/TaxiPark/TaxiPark/internal/testutil"
	"gorm.io/gorm"
)

func ptr[T any](v T) *T { return &v }

func mustCar(t *testing.T, gdb *gorm.DB, plate string) *model.Car {
	t.Helper()
	c := &model.Car{Status: model.StatusFree, LicensePlate: plate, Brand: "Toyota", Color: "Red", Distance: 1}
	if err := gdb.Create(c).Error; err != nil {
		t.Fatalf("create car: %v", err)
	}
	return c
}

func TestCreateDriverDefaults(t *testing.T) {
	gdb := testutil.OpenTestDB(t, "driver_create")
	svc := NewService(gdb)
	ctx := context.Background()

	d, err := svc.Create(ctx, CreateInput{FullName: "Ivan Ivanov", Phone: "+79001112233"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.ID <= 0 {
		t.Fatalf("expected generated id")
	}
	if d.Rating != 5.0 {
		t.Fatalf("expected default rating 5.0, got %v", d.Rating)
	}
	if !d.IsActive {
		t.Fatalf("expected new driver active")
	}
	if d.CarID != nil {
		t.Fatalf("expected no car reference")
	}
	if d.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
}

func TestCreateDriverCarChecks(t *testing.T) {
	gdb := testutil.OpenTestDB(t, "driver_car_checks")
	svc := NewService(gdb)
	ctx := context.Background()

	// Referencing a missing car fails before the insert.
	_, err := svc.Create(ctx, CreateInput{FullName: "A", Phone: "+1", CarID: ptr(int64(99))})
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Code != apperr.CodeIntegrity {
		t.Fatalf("expected integrity error for missing car, got %v", err)
	}

	c := mustCar(t, gdb, "C1")
	a, err := svc.Create(ctx, CreateInput{FullName: "Driver A", Phone: "+71", CarID: &c.ID})
	if err != nil {
		t.Fatalf("assign A: %v", err)
	}

	// Second driver on the same car conflicts; A keeps the car.
	_, err = svc.Create(ctx, CreateInput{FullName: "Driver B", Phone: "+72", CarID: &c.ID})
	if !errors.As(err, &ae) || ae.Code != apperr.CodeConflict {
		t.Fatalf("expected assignment conflict, got %v", err)
	}
	got, err := svc.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("get A: %v", err)
	}
	if got.CarID == nil || *got.CarID != c.ID {
		t.Fatalf("conflict must not touch the existing assignment: %+v", got)
	}
}

func TestCreateDriverDuplicatePhone(t *testing.T) {
	gdb := testutil.OpenTestDB(t, "driver_dup_phone")
	svc := NewService(gdb)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{FullName: "A", Phone: "+70001"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(ctx, CreateInput{FullName: "B", Phone: "+70001"})
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Code != apperr.CodeConflict {
		t.Fatalf("expected phone conflict, got %v", err)
	}
}

func TestUpdateDriverSentinelUnassign(t *testing.T) {
	gdb := testutil.OpenTestDB(t, "driver_unassign")
	svc := NewService(gdb)
	ctx := context.Background()

	c := mustCar(t, gdb, "C1")
	d, err := svc.Create(ctx, CreateInput{FullName: "A", Phone: "+71", CarID: &c.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Update(ctx, d.ID, UpdateInput{CarID: ptr(int64(0))})
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if got.CarID != nil {
		t.Fatalf("sentinel 0 must clear the reference, got %v", *got.CarID)
	}

	// Unassigning an already-unassigned driver stays a success.
	got, err = svc.Update(ctx, d.ID, UpdateInput{CarID: ptr(int64(0))})
	if err != nil {
		t.Fatalf("second unassign: %v", err)
	}
	if got.CarID != nil {
		t.Fatalf("sentinel 0 must keep the reference null")
	}
}

func TestUpdateDriverReassign(t *testing.T) {
	gdb := testutil.OpenTestDB(t, "driver_reassign")
	svc := NewService(gdb)
	ctx := context.Background()

	c1 := mustCar(t, gdb, "C1")
	c2 := mustCar(t, gdb, "C2")
	a, err := svc.Create(ctx, CreateInput{FullName: "A", Phone: "+71", CarID: &c1.ID})
	if err != nil {
		t.Fatalf("create A: %v", err)
	}
	b, err := svc.Create(ctx, CreateInput{FullName: "B", Phone: "+72"})
	if err != nil {
		t.Fatalf("create B: %v", err)
	}

	// Re-sending the driver's own car is not a conflict.
	if _, err := svc.Update(ctx, a.ID, UpdateInput{CarID: &c1.ID}); err != nil {
		t.Fatalf("self reassign: %v", err)
	}

	// B cannot take A's car.
	_, err = svc.Update(ctx, b.ID, UpdateInput{CarID: &c1.ID})
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Code != apperr.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	// A free car is fine.
	got, err := svc.Update(ctx, b.ID, UpdateInput{CarID: &c2.ID})
	if err != nil {
		t.Fatalf("assign free car: %v", err)
	}
	if got.CarID == nil || *got.CarID != c2.ID {
		t.Fatalf("assignment not applied: %+v", got)
	}

	// A missing car is rejected.
	_, err = svc.Update(ctx, b.ID, UpdateInput{CarID: ptr(int64(999))})
	if !errors.As(err, &ae) || ae.Code != apperr.CodeIntegrity {
		t.Fatalf("expected integrity error for missing car, got %v", err)
	}
}

func TestUpdateDriverFields(t *testing.T) {
	gdb := testutil.OpenTestDB(t, "driver_update_fields")
	svc := NewService(gdb)
	ctx := context.Background()

	d, err := svc.Create(ctx, CreateInput{FullName: "A", Phone: "+71", Rating: ptr(4.0)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Update(ctx, d.ID, UpdateInput{
		FullName: ptr("Alexey Smirnov"),
		Rating:   ptr(3.2),
		IsActive: ptr(false),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.FullName != "Alexey Smirnov" || got.Rating != 3.2 || got.IsActive {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.Phone != "+71" {
		t.Fatalf("omitted fields must stay untouched: %+v", got)
	}

	// Empty patch returns the record unchanged.
	same, err := svc.Update(ctx, d.ID, UpdateInput{})
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if same.FullName != "Alexey Smirnov" || same.Rating != 3.2 {
		t.Fatalf("empty patch changed the record: %+v", same)
	}

	_, err = svc.Update(ctx, d.ID, UpdateInput{Rating: ptr(5.5)})
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Code != apperr.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.Update(ctx, 9999, UpdateInput{IsActive: ptr(true)})
	if !errors.As(err, &ae) || ae.Code != apperr.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateDriverDuplicatePhone(t *testing.T) {
	gdb := testutil.OpenTestDB(t, "driver_update_phone")
	svc := NewService(gdb)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{FullName: "A", Phone: "+71"}); err != nil {
		t.Fatalf("create A: %v", err)
	}
	b, err := svc.Create(ctx, CreateInput{FullName: "B", Phone: "+72"})
	if err != nil {
		t.Fatalf("create B: %v", err)
	}

	_, err = svc.Update(ctx, b.ID, UpdateInput{Phone: ptr("+71")})
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Code != apperr.CodeConflict {
		t.Fatalf("expected phone conflict, got %v", err)
	}
	got, err := svc.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Phone != "+72" {
		t.Fatalf("failed update must roll back, got phone %s", got.Phone)
	}
}

func TestListDriversFilters(t *testing.T) {
	gdb := testutil.OpenTestDB(t, "driver_list")
	svc := NewService(gdb)
	ctx := context.Background()

	c := mustCar(t, gdb, "C1")
	if _, err := svc.Create(ctx, CreateInput{FullName: "A", Phone: "+71", Rating: ptr(4.9), CarID: &c.ID}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{FullName: "B", Phone: "+72", Rating: ptr(4.2)}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	inactive, err := svc.Create(ctx, CreateInput{FullName: "C", Phone: "+73", Rating: ptr(4.8)})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Update(ctx, inactive.ID, UpdateInput{IsActive: ptr(false)}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	// min_rating=4.5, only_active=true: exactly the active well-rated drivers.
	got, err := svc.List(ctx, ListFilter{MinRating: ptr(4.5), OnlyActive: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].FullName != "A" {
		t.Fatalf("filter wrong: %+v", got)
	}
	if got[0].Car == nil || got[0].Car.ID != c.ID {
		t.Fatalf("expected car enrichment, got %+v", got[0].Car)
	}

	all, err := svc.List(ctx, ListFilter{OnlyActive: false})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 drivers, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].ID <= all[i-1].ID {
			t.Fatalf("expected ascending id order")
		}
	}
	if all[1].Car != nil {
		t.Fatalf("driver without car must have null car")
	}
}

func TestLowRatingDrivers(t *testing.T) {
	gdb := testutil.OpenTestDB(t, "driver_low_rating")
	svc := NewService(gdb)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{FullName: "A", Phone: "+71", Rating: ptr(3.9)}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{FullName: "B", Phone: "+72", Rating: ptr(2.1)}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{FullName: "C", Phone: "+73", Rating: ptr(4.0)}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	bad, err := svc.Create(ctx, CreateInput{FullName: "D", Phone: "+74", Rating: ptr(1.0)})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Update(ctx, bad.ID, UpdateInput{IsActive: ptr(false)}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	got, err := svc.LowRating(ctx, 4.0)
	if err != nil {
		t.Fatalf("low rating: %v", err)
	}
	// Strictly below threshold, active only, worst first.
	if len(got) != 2 || got[0].FullName != "B" || got[1].FullName != "A" {
		t.Fatalf("low rating wrong: %+v", got)
	}
}

func TestTranslateWriteErr(t *testing.T) {
	var ae *apperr.Error

	err := translateWriteErr(gorm.ErrDuplicatedKey, "phone number already in use")
	if !errors.As(err, &ae) || ae.Code != apperr.CodeConflict || ae.Message != "phone number already in use" {
		t.Fatalf("duplicated key: expected conflict with the given message, got %v", err)
	}
	for _, in := range []error{gorm.ErrForeignKeyViolated, gorm.ErrCheckConstraintViolated} {
		if err := translateWriteErr(in, "unused"); !errors.As(err, &ae) || ae.Code != apperr.CodeIntegrity {
			t.Fatalf("%v: expected integrity, got %v", in, err)
		}
	}
	classified := fmt.Errorf("update: %w", apperr.Conflict("car already assigned to another driver"))
	if err := translateWriteErr(classified, "unused"); err != classified {
		t.Fatalf("classified error must pass through, got %v", err)
	}
}

func TestCarDeleteClearsReference(t *testing.T) {
	gdb := testutil.OpenTestDB(t, "driver_set_null")
	svc := NewService(gdb)
	ctx := context.Background()

	c := mustCar(t, gdb, "C1")
	d, err := svc.Create(ctx, CreateInput{FullName: "A", Phone: "+71", CarID: &c.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// The API has no delete endpoint; removing the row directly must clear
	// the driver's reference, not fail subsequent reads.
	if err := gdb.Delete(&model.Car{}, c.ID).Error; err != nil {
		t.Fatalf("delete car: %v", err)
	}

	got, err := svc.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got.CarID != nil {
		t.Fatalf("expected reference cleared, got %v", *got.CarID)
	}
	if got.Car != nil {
		t.Fatalf("expected null car enrichment")
	}
}
