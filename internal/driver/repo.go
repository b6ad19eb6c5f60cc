package driver

import (
	"context"
	"fmt"

	"github.com/TaxiPark/TaxiPark/internal/model"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

// ListFilter narrows the driver listing.
type ListFilter struct {
	MinRating  *float64
	OnlyActive bool
	Limit      int
	Offset     int
}

// List returns drivers matching all supplied filters ordered by id, each
// with its assigned car attached via a left join.
func (r *Repo) List(ctx context.Context, f ListFilter) ([]model.Driver, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := db.Model(&model.Driver{}).Joins("Car")
	if f.MinRating != nil {
		q = q.Where("drivers.rating >= ?", *f.MinRating)
	}
	if f.OnlyActive {
		q = q.Where("drivers.is_active = ?", true)
	}

	var drivers []model.Driver
	if err := q.Order("drivers.id").Limit(f.Limit).Offset(f.Offset).Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}

// FindByID loads one driver with its assigned car attached.
func (r *Repo) FindByID(ctx context.Context, id int64) (*model.Driver, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var d model.Driver
	if err := db.Joins("Car").Where("drivers.id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// LowRating returns active drivers with rating strictly below threshold,
// worst first.
func (r *Repo) LowRating(ctx context.Context, threshold float64) ([]model.Driver, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var drivers []model.Driver
	err := db.Where("rating < ? AND is_active = ?", threshold, true).
		Order("rating ASC").Find(&drivers).Error
	if err != nil {
		return nil, err
	}
	return drivers, nil
}

func (r *Repo) Create(ctx context.Context, d *model.Driver) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(d).Error
}

// Exists reports whether a driver row with the given id exists.
func (r *Repo) Exists(ctx context.Context, id int64) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var n int64
	if err := db.Model(&model.Driver{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// CarExists reports whether a car row with the given id exists.
func (r *Repo) CarExists(ctx context.Context, carID int64) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var n int64
	if err := db.Model(&model.Car{}).Where("id = ?", carID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// CarTaken reports whether a driver other than excludeDriverID already
// references carID. Pass 0 to exclude nobody.
func (r *Repo) CarTaken(ctx context.Context, carID, excludeDriverID int64) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	q := db.Model(&model.Driver{}).Where("car_id = ?", carID)
	if excludeDriverID > 0 {
		q = q.Where("id <> ?", excludeDriverID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateFields applies the given column values to one driver row. A nil map
// value writes NULL.
func (r *Repo) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Model(&model.Driver{}).Where("id = ?", id).Updates(fields).Error
}
