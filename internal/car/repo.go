package car

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

// ListFilter narrows the car listing; nil fields mean "no filter".
type ListFilter struct {
	Status      *model.CarStatus
	MinDistance *float64
	MaxDistance *float64
	Limit       int
	Offset      int
}

// List returns cars matching all supplied filters ordered by id, each with
// its assigned driver attached via a left join.
func (r *Repo) List(ctx context.Context, f ListFilter) ([]model.Car, error) {
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

	q := db.Model(&model.Car{}).Joins("Driver")
	if f.Status != nil {
		q = q.Where("cars.status = ?", *f.Status)
	}
	if f.MinDistance != nil {
		q = q.Where("cars.distance >= ?", *f.MinDistance)
	}
	if f.MaxDistance != nil {
		q = q.Where("cars.distance <= ?", *f.MaxDistance)
	}

	var cars []model.Car
	if err := q.Order("cars.id").Limit(f.Limit).Offset(f.Offset).Find(&cars).Error; err != nil {
		return nil, err
	}
	return cars, nil
}

// FindByID loads one car with its assigned driver attached.
func (r *Repo) FindByID(ctx context.Context, id int64) (*model.Car, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c model.Car
	if err := db.Joins("Driver").Where("cars.id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// InRepair returns every car with status REPAIR, ordered by id, without
// driver enrichment and without pagination.
func (r *Repo) InRepair(ctx context.Context) ([]model.Car, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var cars []model.Car
	if err := db.Where("status = ?", model.StatusRepair).Order("id").Find(&cars).Error; err != nil {
		return nil, err
	}
	return cars, nil
}

func (r *Repo) Create(ctx context.Context, c *model.Car) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(c).Error
}

// Exists reports whether a car row with the given id exists.
func (r *Repo) Exists(ctx context.Context, id int64) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var n int64
	if err := db.Model(&model.Car{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateFields applies the given column values to one car row.
func (r *Repo) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Model(&model.Car{}).Where("id = ?", id).Updates(fields).Error
}
