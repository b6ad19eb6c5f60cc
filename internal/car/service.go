package car

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/TaxiPark/TaxiPark/internal/common/apperr"
	"github.com/TaxiPark/TaxiPark/internal/model"
	"gorm.io/gorm"
)

// Service holds the car use cases, independent of the HTTP layer.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// WithDriver is the car response shape enriched with the assigned driver.
// The driver field is null when the car has no driver.
type WithDriver struct {
	model.Car
	Driver *model.Driver `json:"driver"`
}

// withDriver reshapes a joined row into the nested response object.
func withDriver(c model.Car) WithDriver {
	d := c.Driver
	c.Driver = nil
	return WithDriver{Car: c, Driver: d}
}

// CreateInput is the POST /cars payload.
type CreateInput struct {
	LicensePlate string           `json:"license_plate"`
	Brand        string           `json:"brand"`
	Color        string           `json:"color"`
	Distance     float64          `json:"distance"`
	Status       *model.CarStatus `json:"status"`
}

// UpdateInput is the PATCH /cars/{id} payload; nil fields stay untouched.
type UpdateInput struct {
	Status   *model.CarStatus `json:"status"`
	Color    *string          `json:"color"`
	Distance *float64         `json:"distance"`
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]WithDriver, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	cars, err := NewRepo(s.db).List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]WithDriver, 0, len(cars))
	for _, c := range cars {
		out = append(out, withDriver(c))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*WithDriver, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	c, err := NewRepo(s.db).FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("car not found")
	}
	if err != nil {
		return nil, err
	}
	out := withDriver(*c)
	return &out, nil
}

func (s *Service) InRepair(ctx context.Context) ([]model.Car, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return NewRepo(s.db).InRepair(ctx)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Car, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	plate := strings.TrimSpace(in.LicensePlate)
	brand := strings.TrimSpace(in.Brand)
	color := strings.TrimSpace(in.Color)
	if plate == "" {
		return nil, apperr.Validation("license_plate required")
	}
	if brand == "" {
		return nil, apperr.Validation("brand required")
	}
	if color == "" {
		return nil, apperr.Validation("color required")
	}
	if in.Distance <= 0 {
		return nil, apperr.Validation("distance must be greater than zero")
	}
	status := model.StatusFree
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperr.Validation("unknown status %q", *in.Status)
		}
		status = *in.Status
	}

	c := &model.Car{
		Status:       status,
		LicensePlate: plate,
		Brand:        brand,
		Color:        color,
		Distance:     in.Distance,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return NewRepo(tx).Create(ctx, c)
	})
	if err != nil {
		return nil, translateWriteErr(err)
	}
	return c, nil
}

// Update applies the supplied fields to one car. An empty patch returns the
// current record unchanged.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*model.Car, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	fields := map[string]any{}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperr.Validation("unknown status %q", *in.Status)
		}
		fields["status"] = *in.Status
	}
	if in.Color != nil {
		if strings.TrimSpace(*in.Color) == "" {
			return nil, apperr.Validation("color must not be empty")
		}
		fields["color"] = strings.TrimSpace(*in.Color)
	}
	if in.Distance != nil {
		if *in.Distance <= 0 {
			return nil, apperr.Validation("distance must be greater than zero")
		}
		fields["distance"] = *in.Distance
	}

	var updated model.Car
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepo(tx)
		ok, err := repo.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("car not found")
		}
		if len(fields) > 0 {
			if err := repo.UpdateFields(ctx, id, fields); err != nil {
				return err
			}
		}
		return tx.WithContext(ctx).Where("id = ?", id).First(&updated).Error
	})
	if err != nil {
		return nil, translateWriteErr(err)
	}
	return &updated, nil
}

// translateWriteErr maps store constraint errors onto the error taxonomy.
// Errors already classified pass through unchanged.
func translateWriteErr(err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("car with this license plate already exists")
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return apperr.Integrity("data integrity violation")
	}
	return err
}
