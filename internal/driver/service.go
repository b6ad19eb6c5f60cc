package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/TaxiPark/TaxiPark/internal/common/apperr"
	"github.com/TaxiPark/TaxiPark/internal/model"
	"gorm.io/gorm"
)

const defaultRating = 5.0

// Service holds the driver use cases, independent of the HTTP layer.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// WithCar is the driver response shape enriched with the assigned car. The
// car field is null when the driver has no car.
type WithCar struct {
	model.Driver
	Car *model.Car `json:"car"`
}

// withCar reshapes a joined row into the nested response object.
func withCar(d model.Driver) WithCar {
	c := d.Car
	d.Car = nil
	return WithCar{Driver: d, Car: c}
}

// CreateInput is the POST /drivers payload.
type CreateInput struct {
	FullName string   `json:"full_name"`
	Phone    string   `json:"phone"`
	Rating   *float64 `json:"rating"`
	CarID    *int64   `json:"car_id"`
}

// UpdateInput is the PATCH /drivers/{id} payload; nil fields stay untouched.
// A car_id of 0 is the unassign sentinel: it clears the reference to null
// instead of naming a car. Known quirk inherited from the admin UI contract;
// do not copy this pattern for other optional identifier fields.
type UpdateInput struct {
	FullName *string  `json:"full_name"`
	Phone    *string  `json:"phone"`
	Rating   *float64 `json:"rating"`
	CarID    *int64   `json:"car_id"`
	IsActive *bool    `json:"is_active"`
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]WithCar, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	drivers, err := NewRepo(s.db).List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]WithCar, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, withCar(d))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*WithCar, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	d, err := NewRepo(s.db).FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("driver not found")
	}
	if err != nil {
		return nil, err
	}
	out := withCar(*d)
	return &out, nil
}

func (s *Service) LowRating(ctx context.Context, threshold float64) ([]model.Driver, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return NewRepo(s.db).LowRating(ctx, threshold)
}

// Create validates the referenced car before inserting: the car must exist
// and must not already be held by another driver.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Driver, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	name := strings.TrimSpace(in.FullName)
	phone := strings.TrimSpace(in.Phone)
	if name == "" {
		return nil, apperr.Validation("full_name required")
	}
	if phone == "" {
		return nil, apperr.Validation("phone required")
	}
	rating := defaultRating
	if in.Rating != nil {
		if *in.Rating < 0 || *in.Rating > 5 {
			return nil, apperr.Validation("rating must be in [0, 5]")
		}
		rating = *in.Rating
	}
	if in.CarID != nil && *in.CarID <= 0 {
		return nil, apperr.Validation("car_id must be a positive integer")
	}

	d := &model.Driver{
		FullName: name,
		Phone:    phone,
		Rating:   rating,
		CarID:    in.CarID,
		IsActive: true,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepo(tx)
		if in.CarID != nil {
			ok, err := repo.CarExists(ctx, *in.CarID)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.Integrity("car with id %d does not exist", *in.CarID)
			}
			taken, err := repo.CarTaken(ctx, *in.CarID, 0)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Conflict("car already assigned to another driver")
			}
		}
		return repo.Create(ctx, d)
	})
	if err != nil {
		return nil, translateWriteErr(err, "driver with this phone number already exists")
	}
	return d, nil
}

// Update applies the supplied fields to one driver. An empty patch returns
// the current record unchanged.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*model.Driver, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	fields := map[string]any{}
	if in.FullName != nil {
		if strings.TrimSpace(*in.FullName) == "" {
			return nil, apperr.Validation("full_name must not be empty")
		}
		fields["full_name"] = strings.TrimSpace(*in.FullName)
	}
	if in.Phone != nil {
		if strings.TrimSpace(*in.Phone) == "" {
			return nil, apperr.Validation("phone must not be empty")
		}
		fields["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Rating != nil {
		if *in.Rating < 0 || *in.Rating > 5 {
			return nil, apperr.Validation("rating must be in [0, 5]")
		}
		fields["rating"] = *in.Rating
	}
	if in.CarID != nil && *in.CarID < 0 {
		return nil, apperr.Validation("car_id must not be negative")
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}

	var updated model.Driver
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := NewRepo(tx)
		ok, err := repo.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("driver not found")
		}

		if in.CarID != nil {
			if *in.CarID == 0 {
				// Unassign sentinel: clear the reference.
				fields["car_id"] = nil
			} else {
				ok, err := repo.CarExists(ctx, *in.CarID)
				if err != nil {
					return err
				}
				if !ok {
					return apperr.Integrity("car with id %d does not exist", *in.CarID)
				}
				taken, err := repo.CarTaken(ctx, *in.CarID, id)
				if err != nil {
					return err
				}
				if taken {
					return apperr.Conflict("car already assigned to another driver")
				}
				fields["car_id"] = *in.CarID
			}
		}

		if len(fields) > 0 {
			if err := repo.UpdateFields(ctx, id, fields); err != nil {
				return err
			}
		}
		return tx.WithContext(ctx).Where("id = ?", id).First(&updated).Error
	})
	if err != nil {
		return nil, translateWriteErr(err, "phone number already in use")
	}
	return &updated, nil
}

// translateWriteErr maps store constraint errors onto the error taxonomy.
// Errors already classified pass through unchanged.
func translateWriteErr(err error, dupMsg string) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("%s", dupMsg)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return apperr.Integrity("data integrity violation")
	}
	return err
}
