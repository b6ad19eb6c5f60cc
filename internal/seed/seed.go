// Package seed inserts a small bootstrap fleet so a fresh deployment has
// data to look at. It never touches a non-empty database.
package seed

import (
	"github.com/TaxiPark/TaxiPark/internal/model"
	"gorm.io/gorm"
)

func carID(id int64) *int64 { return &id }

// Run seeds the sample dataset when the cars table is empty.
func Run(db *gorm.DB) error {
	var n int64
	if err := db.Model(&model.Car{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	cars := []model.Car{
		{Status: model.StatusFree, LicensePlate: "A123BC777", Brand: "Toyota", Color: "White", Distance: 5.3},
		{Status: model.StatusBusy, LicensePlate: "B456GD777", Brand: "Hyundai", Color: "Black", Distance: 2.1},
		{Status: model.StatusRepair, LicensePlate: "E789JZ777", Brand: "Kia", Color: "Gray", Distance: 8.7},
		{Status: model.StatusBusy, LicensePlate: "I012KL777", Brand: "Skoda", Color: "Blue", Distance: 1.5},
		{Status: model.StatusFree, LicensePlate: "M345NO777", Brand: "Volkswagen", Color: "Red", Distance: 4.2},
		{Status: model.StatusRepair, LicensePlate: "P678RS777", Brand: "Renault", Color: "White", Distance: 6.8},
		{Status: model.StatusFree, LicensePlate: "T901UF777", Brand: "Toyota", Color: "Silver", Distance: 3.4},
	}
	drivers := []model.Driver{
		{FullName: "Ivan Ivanov", Phone: "+79001234567", Rating: 4.9, CarID: carID(1), IsActive: true},
		{FullName: "Petr Petrov", Phone: "+79007654321", Rating: 4.7, CarID: carID(2), IsActive: true},
		{FullName: "Sidor Sidorov", Phone: "+79005554433", Rating: 5.0, CarID: carID(4), IsActive: true},
		{FullName: "Alexey Smirnov", Phone: "+79004443322", Rating: 4.5, CarID: carID(5), IsActive: true},
		{FullName: "Dmitry Kozlov", Phone: "+79003332211", Rating: 4.8, CarID: carID(7), IsActive: true},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cars).Error; err != nil {
			return err
		}
		// Drivers reference the freshly inserted cars by position.
		for i := range drivers {
			if drivers[i].CarID != nil {
				drivers[i].CarID = &cars[*drivers[i].CarID-1].ID
			}
		}
		return tx.Create(&drivers).Error
	})
}
