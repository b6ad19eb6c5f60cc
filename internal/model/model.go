package model

import "time"

// CarStatus is the car lifecycle status (persisted as a string).
type CarStatus string

const (
	StatusFree   CarStatus = "FREE"   // available for assignment
	StatusBusy   CarStatus = "BUSY"   // on a trip
	StatusRepair CarStatus = "REPAIR" // in the shop
)

// Valid reports whether s is one of the known statuses.
func (s CarStatus) Valid() bool {
	switch s {
	case StatusFree, StatusBusy, StatusRepair:
		return true
	}
	return false
}

// Car is the GORM model for the cars table.
type Car struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Status       CarStatus `gorm:"type:varchar(8);index;not null;default:'FREE';check:status IN ('FREE','BUSY','REPAIR')" json:"status"`
	LicensePlate string    `gorm:"uniqueIndex;size:32;not null" json:"license_plate"`
	Brand        string    `gorm:"size:64;not null" json:"brand"`
	Color        string    `gorm:"size:32;not null" json:"color"`
	Distance     float64   `gorm:"not null;check:distance > 0" json:"distance"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Driver currently assigned to this car, populated by joined reads only.
	Driver *Driver `gorm:"foreignKey:CarID;constraint:OnDelete:SET NULL" json:"-"`
}

// Driver is the GORM model for the drivers table.
//
// CarID carries a uniqueness constraint so that at most one driver references a
// given car; the foreign key clears the reference when the car row goes away.
type Driver struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	FullName  string    `gorm:"size:128;not null" json:"full_name"`
	Phone     string    `gorm:"uniqueIndex;size:32;not null" json:"phone"`
	Rating    float64   `gorm:"index;not null;default:5.0;check:rating >= 0 AND rating <= 5" json:"rating"`
	CarID     *int64    `gorm:"uniqueIndex" json:"car_id"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Car *Car `gorm:"foreignKey:CarID;references:ID;constraint:OnDelete:SET NULL" json:"-"`
}
