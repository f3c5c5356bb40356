package models

import "time"

// MaintenanceEntry is one item of a vehicle's maintenance history.
type MaintenanceEntry struct {
	Date        time.Time `bson:"date" json:"date" validate:"required"`
	Description string    `bson:"description" json:"description"`
}
