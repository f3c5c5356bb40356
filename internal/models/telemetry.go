package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GPS is a position fix.
type GPS struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Metrics holds the sensor readings of one telemetry sample. Fields are
// pointers so a missing reading is not mistaken for zero.
type Metrics struct {
	Speed      *float64 `bson:"speed,omitempty" json:"speed,omitempty" validate:"required,gte=0"`                     // km/h
	FuelLevel  *float64 `bson:"fuel_level,omitempty" json:"fuel_level,omitempty" validate:"required,gte=0,lte=100"` // percent
	EngineTemp *float64 `bson:"engine_temp,omitempty" json:"engine_temp,omitempty" validate:"required"`             // °C
}

// Telemetry is a single sample reported by a vehicle. Samples have no
// natural unique key; ID is assigned by the store.
type Telemetry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	VehicleID string             `bson:"vehicle_id" json:"vehicle_id" validate:"required"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp" validate:"required"`
	GPS       GPS                `bson:"gps" json:"gps"`
	Metrics   Metrics            `bson:"metrics" json:"metrics"`
}

// Float returns a pointer to v, for building records by hand.
func Float(v float64) *float64 {
	return &v
}
