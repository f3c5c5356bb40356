package models

import "time"

// Shipment priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Shipment statuses.
const (
	ShipmentPending   = "pending"
	ShipmentInTransit = "in-transit"
	ShipmentDelivered = "delivered"
)

// Shipment is a load travelling between two cities. AssignedVehicleID is a
// loose reference: it may point at a vehicle that does not exist.
type Shipment struct {
	ID                string    `bson:"_id" json:"_id" validate:"required"`
	Origin            string    `bson:"origin" json:"origin"`
	Destination       string    `bson:"destination" json:"destination" validate:"required"`
	Weight            *float64  `bson:"weight,omitempty" json:"weight,omitempty" validate:"required,gt=0"` // tons
	Priority          string    `bson:"priority" json:"priority" validate:"required"`
	AssignedVehicleID string    `bson:"assigned_vehicle_id" json:"assigned_vehicle_id"`
	Status            string    `bson:"status" json:"status" validate:"required"`
	EstimatedArrival  time.Time `bson:"estimated_arrival" json:"estimated_arrival"`
}

// Tons returns the shipment weight, or zero when it is missing.
func (s Shipment) Tons() float64 {
	if s.Weight == nil {
		return 0
	}
	return *s.Weight
}
