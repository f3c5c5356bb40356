package models

// Vehicle statuses.
const (
	VehicleActive      = "active"
	VehicleMaintenance = "maintenance"
	VehicleRetired     = "retired"
)

// Vehicle represents a fleet truck as stored in the vehicles collection.
type Vehicle struct {
	ID                 string             `bson:"_id" json:"_id" validate:"required"`
	Make               string             `bson:"make" json:"make" validate:"required"`
	Model              string             `bson:"model" json:"model" validate:"required"`
	Year               int                `bson:"year" json:"year"`
	LoadCapacity       *float64           `bson:"load_capacity,omitempty" json:"load_capacity,omitempty" validate:"required,gt=0"` // tons
	FuelType           string             `bson:"fuel_type" json:"fuel_type"`                                                      // "diesel", "electric"
	Status             string             `bson:"status" json:"status"`
	MaintenanceHistory []MaintenanceEntry `bson:"maintenance_history" json:"maintenance_history" validate:"dive"`
}

// Capacity returns the load capacity, or zero when it is missing.
func (v Vehicle) Capacity() float64 {
	if v.LoadCapacity == nil {
		return 0
	}
	return *v.LoadCapacity
}
