package seed

import (
	"time"

	"github.com/ukydev/fleet-tracking/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

// Vehicles returns a fresh copy of the sample fleet: ten trucks.
func Vehicles() []models.Vehicle {
	return []models.Vehicle{
		{ID: "V001", Make: "Mercedes-Benz", Model: "Actros", Year: 2020, LoadCapacity: models.Float(25), FuelType: "diesel", Status: models.VehicleActive,
			MaintenanceHistory: []models.MaintenanceEntry{{Date: day(2023, 1, 15), Description: "Oil change"}, {Date: day(2023, 6, 20), Description: "Tire replacement"}}},
		{ID: "V002", Make: "Volvo", Model: "FH", Year: 2019, LoadCapacity: models.Float(20), FuelType: "diesel", Status: models.VehicleActive,
			MaintenanceHistory: []models.MaintenanceEntry{{Date: day(2023, 3, 10), Description: "Brake inspection"}}},
		{ID: "V003", Make: "Scania", Model: "R500", Year: 2021, LoadCapacity: models.Float(30), FuelType: "diesel", Status: models.VehicleMaintenance,
			MaintenanceHistory: []models.MaintenanceEntry{{Date: day(2023, 8, 5), Description: "Engine repair"}}},
		{ID: "V004", Make: "MAN", Model: "TGX", Year: 2018, LoadCapacity: models.Float(28), FuelType: "diesel", Status: models.VehicleActive,
			MaintenanceHistory: []models.MaintenanceEntry{}},
		{ID: "V005", Make: "Iveco", Model: "Stralis", Year: 2022, LoadCapacity: models.Float(22), FuelType: "electric", Status: models.VehicleActive,
			MaintenanceHistory: []models.MaintenanceEntry{{Date: day(2023, 5, 12), Description: "Battery check"}}},
		{ID: "V006", Make: "DAF", Model: "XF", Year: 2017, LoadCapacity: models.Float(24), FuelType: "diesel", Status: models.VehicleRetired,
			MaintenanceHistory: []models.MaintenanceEntry{}},
		{ID: "V007", Make: "Mercedes-Benz", Model: "Actros", Year: 2021, LoadCapacity: models.Float(26), FuelType: "diesel", Status: models.VehicleActive,
			MaintenanceHistory: []models.MaintenanceEntry{}},
		{ID: "V008", Make: "Volvo", Model: "FM", Year: 2020, LoadCapacity: models.Float(18), FuelType: "diesel", Status: models.VehicleActive,
			MaintenanceHistory: []models.MaintenanceEntry{{Date: day(2023, 7, 18), Description: "Transmission service"}}},
		{ID: "V009", Make: "Scania", Model: "S500", Year: 2019, LoadCapacity: models.Float(32), FuelType: "diesel", Status: models.VehicleActive,
			MaintenanceHistory: []models.MaintenanceEntry{}},
		{ID: "V010", Make: "MAN", Model: "TGS", Year: 2022, LoadCapacity: models.Float(27), FuelType: "electric", Status: models.VehicleMaintenance,
			MaintenanceHistory: []models.MaintenanceEntry{{Date: day(2023, 9, 1), Description: "Software update"}}},
	}
}

// Shipments returns a fresh copy of the fifteen sample shipments.
func Shipments() []models.Shipment {
	return []models.Shipment{
		{ID: "S001", Origin: "Sofia", Destination: "Plovdiv", Weight: models.Float(15), Priority: models.PriorityHigh, AssignedVehicleID: "V001", Status: models.ShipmentDelivered, EstimatedArrival: at(2023, 10, 1, 10)},
		{ID: "S002", Origin: "Varna", Destination: "Burgas", Weight: models.Float(8), Priority: models.PriorityMedium, AssignedVehicleID: "V002", Status: models.ShipmentInTransit, EstimatedArrival: at(2023, 10, 2, 14)},
		{ID: "S003", Origin: "Plovdiv", Destination: "Sofia", Weight: models.Float(12), Priority: models.PriorityLow, AssignedVehicleID: "V003", Status: models.ShipmentPending, EstimatedArrival: at(2023, 10, 3, 16)},
		{ID: "S004", Origin: "Ruse", Destination: "Stara Zagora", Weight: models.Float(20), Priority: models.PriorityHigh, AssignedVehicleID: "V004", Status: models.ShipmentDelivered, EstimatedArrival: at(2023, 10, 4, 12)},
		{ID: "S005", Origin: "Burgas", Destination: "Varna", Weight: models.Float(5), Priority: models.PriorityMedium, AssignedVehicleID: "V005", Status: models.ShipmentInTransit, EstimatedArrival: at(2023, 10, 5, 18)},
		{ID: "S006", Origin: "Sofia", Destination: "Pleven", Weight: models.Float(18), Priority: models.PriorityHigh, AssignedVehicleID: "V007", Status: models.ShipmentPending, EstimatedArrival: at(2023, 10, 6, 20)},
		{ID: "S007", Origin: "Veliko Tarnovo", Destination: "Gabrovo", Weight: models.Float(10), Priority: models.PriorityLow, AssignedVehicleID: "V008", Status: models.ShipmentDelivered, EstimatedArrival: at(2023, 10, 7, 8)},
		{ID: "S008", Origin: "Blagoevgrad", Destination: "Kyustendil", Weight: models.Float(22), Priority: models.PriorityMedium, AssignedVehicleID: "V009", Status: models.ShipmentInTransit, EstimatedArrival: at(2023, 10, 8, 22)},
		{ID: "S009", Origin: "Pazardzhik", Destination: "Smolyan", Weight: models.Float(7), Priority: models.PriorityLow, AssignedVehicleID: "V001", Status: models.ShipmentPending, EstimatedArrival: at(2023, 10, 9, 11)},
		{ID: "S010", Origin: "Dobrich", Destination: "Shumen", Weight: models.Float(14), Priority: models.PriorityHigh, AssignedVehicleID: "V002", Status: models.ShipmentDelivered, EstimatedArrival: at(2023, 10, 10, 13)},
		{ID: "S011", Origin: "Sliven", Destination: "Yambol", Weight: models.Float(9), Priority: models.PriorityMedium, AssignedVehicleID: "V004", Status: models.ShipmentInTransit, EstimatedArrival: at(2023, 10, 11, 15)},
		{ID: "S012", Origin: "Haskovo", Destination: "Kardzhali", Weight: models.Float(16), Priority: models.PriorityHigh, AssignedVehicleID: "V007", Status: models.ShipmentPending, EstimatedArrival: at(2023, 10, 12, 17)},
		{ID: "S013", Origin: "Montana", Destination: "Vratsa", Weight: models.Float(11), Priority: models.PriorityLow, AssignedVehicleID: "V008", Status: models.ShipmentDelivered, EstimatedArrival: at(2023, 10, 13, 9)},
		{ID: "S014", Origin: "Pernik", Destination: "Kyustendil", Weight: models.Float(13), Priority: models.PriorityMedium, AssignedVehicleID: "V009", Status: models.ShipmentInTransit, EstimatedArrival: at(2023, 10, 14, 21)},
		{ID: "S015", Origin: "Lovech", Destination: "Targovishte", Weight: models.Float(6), Priority: models.PriorityLow, AssignedVehicleID: "V001", Status: models.ShipmentPending, EstimatedArrival: at(2023, 10, 15, 19)},
	}
}

// Telemetry returns a fresh copy of the twenty sample telemetry records.
func Telemetry() []models.Telemetry {
	return []models.Telemetry{
		sample("V001", at(2023, 10, 1, 8), 42.6977, 23.3219, 80.0, 85.5, 90.0),   // Sofia
		sample("V001", at(2023, 10, 1, 9), 42.1354, 24.7453, 85.0, 75.2, 92.0),   // Plovdiv
		sample("V002", at(2023, 10, 2, 10), 43.2141, 27.9147, 70.0, 90.1, 88.0),  // Varna
		sample("V002", at(2023, 10, 2, 11), 42.5048, 27.4626, 75.0, 80.3, 91.0),  // Burgas
		sample("V003", at(2023, 10, 3, 12), 42.1354, 24.7453, 0.0, 60.0, 85.0),   // Plovdiv, stopped for maintenance
		sample("V004", at(2023, 10, 4, 13), 43.8486, 25.9543, 82.0, 88.7, 93.0),  // Ruse
		sample("V004", at(2023, 10, 4, 14), 42.4258, 25.6345, 78.0, 78.9, 90.0),  // Stara Zagora
		sample("V005", at(2023, 10, 5, 15), 42.5048, 27.4626, 65.0, 95.2, 87.0),  // Burgas
		sample("V005", at(2023, 10, 5, 16), 43.2141, 27.9147, 68.0, 92.1, 89.0),  // Varna
		sample("V007", at(2023, 10, 6, 17), 42.6977, 23.3219, 83.0, 82.4, 91.0),  // Sofia
		sample("V008", at(2023, 10, 7, 18), 43.0757, 25.6172, 72.0, 87.6, 88.0),  // Veliko Tarnovo
		sample("V008", at(2023, 10, 7, 19), 42.8742, 25.3341, 74.0, 80.8, 90.0),  // Gabrovo
		sample("V009", at(2023, 10, 8, 20), 42.0140, 23.0943, 79.0, 76.3, 92.0),  // Blagoevgrad
		sample("V009", at(2023, 10, 8, 21), 42.2839, 22.6891, 81.0, 73.5, 93.0),  // Kyustendil
		sample("V001", at(2023, 10, 9, 22), 42.1928, 24.3336, 77.0, 79.1, 89.0),  // Pazardzhik
		sample("V002", at(2023, 10, 10, 23), 43.4167, 28.1667, 69.0, 84.7, 87.0), // Dobrich
		sample("V002", at(2023, 10, 11, 0), 43.2706, 26.9361, 71.0, 81.2, 88.0),  // Shumen
		sample("V004", at(2023, 10, 11, 1), 42.6858, 26.3292, 76.0, 85.9, 91.0),  // Sliven
		sample("V007", at(2023, 10, 12, 2), 41.9333, 25.5667, 84.0, 77.4, 92.0),  // Haskovo
		sample("V008", at(2023, 10, 13, 3), 43.4067, 23.2250, 73.0, 83.6, 89.0),  // Montana
	}
}

func sample(vehicleID string, ts time.Time, lat, lng, speed, fuel, temp float64) models.Telemetry {
	return models.Telemetry{
		VehicleID: vehicleID,
		Timestamp: ts,
		GPS:       models.GPS{Lat: lat, Lng: lng},
		Metrics: models.Metrics{
			Speed:      models.Float(speed),
			FuelLevel:  models.Float(fuel),
			EngineTemp: models.Float(temp),
		},
	}
}
