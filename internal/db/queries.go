package db

import (
	"time"

	"github.com/ukydev/fleet-tracking/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Filter builders for the read and maintenance queries pushed down to
// MongoDB. Each has an in-memory twin in the report package.

// CapacityAbove matches vehicles whose load capacity exceeds tons.
func CapacityAbove(tons float64) bson.M {
	return bson.M{"load_capacity": bson.M{"$gt": tons}}
}

// HeavyInTransit matches in-transit shipments heavier than tons.
func HeavyInTransit(tons float64) bson.M {
	return bson.M{"$and": bson.A{
		bson.M{"status": models.ShipmentInTransit},
		bson.M{"weight": bson.M{"$gt": tons}},
	}}
}

// MakeMatches matches vehicles whose make matches the regular expression.
func MakeMatches(pattern string) bson.M {
	return bson.M{"make": primitive.Regex{Pattern: pattern}}
}

// PriorityIn matches shipments with any of the given priorities.
func PriorityIn(priorities ...string) bson.M {
	in := make(bson.A, len(priorities))
	for i, p := range priorities {
		in[i] = p
	}
	return bson.M{"priority": bson.M{"$in": in}}
}

// FuelLevelBetween matches telemetry with lo <= fuel level <= hi.
func FuelLevelBetween(lo, hi float64) bson.M {
	return bson.M{"metrics.fuel_level": bson.M{"$gte": lo, "$lte": hi}}
}

// OlderThan matches telemetry sampled before cutoff.
func OlderThan(cutoff time.Time) bson.M {
	return bson.M{"timestamp": bson.M{"$lt": cutoff}}
}

// PendingFrom matches pending shipments leaving origin.
func PendingFrom(origin string) bson.M {
	return bson.M{"$and": bson.A{
		bson.M{"status": models.ShipmentPending},
		bson.M{"origin": origin},
	}}
}
