package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestQueryBuilders(t *testing.T) {
	cutoff := time.Date(2023, 10, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		got  bson.M
		want bson.M
	}{
		{
			name: "capacity above",
			got:  CapacityAbove(20),
			want: bson.M{"load_capacity": bson.M{"$gt": 20.0}},
		},
		{
			name: "heavy in transit",
			got:  HeavyInTransit(10),
			want: bson.M{"$and": bson.A{
				bson.M{"status": "in-transit"},
				bson.M{"weight": bson.M{"$gt": 10.0}},
			}},
		},
		{
			name: "make matches",
			got:  MakeMatches("Mercedes"),
			want: bson.M{"make": primitive.Regex{Pattern: "Mercedes"}},
		},
		{
			name: "priority in",
			got:  PriorityIn("high", "medium"),
			want: bson.M{"priority": bson.M{"$in": bson.A{"high", "medium"}}},
		},
		{
			name: "fuel level between",
			got:  FuelLevelBetween(80, 90),
			want: bson.M{"metrics.fuel_level": bson.M{"$gte": 80.0, "$lte": 90.0}},
		},
		{
			name: "older than",
			got:  OlderThan(cutoff),
			want: bson.M{"timestamp": bson.M{"$lt": cutoff}},
		},
		{
			name: "pending from",
			got:  PendingFrom("Sofia"),
			want: bson.M{"$and": bson.A{
				bson.M{"status": "pending"},
				bson.M{"origin": "Sofia"},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestQueryBuilders_Marshal(t *testing.T) {
	_, err := bson.Marshal(HeavyInTransit(10))
	assert.NoError(t, err)
	_, err = bson.Marshal(MakeMatches("^Volvo"))
	assert.NoError(t, err)
}
