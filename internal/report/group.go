package report

import (
	"fmt"
	"time"

	"github.com/ukydev/fleet-tracking/internal/models"
)

// groups keeps one accumulator per key in first-seen order.
type groups[K comparable, A any] struct {
	index map[K]int
	keys  []K
	accs  []*A
}

func newGroups[K comparable, A any]() *groups[K, A] {
	return &groups[K, A]{index: make(map[K]int)}
}

func (g *groups[K, A]) get(key K) *A {
	if i, ok := g.index[key]; ok {
		return g.accs[i]
	}
	acc := new(A)
	g.index[key] = len(g.keys)
	g.keys = append(g.keys, key)
	g.accs = append(g.accs, acc)
	return acc
}

func (g *groups[K, A]) each(fn func(key K, acc *A)) {
	for i, k := range g.keys {
		fn(k, g.accs[i])
	}
}

// stats is a running count/sum/min/max.
type stats struct {
	n        int
	sum      float64
	min, max float64
}

func (s *stats) add(v float64) {
	if s.n == 0 || v < s.min {
		s.min = v
	}
	if s.n == 0 || v > s.max {
		s.max = v
	}
	s.n++
	s.sum += v
}

func (s *stats) mean() float64 {
	if s.n == 0 {
		return 0
	}
	return s.sum / float64(s.n)
}

// The check helpers fail a report on a record that lacks a field the report
// reads. Fields the report never touches are not checked.

func checkVehicle(v models.Vehicle, fields ...string) error {
	if err := models.ValidateFields(v, fields...); err != nil {
		return malformed("vehicle", v.ID, err)
	}
	return nil
}

func checkShipment(s models.Shipment, fields ...string) error {
	if err := models.ValidateFields(s, fields...); err != nil {
		return malformed("shipment", s.ID, err)
	}
	return nil
}

func checkSample(t models.Telemetry, fields ...string) error {
	if err := models.ValidateFields(t, fields...); err != nil {
		return malformed("telemetry", telemetryKey(t), err)
	}
	return nil
}

func telemetryKey(t models.Telemetry) string {
	return fmt.Sprintf("%s@%s", t.VehicleID, t.Timestamp.UTC().Format(time.RFC3339))
}
