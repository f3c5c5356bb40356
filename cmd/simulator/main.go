package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-tracking/internal/ingest"
	"github.com/ukydev/fleet-tracking/internal/models"
)

// City is a stop on the simulated routes.
type City struct {
	Name string
	Pos  models.GPS
}

// Bulgarian cities served by the fleet
var cities = []City{
	{"Sofia", models.GPS{Lat: 42.6977, Lng: 23.3219}},
	{"Plovdiv", models.GPS{Lat: 42.1354, Lng: 24.7453}},
	{"Varna", models.GPS{Lat: 43.2141, Lng: 27.9147}},
	{"Burgas", models.GPS{Lat: 42.5048, Lng: 27.4626}},
	{"Ruse", models.GPS{Lat: 43.8486, Lng: 25.9543}},
	{"Stara Zagora", models.GPS{Lat: 42.4258, Lng: 25.6345}},
	{"Pleven", models.GPS{Lat: 43.4170, Lng: 24.6067}},
	{"Veliko Tarnovo", models.GPS{Lat: 43.0757, Lng: 25.6172}},
	{"Blagoevgrad", models.GPS{Lat: 42.0140, Lng: 23.0943}},
	{"Haskovo", models.GPS{Lat: 41.9333, Lng: 25.5667}},
	{"Shumen", models.GPS{Lat: 43.2706, Lng: 26.9361}},
	{"Kyustendil", models.GPS{Lat: 42.2839, Lng: 22.6891}},
}

func jitterLocation(rng *rand.Rand, base models.GPS, meters float64) models.GPS {
	latMetersPerDeg := 111320.0
	lngMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (rng.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLng := (rng.Float64()*2 - 1) * (meters / lngMetersPerDeg)
	return models.GPS{Lat: base.Lat + dLat, Lng: base.Lng + dLng}
}

func haversineKm(a, b models.GPS) float64 {
	R := 6371.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	s := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
	return R * c
}

func lerp(a, b models.GPS, t float64) models.GPS {
	return models.GPS{Lat: a.Lat + (b.Lat-a.Lat)*t, Lng: a.Lng + (b.Lng-a.Lng)*t}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// --- Movement ---

// VehicleState is one simulated truck. It is owned by a single goroutine.
type VehicleState struct {
	VehicleID   string
	Position    models.GPS
	Destination City
	SpeedKmh    float64
	FuelPct     float64
	EngineTemp  float64
	rng         *rand.Rand
}

func newVehicleState(vehicleID string, rng *rand.Rand) *VehicleState {
	start := cities[rng.Intn(len(cities))]
	s := &VehicleState{
		VehicleID:  vehicleID,
		Position:   jitterLocation(rng, start.Pos, 500),
		SpeedKmh:   60 + rng.Float64()*20,
		FuelPct:    60 + rng.Float64()*40,
		EngineTemp: 85 + rng.Float64()*5,
		rng:        rng,
	}
	s.pickDestination()
	return s
}

// pickDestination chooses a city at least 50 km away.
func (s *VehicleState) pickDestination() {
	for i := 0; i < 10; i++ {
		cand := cities[s.rng.Intn(len(cities))]
		if haversineKm(s.Position, cand.Pos) > 50 {
			s.Destination = cand
			return
		}
	}
	s.Destination = cities[0]
}

// step advances the truck by one tick of simulated driving.
func (s *VehicleState) step(tick time.Duration) {
	s.SpeedKmh = clamp(s.SpeedKmh+(s.rng.Float64()*2-1)*3, 40, 100)
	s.EngineTemp = clamp(s.EngineTemp+(s.rng.Float64()*2-1)*0.8, 80, 98)

	km := s.SpeedKmh * tick.Hours()
	remaining := haversineKm(s.Position, s.Destination.Pos)
	if km >= remaining {
		s.Position = s.Destination.Pos
		log.WithFields(log.Fields{"vehicle_id": s.VehicleID, "city": s.Destination.Name}).Debug("Arrived")
		s.pickDestination()
	} else {
		s.Position = lerp(s.Position, s.Destination.Pos, km/remaining)
	}

	s.FuelPct -= km * 0.35
	if s.FuelPct < 10 {
		s.FuelPct = 100
	}
}

func (s *VehicleState) sample(now time.Time) models.Telemetry {
	return models.Telemetry{
		VehicleID: s.VehicleID,
		Timestamp: now.UTC(),
		GPS:       s.Position,
		Metrics: models.Metrics{
			Speed:      models.Float(math.Round(s.SpeedKmh*10) / 10),
			FuelLevel:  models.Float(math.Round(s.FuelPct*10) / 10),
			EngineTemp: models.Float(math.Round(s.EngineTemp*10) / 10),
		},
	}
}

// --- Transport ---

type emitter interface {
	Emit(telemetry models.Telemetry) error
}

// httpEmitter posts samples to the dashboard API.
type httpEmitter struct {
	apiURL string
	token  string
	client *http.Client
}

func (e httpEmitter) Emit(tele models.Telemetry) error {
	data, err := json.Marshal(tele)
	if err != nil {
		return fmt.Errorf("failed to marshal telemetry: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, e.apiURL+"/telemetry", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send telemetry: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("telemetry rejected with status: %d", resp.StatusCode)
	}
	return nil
}

// mqttEmitter publishes samples on the vehicle's telemetry topic.
type mqttEmitter struct {
	pub *ingest.Publisher
}

func (e mqttEmitter) Emit(tele models.Telemetry) error {
	return e.pub.Publish(tele)
}

func simulateVehicle(ctx context.Context, s *VehicleState, emit emitter, interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			s.step(interval)
			tele := s.sample(now)
			if err := emit.Emit(tele); err != nil {
				log.WithError(err).WithField("vehicle_id", s.VehicleID).Error("Failed to emit telemetry")
				continue
			}
			log.WithFields(log.Fields{
				"vehicle_id": tele.VehicleID,
				"speed":      *tele.Metrics.Speed,
				"fuel_level": *tele.Metrics.FuelLevel,
			}).Info("Sent telemetry")
		}
	}
}

func simulate(ctx context.Context, states []*VehicleState, emit emitter, interval time.Duration) {
	var wg sync.WaitGroup
	for _, s := range states {
		wg.Add(1)
		go func(s *VehicleState) {
			defer wg.Done()
			simulateVehicle(ctx, s, emit, interval)
		}(s)
	}
	wg.Wait()
}

// fleetIDs names the simulated vehicles like the seeded fleet.
func fleetIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("V%03d", i+1)
	}
	return ids
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			return n
		}
	}
	return def
}

func main() {
	fleetSize := envInt("FLEET_SIZE", 10)
	interval := time.Duration(envInt("SIM_TICK_SECONDS", 2)) * time.Second

	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:3000"
	}

	var emit emitter = httpEmitter{
		apiURL: apiURL,
		token:  os.Getenv("SIM_AUTH_TOKEN"),
		client: &http.Client{Timeout: 10 * time.Second},
	}
	transport := "http"
	if broker := os.Getenv("MQTT_BROKER"); broker != "" {
		pub, err := ingest.NewPublisher(broker)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to MQTT broker")
		}
		defer pub.Close()
		emit = mqttEmitter{pub: pub}
		transport = "mqtt"
	}

	log.WithFields(log.Fields{
		"fleet_size": fleetSize,
		"transport":  transport,
		"api_url":    apiURL,
		"interval":   interval,
	}).Info("Starting fleet simulation")

	states := make([]*VehicleState, 0, fleetSize)
	for i, id := range fleetIDs(fleetSize) {
		states = append(states, newVehicleState(id, rand.New(rand.NewSource(time.Now().UnixNano()+int64(i)))))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	simulate(ctx, states, emit, interval)
	log.Info("Simulation stopped")
}
