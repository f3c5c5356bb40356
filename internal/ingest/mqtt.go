// Package ingest moves telemetry between vehicles and the store over MQTT.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-tracking/internal/models"
)

const (
	qos            = 1
	connectTimeout = 10 * time.Second
	insertTimeout  = 5 * time.Second
)

var (
	ErrInvalidPayload  = errors.New("invalid telemetry payload")
	ErrVehicleMismatch = errors.New("vehicle id does not match topic")
)

// Sink stores one telemetry record.
type Sink interface {
	InsertTelemetry(ctx context.Context, telemetry models.Telemetry) error
}

// TelemetryTopic is the topic a vehicle publishes its samples on.
func TelemetryTopic(vehicleID string) string {
	return "fleet/" + vehicleID + "/telemetry"
}

// vehicleFromTopic returns the second level of a fleet/<id>/telemetry topic.
func vehicleFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "fleet" || parts[2] != "telemetry" {
		return ""
	}
	return parts[1]
}

func clientOptions(broker, prefix string) *mqtt.ClientOptions {
	return mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(prefix + "-" + uuid.NewString()).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true)
}

func wait(token mqtt.Token, what string) error {
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("%s: timed out", what)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

// Subscriber stores telemetry received on an MQTT topic filter.
type Subscriber struct {
	broker string
	topic  string
	sink   Sink
	log    *logrus.Entry
	client mqtt.Client
	ctx    context.Context
}

// NewSubscriber returns a subscriber for topic on broker. Call Start to
// connect.
func NewSubscriber(broker, topic string, sink Sink, logger *logrus.Entry) *Subscriber {
	return &Subscriber{
		broker: broker,
		topic:  topic,
		sink:   sink,
		log:    logger.WithField("component", "mqtt"),
	}
}

// Start connects to the broker and subscribes. The subscription is renewed
// after every reconnect. Inserts run under ctx until Stop is called.
func (s *Subscriber) Start(ctx context.Context) error {
	s.ctx = ctx
	opts := clientOptions(s.broker, "fleet-ingest").
		SetOnConnectHandler(func(c mqtt.Client) {
			if err := wait(c.Subscribe(s.topic, qos, s.onMessage), "subscribe "+s.topic); err != nil {
				s.log.WithError(err).Error("MQTT subscription failed")
				return
			}
			s.log.WithField("topic", s.topic).Info("Subscribed to telemetry")
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			s.log.WithError(err).Warn("MQTT connection lost")
		})

	s.client = mqtt.NewClient(opts)
	if err := wait(s.client.Connect(), "connect "+s.broker); err != nil {
		return err
	}
	return nil
}

// Stop unsubscribes and disconnects.
func (s *Subscriber) Stop() {
	if s.client == nil || !s.client.IsConnected() {
		return
	}
	if err := wait(s.client.Unsubscribe(s.topic), "unsubscribe"); err != nil {
		s.log.WithError(err).Warn("MQTT unsubscribe failed")
	}
	s.client.Disconnect(250)
}

func (s *Subscriber) onMessage(_ mqtt.Client, msg mqtt.Message) {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.handleMessage(ctx, msg.Topic(), msg.Payload()); err != nil {
		s.log.WithError(err).WithField("topic", msg.Topic()).Warn("Dropped telemetry message")
	}
}

// handleMessage decodes, validates and stores one message. A payload
// without vehicle_id takes it from the topic.
func (s *Subscriber) handleMessage(ctx context.Context, topic string, payload []byte) error {
	var record models.Telemetry
	if err := json.Unmarshal(payload, &record); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if fromTopic := vehicleFromTopic(topic); fromTopic != "" {
		if record.VehicleID == "" {
			record.VehicleID = fromTopic
		} else if record.VehicleID != fromTopic {
			return fmt.Errorf("%w: %s on %s", ErrVehicleMismatch, record.VehicleID, topic)
		}
	}
	if err := models.Validate(record); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	ctx, cancel := context.WithTimeout(ctx, insertTimeout)
	defer cancel()
	if err := s.sink.InsertTelemetry(ctx, record); err != nil {
		return fmt.Errorf("store telemetry: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"vehicle_id": record.VehicleID,
		"timestamp":  record.Timestamp,
	}).Debug("Telemetry ingested")
	return nil
}

// Publisher sends telemetry samples to the broker.
type Publisher struct {
	client mqtt.Client
}

// NewPublisher connects a publishing client to broker.
func NewPublisher(broker string) (*Publisher, error) {
	client := mqtt.NewClient(clientOptions(broker, "fleet-sim"))
	if err := wait(client.Connect(), "connect "+broker); err != nil {
		return nil, err
	}
	return &Publisher{client: client}, nil
}

// Publish sends one sample on the vehicle's telemetry topic.
func (p *Publisher) Publish(record models.Telemetry) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal telemetry: %w", err)
	}
	return wait(p.client.Publish(TelemetryTopic(record.VehicleID), qos, false, payload), "publish")
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
