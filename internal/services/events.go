package services

import (
	"encoding/json"

	"go.uber.org/zap"
)

const EventsExchange = "petshop.events"

const (
	RoutingOrderCreated          = "order.created"
	RoutingAppointmentsBooked    = "appointments.booked"
	RoutingAppointmentsCancelled = "appointments.cancelled"
)

// EventPublisher sends a message to a broker exchange.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// publishEvent is fire-and-forget: the change it reports is already
// committed, so a broker failure is only logged.
func publishEvent(pub EventPublisher, logger *zap.Logger, routingKey string, payload interface{}) {
	if pub == nil {
		logger.Debug("event publisher not configured, skipping", zap.String("routing_key", routingKey))
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("failed to marshal event", zap.String("routing_key", routingKey), zap.Error(err))
		return
	}
	if err := pub.Publish(EventsExchange, routingKey, body); err != nil {
		logger.Warn("failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
		return
	}
	logger.Debug("event published", zap.String("routing_key", routingKey))
}

type OrderCreatedEvent struct {
	OrderID     uint   `json:"order_id"`
	OrderNumber string `json:"order_number"`
	UserID      uint   `json:"user_id"`
	TotalAmount string `json:"total_amount"`
	ItemCount   int    `json:"item_count"`
}

type AppointmentsEvent struct {
	BookingCode    string `json:"booking_code"`
	UserID         uint   `json:"user_id"`
	AppointmentIDs []uint `json:"appointment_ids"`
}
