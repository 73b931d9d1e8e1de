package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	domorder "example.com/coffee-shop/app/internal/domain/order"
)

const (
	DefaultTopic         = "orders.placed"
	EventTypeOrderPlaced = "order_placed"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderPlaced is the payload published for every paid order.
type OrderPlaced struct {
	OrderNumber int64             `json:"order_number"`
	UserID      int64             `json:"user_id"`
	Items       []OrderPlacedItem `json:"items"`
	Subtotal    string            `json:"subtotal"`
	Tax         string            `json:"tax"`
	Total       string            `json:"total"`
	PlacedAt    time.Time         `json:"placed_at"`
}

type OrderPlacedItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int64  `json:"quantity"`
}

// OrderPublisher writes order-placed events to Kafka, keyed by order number.
type OrderPublisher struct {
	writer messageWriter
}

func NewOrderPublisher(topic string, brokers ...string) *OrderPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &OrderPublisher{writer: w}
}

func (p *OrderPublisher) Record(ctx context.Context, o *domorder.Order) error {
	payload, err := json.Marshal(newOrderPlaced(o))
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(o.Number, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrderPlaced)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order %d: %w", o.Number, err)
	}
	return nil
}

func (p *OrderPublisher) Close() error {
	return p.writer.Close()
}

func newOrderPlaced(o *domorder.Order) OrderPlaced {
	items := make([]OrderPlacedItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderPlacedItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.Price.StringFixed(2),
			Quantity:  item.Quantity,
		})
	}
	return OrderPlaced{
		OrderNumber: o.Number,
		UserID:      o.UserID,
		Items:       items,
		Subtotal:    o.Subtotal.StringFixed(2),
		Tax:         o.Tax.StringFixed(2),
		Total:       o.Total.StringFixed(2),
		PlacedAt:    o.CreatedAt,
	}
}
