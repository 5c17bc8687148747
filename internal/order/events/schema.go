package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hamba/avro/v2"
	"github.com/ridloal/woodkits-store/internal/order/domain"
)

const OrderPlacedSchemaTextV1 = `{
	"type": "record",
	"namespace": "woodkits.orders",
	"name": "order_placed",
	"fields": [
		{"name": "event_id", "type": "string"},
		{"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "order_id", "type": "string"},
		{"name": "status", "type": "string"},
		{"name": "customer_name", "type": "string"},
		{"name": "customer_email", "type": "string"},
		{"name": "city", "type": "string"},
		{"name": "locale", "type": "string"},
		{"name": "currency", "type": "string"},
		{"name": "total_amount", "type": "string"},
		{"name": "items", "type": {"type": "array", "items": {
			"type": "record",
			"name": "order_line",
			"fields": [
				{"name": "product_id", "type": "string"},
				{"name": "product_name", "type": "string"},
				{"name": "quantity", "type": "int"},
				{"name": "unit_price", "type": "string"},
				{"name": "configuration", "type": "string"}
			]
		}}}
	]
}`

var orderPlacedSchemaV1 = avro.MustParse(OrderPlacedSchemaTextV1)

type (
	// OrderPlacedV1 is the wire form of a newly placed order. Amounts are
	// decimal strings so consumers never see float rounding.
	OrderPlacedV1 struct {
		EventID       string        `avro:"event_id"`
		OccurredAt    time.Time     `avro:"occurred_at"`
		OrderID       string        `avro:"order_id"`
		Status        string        `avro:"status"`
		CustomerName  string        `avro:"customer_name"`
		CustomerEmail string        `avro:"customer_email"`
		City          string        `avro:"city"`
		Locale        string        `avro:"locale"`
		Currency      string        `avro:"currency"`
		TotalAmount   string        `avro:"total_amount"`
		Items         []OrderLineV1 `avro:"items"`
	}

	OrderLineV1 struct {
		ProductID     string `avro:"product_id"`
		ProductName   string `avro:"product_name"`
		Quantity      int    `avro:"quantity"`
		UnitPrice     string `avro:"unit_price"`
		Configuration string `avro:"configuration"` // JSON
	}
)

func orderPlacedFromDomain(o *domain.Order, now time.Time) (OrderPlacedV1, error) {
	ev := OrderPlacedV1{
		EventID:       uuid.NewString(),
		OccurredAt:    now.UTC().Truncate(time.Millisecond),
		OrderID:       o.ID,
		Status:        string(o.Status),
		CustomerName:  o.Customer.Name,
		CustomerEmail: o.Customer.Email,
		City:          o.Customer.City,
		Locale:        o.Locale,
		Currency:      o.Currency,
		TotalAmount:   o.TotalAmount.String(),
		Items:         make([]OrderLineV1, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		cfg, err := json.Marshal(it.Configuration)
		if err != nil {
			return OrderPlacedV1{}, err
		}
		ev.Items = append(ev.Items, OrderLineV1{
			ProductID:     it.ProductID,
			ProductName:   it.ProductName,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice.String(),
			Configuration: string(cfg),
		})
	}
	return ev, nil
}

func EncodeOrderPlacedV1(ev OrderPlacedV1) ([]byte, error) {
	return avro.Marshal(orderPlacedSchemaV1, ev)
}

func DecodeOrderPlacedV1(data []byte) (OrderPlacedV1, error) {
	var ev OrderPlacedV1
	err := avro.Unmarshal(orderPlacedSchemaV1, data, &ev)
	return ev, err
}
