package nats

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Event subjects
const (
	SubjectOrderCreated       = "order.created"
	SubjectOrderPaid          = "order.paid"
	SubjectOrderStatusChanged = "order.status_changed"
	SubjectDesignSubmitted    = "design.submitted"
	SubjectDesignReviewed     = "design.reviewed"
	SubjectReturnRequested    = "return.requested"
	SubjectReturnProcessed    = "return.processed"
	SubjectStockLow           = "stock.low"
	SubjectUserRoleChanged    = "user.role_changed"
)

// OrderEvent is published on order creation, payment and status changes
type OrderEvent struct {
	EventType   string    `json:"event_type"`
	OrderID     string    `json:"order_id"`
	CustomerID  string    `json:"customer_id"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"total_amount"`
	Timestamp   time.Time `json:"timestamp"`
}

// DesignEvent is published when a design is submitted or reviewed
type DesignEvent struct {
	EventType  string    `json:"event_type"`
	DesignID   string    `json:"design_id"`
	DesignerID string    `json:"designer_id"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// ReturnEvent is published when a return is filed or processed
type ReturnEvent struct {
	EventType  string    `json:"event_type"`
	ReturnID   string    `json:"return_id"`
	OrderID    string    `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// StockEvent is published when a stock row crosses its low threshold
type StockEvent struct {
	EventType string    `json:"event_type"`
	StockID   string    `json:"stock_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Threshold int       `json:"threshold"`
	Timestamp time.Time `json:"timestamp"`
}

// UserEvent is published when an admin mutates a user's role
type UserEvent struct {
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id"`
	OldRole   string    `json:"old_role"`
	NewRole   string    `json:"new_role"`
	ChangedBy string    `json:"changed_by"`
	Timestamp time.Time `json:"timestamp"`
}

// Client wraps the NATS connection. A nil *Client is a no-op publisher, so
// the service keeps working when NATS is down.
type Client struct {
	conn   *nats.Conn
	logger *logrus.Logger
}

// NewClient connects to NATS
func NewClient(url string, logger *logrus.Logger) (*Client, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &Client{conn: conn, logger: logger}, nil
}

// Close drains and closes the connection
func (c *Client) Close() {
	if c == nil || c.conn == nil {
		return
	}
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
	}
}

// Publish marshals the event and publishes it on the subject. Publish
// failures are logged, never surfaced to the request path.
func (c *Client) Publish(subject string, event interface{}) {
	if c == nil || c.conn == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		c.logger.WithError(err).WithField("subject", subject).Warn("Failed to marshal event")
		return
	}

	if err := c.conn.Publish(subject, data); err != nil {
		c.logger.WithError(err).WithField("subject", subject).Warn("Failed to publish event")
	}
}
