package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JSONB is a custom type for PostgreSQL JSONB fields
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface for JSONB
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface for JSONB
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return nil
	}
}

// NewJSONB creates a JSONB from any value
func NewJSONB(v interface{}) (JSONB, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var j JSONB
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	return j, nil
}

// Role is a user role. Roles are flat: every route declares the exact set
// it accepts, there is no ordering or inheritance between them.
type Role string

const (
	RoleAdmin            Role = "admin"
	RoleCustomer         Role = "customer"
	RoleDesigner         Role = "designer"
	RoleStaff            Role = "staff"
	RoleInventoryManager Role = "inventory_manager"
)

// ValidRole reports whether s is one of the five known roles.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleAdmin, RoleCustomer, RoleDesigner, RoleStaff, RoleInventoryManager:
		return true
	}
	return false
}

// Design lifecycle states
type DesignStatus string

const (
	DesignDraft    DesignStatus = "draft"
	DesignPending  DesignStatus = "pending"
	DesignApproved DesignStatus = "approved"
	DesignRejected DesignStatus = "rejected"
)

// Order fulfillment states
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderReturned   OrderStatus = "returned"
)

// Order payment states
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Return workflow states
type ReturnStatus string

const (
	ReturnPending  ReturnStatus = "pending"
	ReturnApproved ReturnStatus = "approved"
	ReturnRejected ReturnStatus = "rejected"
)

// Notification types
type NotificationType string

const (
	NotificationOrderPlaced     NotificationType = "order_placed"
	NotificationOrderStatus     NotificationType = "order_status"
	NotificationPaymentUpdate   NotificationType = "payment_update"
	NotificationDesignSubmitted NotificationType = "design_submitted"
	NotificationDesignReviewed  NotificationType = "design_reviewed"
	NotificationReturnUpdate    NotificationType = "return_update"
	NotificationLowStock        NotificationType = "low_stock"
	NotificationRoleChanged     NotificationType = "role_changed"
)

// User represents an account resolved from the external identity provider.
// The ID is the provider's opaque identity string, not a local uuid.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         Role      `json:"role" gorm:"type:varchar(32);default:'customer';not null;index"`
	PhoneNumber  string    `json:"phone_number"`
	ProfileImage string    `json:"profile_image"`
	Active       bool      `json:"active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Category is a tree-shaped product/design grouping.
type Category struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Name          string     `json:"name" gorm:"uniqueIndex;not null"`
	Description   string     `json:"description"`
	ParentID      *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`
	Parent        *Category  `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Subcategories []Category `json:"subcategories,omitempty" gorm:"foreignKey:ParentID"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Design is a designer submission moving through the review workflow.
type Design struct {
	ID              uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	DesignerID      string       `json:"designer_id" gorm:"not null;index"`
	Designer        *User        `json:"designer,omitempty" gorm:"foreignKey:DesignerID"`
	CategoryID      uuid.UUID    `json:"category_id" gorm:"type:uuid;not null;index"`
	Category        *Category    `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Name            string       `json:"name" gorm:"not null"`
	Description     string       `json:"description"`
	ImageURL        string       `json:"image_url"`
	Status          DesignStatus `json:"status" gorm:"type:varchar(16);default:'draft';not null;index"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time   `json:"approved_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Product is sellable inventory created from an approved design.
type Product struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	DesignID    uuid.UUID `json:"design_id" gorm:"type:uuid;uniqueIndex;not null"`
	Design      *Design   `json:"design,omitempty" gorm:"foreignKey:DesignID"`
	CategoryID  uuid.UUID `json:"category_id" gorm:"type:uuid;not null;index"`
	Category    *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Price       float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	ImageURL    string    `json:"image_url"`
	Active      bool      `json:"active" gorm:"default:true;index"`
	Stocks      []Stock   `json:"stocks,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Stock is a size/color variant of a product. Quantity never goes negative:
// decrements happen through a conditional update with a floor check.
type Stock struct {
	ID                uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	ProductID         uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_stock_variant"`
	Product           *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Size              string    `json:"size" gorm:"not null;uniqueIndex:idx_stock_variant"`
	Color             string    `json:"color" gorm:"not null;uniqueIndex:idx_stock_variant"`
	Quantity          int       `json:"quantity" gorm:"not null;default:0"`
	LowStockThreshold int       `json:"low_stock_threshold" gorm:"not null;default:5"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Order is a customer purchase. Status and PaymentStatus move jointly:
// (pending,pending) at checkout, (processing,paid) once payment is confirmed.
type Order struct {
	ID              uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	CustomerID      string        `json:"customer_id" gorm:"not null;index"`
	Customer        *User         `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	StaffID         *string       `json:"staff_id,omitempty" gorm:"index"`
	Staff           *User         `json:"staff,omitempty" gorm:"foreignKey:StaffID"`
	Status          OrderStatus   `json:"status" gorm:"type:varchar(16);default:'pending';not null;index"`
	PaymentStatus   PaymentStatus `json:"payment_status" gorm:"type:varchar(16);default:'pending';not null;index"`
	TotalAmount     float64       `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	ShippingAddress JSONB         `json:"shipping_address" gorm:"type:jsonb"`
	Items           []OrderItem   `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	Payment         *Payment      `json:"payment,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// OrderItem is a single line of an order. UnitPrice is captured at order
// time and never tracks the live product price.
type OrderItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Product   *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	StockID   uuid.UUID `json:"stock_id" gorm:"type:uuid;not null;index"`
	Stock     *Stock    `json:"stock,omitempty" gorm:"foreignKey:StockID"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	UnitPrice float64   `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payment intent states as reported by the provider
type PaymentIntentStatus string

const (
	PaymentIntentPending   PaymentIntentStatus = "pending"
	PaymentIntentSucceeded PaymentIntentStatus = "succeeded"
	PaymentIntentFailed    PaymentIntentStatus = "failed"
)

// Payment is the one-to-one payment record for an order, tied to an
// external provider payment intent.
type Payment struct {
	ID              uuid.UUID           `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	OrderID         uuid.UUID           `json:"order_id" gorm:"type:uuid;uniqueIndex;not null"`
	CustomerID      string              `json:"customer_id" gorm:"not null;index"`
	PaymentIntentID string              `json:"payment_intent_id" gorm:"uniqueIndex;not null"`
	Amount          float64             `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency        string              `json:"currency" gorm:"type:varchar(8);default:'usd'"`
	Method          string              `json:"method"`
	Status          PaymentIntentStatus `json:"status" gorm:"type:varchar(16);default:'pending';not null"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// Return is a customer return request against a delivered order item.
// At most one return may exist per order item.
type Return struct {
	ID          uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	OrderID     uuid.UUID    `json:"order_id" gorm:"type:uuid;not null;index"`
	Order       *Order       `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	OrderItemID uuid.UUID    `json:"order_item_id" gorm:"type:uuid;uniqueIndex;not null"`
	OrderItem   *OrderItem   `json:"order_item,omitempty" gorm:"foreignKey:OrderItemID"`
	CustomerID  string       `json:"customer_id" gorm:"not null;index"`
	StaffID     *string      `json:"staff_id,omitempty" gorm:"index"`
	Reason      string       `json:"reason" gorm:"not null"`
	ImageURL    string       `json:"image_url"`
	Status      ReturnStatus `json:"status" gorm:"type:varchar(16);default:'pending';not null;index"`
	Notes       string       `json:"notes"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Notification is a typed in-app message for a user.
type Notification struct {
	ID        uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID    string           `json:"user_id" gorm:"not null;index"`
	Type      NotificationType `json:"type" gorm:"type:varchar(32);not null"`
	Title     string           `json:"title" gorm:"not null"`
	Message   string           `json:"message"`
	Read      bool             `json:"read" gorm:"default:false;index"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Report types
type ReportType string

const (
	ReportMonthly ReportType = "monthly"
	ReportYearly  ReportType = "yearly"
)

// Report is an on-demand aggregation generated by an admin.
type Report struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	CreatedBy   string     `json:"created_by" gorm:"not null;index"`
	Creator     *User      `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
	Type        ReportType `json:"type" gorm:"type:varchar(16);not null"`
	PeriodStart time.Time  `json:"period_start" gorm:"not null"`
	PeriodEnd   time.Time  `json:"period_end" gorm:"not null"`
	Payload     JSONB      `json:"payload" gorm:"type:jsonb"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// AllModels is the migration set, ordered so foreign keys resolve.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Design{},
		&Product{},
		&Stock{},
		&Order{},
		&OrderItem{},
		&Payment{},
		&Return{},
		&Notification{},
		&Report{},
	}
}
