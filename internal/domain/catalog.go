package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DeliveryMode string

const (
	DeliveryAuto                DeliveryMode = "auto"
	DeliveryManualLink          DeliveryMode = "manual-link"
	DeliveryManualEmailPassword DeliveryMode = "manual-email-password"
	DeliveryManualText          DeliveryMode = "manual-text"
	DeliveryChat                DeliveryMode = "chat"
)

var DeliveryModes = []DeliveryMode{
	DeliveryAuto,
	DeliveryManualLink,
	DeliveryManualEmailPassword,
	DeliveryManualText,
	DeliveryChat,
}

func (m DeliveryMode) IsValid() bool {
	for _, known := range DeliveryModes {
		if m == known {
			return true
		}
	}
	return false
}

func (m DeliveryMode) IsAuto() bool {
	return m == DeliveryAuto
}

// AllowsQuantity reports whether the caller may buy more than one unit per order.
func (m DeliveryMode) AllowsQuantity() bool {
	return m == DeliveryAuto || m == DeliveryChat
}

// InitialStatus is the status an order of this mode is created in.
func (m DeliveryMode) InitialStatus() OrderStatus {
	if m.IsAuto() {
		return OrderCompleted
	}
	return OrderPending
}

// DeliveryFields are the customer-supplied inputs of manual delivery modes.
type DeliveryFields struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Link     string `json:"link,omitempty"`
	Text     string `json:"text,omitempty"`
}

// Validate checks that the fields the mode depends on are present.
func (m DeliveryMode) Validate(fields DeliveryFields) error {
	var missing []string
	switch m {
	case DeliveryManualLink:
		if strings.TrimSpace(fields.Link) == "" {
			missing = append(missing, "link")
		}
	case DeliveryManualEmailPassword:
		if strings.TrimSpace(fields.Email) == "" {
			missing = append(missing, "email")
		}
		if fields.Password == "" {
			missing = append(missing, "password")
		}
	case DeliveryManualText:
		if strings.TrimSpace(fields.Text) == "" {
			missing = append(missing, "text")
		}
	}

	if len(missing) > 0 {
		return ErrMissingDeliveryFields.With("fields", missing)
	}
	return nil
}

type ProductOption struct {
	ID                  uint            `json:"id"`
	ProductID           uint            `json:"product_id"`
	Name                string          `json:"name"`
	Price               decimal.Decimal `json:"price"`
	DeliveryMode        DeliveryMode    `json:"delivery_mode"`
	PurchaseLimit       *int            `json:"purchase_limit,omitempty"`
	MaxQuantityPerOrder *int            `json:"max_quantity_per_order,omitempty"`
	IsActive            bool            `json:"is_active"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// ResolveQuantity applies the option's quantity rules to the requested amount.
// Zero means no quantity was given and buys one; a negative amount is refused.
func (o ProductOption) ResolveQuantity(requested int) (int, error) {
	if !o.DeliveryMode.AllowsQuantity() {
		return 1, nil
	}
	switch {
	case requested < 0:
		return 0, ErrQuantityLimitExceeded.With("min_quantity", 1)
	case requested == 0:
		requested = 1
	}
	if o.MaxQuantityPerOrder != nil && requested > *o.MaxQuantityPerOrder {
		return 0, ErrQuantityLimitExceeded.With("max_quantity", *o.MaxQuantityPerOrder)
	}
	return requested, nil
}

type StockItem struct {
	ID              uint       `json:"id"`
	ProductOptionID uint       `json:"product_option_id"`
	Content         string     `json:"-"`
	IsSold          bool       `json:"is_sold"`
	SoldToOrderID   *uint      `json:"sold_to_order_id,omitempty"`
	SoldAt          *time.Time `json:"sold_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// JoinContents is the delivered payload of an auto order.
func JoinContents(items []StockItem) string {
	contents := make([]string, len(items))
	for i, item := range items {
		contents[i] = item.Content
	}
	return strings.Join(contents, "\n")
}

type DevicePurchase struct {
	ID              uint      `json:"id"`
	Fingerprint     string    `json:"fingerprint"`
	ProductOptionID uint      `json:"product_option_id"`
	Quantity        int       `json:"quantity"`
	OrderID         uint      `json:"order_id"`
	CreatedAt       time.Time `json:"created_at"`
}
