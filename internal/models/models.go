package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cents is a money amount in integer cents. It serializes as a decimal
// string ("149.90") to match the sale wire contract.
type Cents int64

func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON renders the amount as a quoted decimal string.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON accepts either a quoted decimal string in currency
// units or a bare JSON number in cents. Decimal fractions must have one
// or two digits; one-digit fractions mean tenths ("12.5" is 12.50).
func (c *Cents) UnmarshalJSON(data []byte) error {
	s := string(data)
	quoted := len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
	if quoted {
		s = s[1 : len(s)-1]
	}

	raw := s
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	wholePart, fracPart, hasFrac := strings.Cut(s, ".")
	whole, err := strconv.ParseInt(wholePart, 10, 64)
	if err != nil || whole < 0 {
		return fmt.Errorf("invalid money amount: %q", raw)
	}

	var v int64
	if hasFrac {
		if len(fracPart) < 1 || len(fracPart) > 2 {
			return fmt.Errorf("invalid money amount: %q", raw)
		}
		frac, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil || frac < 0 {
			return fmt.Errorf("invalid money amount: %q", raw)
		}
		if len(fracPart) == 1 {
			frac *= 10
		}
		v = whole*100 + frac
	} else if quoted {
		v = whole * 100
	} else {
		v = whole
	}

	if neg {
		v = -v
	}
	*c = Cents(v)
	return nil
}

// Product represents a product in the catalog together with its
// authoritative stock counter.
type Product struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Category  string    `db:"category" json:"category"`
	Price     Cents     `db:"price" json:"price"`
	Stock     int       `db:"stock" json:"stock"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Customer is the target of a sale's customer reference.
type Customer struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email,omitempty"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Sale is a committed sale transaction. Its line items are replaced
// wholesale on every amendment, never patched individually.
type Sale struct {
	ID            int64     `db:"id" json:"id"`
	CustomerID    int64     `db:"customer_id" json:"customer_id"`
	PaymentMethod string    `db:"payment_method" json:"payment_method"`
	Total         Cents     `db:"total" json:"total"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// SaleItem is one product/quantity/price tuple within a sale. UnitPrice
// is a snapshot captured when the item entered the cart; later product
// price changes do not affect it.
type SaleItem struct {
	ID        int64 `db:"id" json:"id"`
	SaleID    int64 `db:"sale_id" json:"sale_id"`
	ProductID int64 `db:"product_id" json:"product_id"`
	Quantity  int   `db:"quantity" json:"quantity"`
	UnitPrice Cents `db:"unit_price" json:"unit_price"`
}

// Payment methods accepted at the register.
const (
	PaymentCash            = "Cash"
	PaymentDebitCard       = "Debit Card"
	PaymentCreditCard      = "Credit Card"
	PaymentInstantTransfer = "Instant-Transfer Payment"
	PaymentBankTransfer    = "Bank Transfer"
)

// PaymentMethods lists every accepted payment method.
var PaymentMethods = []string{
	PaymentCash,
	PaymentDebitCard,
	PaymentCreditCard,
	PaymentInstantTransfer,
	PaymentBankTransfer,
}

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m string) bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// Stock movement reasons.
const (
	MovementReasonSale      = "SALE"
	MovementReasonAmendment = "AMENDMENT"
	MovementReasonRestock   = "RESTOCK"
)

// StockMovement is one audit-trail row: the net stock change a committed
// sale (or amendment) applied to a product. Summing deltas per product
// plus current stock reconstructs the pre-sales stock level.
type StockMovement struct {
	ID        int64     `db:"id" json:"id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	SaleID    int64     `db:"sale_id" json:"sale_id"`
	Delta     int       `db:"delta" json:"delta"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ProcessedEvent for consumer idempotency.
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
