package models

import (
	"fmt"
	"time"
)

// TicketParams holds the six scalar fields embedded in the QR code printed on
// a fiscal receipt. The fields are immutable once parsed; Time and Sum keep
// the operator's original string form so the lookup URL reproduces them
// byte-for-byte.
type TicketParams struct {
	Time            string `json:"t"`  // operator-format timestamp, e.g. 20230101T1200
	Sum             string `json:"s"`  // receipt total, decimal string
	FiscalStorage   uint64 `json:"fn"` // fiscal storage unit id
	Index           uint32 `json:"i"`  // receipt index within the fiscal storage
	FiscalSignature uint64 `json:"fp"` // fiscal signature
	Number          uint64 `json:"n"`  // fiscal document number
}

// Key derives the idempotency key for the receipt. A physical receipt is
// uniquely identified by its (timestamp, index) pair; the timestamp is used
// verbatim, never reparsed.
func (p TicketParams) Key() string {
	return fmt.Sprintf("%s;%d", p.Time, p.Index)
}

// RawTicketItem is one line item exactly as the fiscal operator reports it.
// Sum is in minor currency units (kopecks).
type RawTicketItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Sum      int64   `json:"sum"`
}

// Ticket is the operator's resolved view of a receipt: the transaction time
// plus the raw line items, pre-aggregation.
type Ticket struct {
	Date  time.Time
	Items []RawTicketItem
}

// TicketItem is one aggregated row per distinct product within a ticket.
// Sum is in major currency units.
type TicketItem struct {
	Name     string
	Quantity float64
	Sum      float64
}

// TicketLine is a persisted ticket row joined against the product category
// table. Category and Name are nil when the product has no category assigned.
type TicketLine struct {
	Date     string
	Product  string
	Category *string
	Name     *string
	Quantity float64
	Sum      float64
}

// ProductCategory is one row of the product listing: a product seen in at
// least one ticket, with its category assignment when present.
type ProductCategory struct {
	Product  string
	Category *string
	Name     *string
}

// CategoryName is a complete category assignment for a single product.
type CategoryName struct {
	Category string
	Name     string
}
