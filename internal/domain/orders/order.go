package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderMode is the lifecycle/operation tag carried by an order during a write
// pass. It drives which remote operation is invoked and is distinct from the
// webhook event mode.
type OrderMode string

const (
	ModeNew        OrderMode = "NEW"
	ModeAlter      OrderMode = "ALTER"
	ModeValidate   OrderMode = "VALIDATE"
	ModeUnvalidate OrderMode = "UNVALIDATE"
	ModeExpGo      OrderMode = "EXP_GO"
	ModeDelete     OrderMode = "DELETE"
	ModeRejected   OrderMode = "REJECTED"
	ModeDeleted    OrderMode = "DELETED"
)

// IsSentinel returns true for the rejection/deletion sentinel modes. Orders
// carrying a sentinel mode must never be written back to the provider.
func (m OrderMode) IsSentinel() bool {
	return m == ModeRejected || m == ModeDeleted
}

// Address is the delivery contact/address sub-record. Write-mostly: the
// provider echoes it back but the connector never derives state from it.
type Address struct {
	ContactName string
	Company     string
	Line1       string
	Line2       string
	Line3       string
	ZipCode     string
	City        string
	CountryCode string
	Phone       string
	Mobile      string
	Email       string
	// RelayID identifies the pickup point for relay carriers
	RelayID string
}

// Parcel is a read-only shipment sub-record, populated only when the
// extended API variant is selected.
type Parcel struct {
	Status         int
	TrackingNumber string
	WeightGrams    int
	Contents       []ParcelContent
}

// ParcelContent is one product line inside a parcel
type ParcelContent struct {
	ProductRef string
	Quantity   int
}

// Order is the canonical in-memory representation of a remote order. It is
// created on load-by-id or create-request, mutated field by field across one
// write pass, and submitted as a single remote upsert; it never persists
// in-process between requests.
type Order struct {
	// InternalID is assigned by the provider
	InternalID string
	// DestID is the caller-assigned business id, the unique key used by
	// CRUD and by the rejection/deletion sentinels
	DestID string

	Mode OrderMode

	// Status is the raw provider status code. Nil means "not yet set":
	// the provider distinguishes an order without a status from one at
	// status zero.
	Status *int

	CarrierCode string
	// Total is the order value captured during the write pass, consumed by
	// the value-based custom carrier rules
	Total *decimal.Decimal

	Items           []Item
	DeliveryAddress Address
	Parcels         []Parcel

	Origin    string
	CreatedAt time.Time
}

// RawStatus returns the raw status code and whether it is set
func (o *Order) RawStatus() (int, bool) {
	if o.Status == nil {
		return 0, false
	}
	return *o.Status, true
}

// SetStatus sets the raw status code
func (o *Order) SetStatus(code int) {
	o.Status = &code
}
