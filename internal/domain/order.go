package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status represents order status
type Status string

const (
	StatusNew          Status = "new"
	StatusReplenishing Status = "replenishing"
	StatusReady        Status = "ready"
	StatusReserved     Status = "reserved"
	StatusWIP          Status = "wip"
	StatusSplit        Status = "split"
	StatusComplete     Status = "complete"
	StatusCancelled    Status = "cancelled"
)

// statusIDs maps the WMS numeric status identifiers onto statuses. The
// upstream WMS speaks numeric ids on the wire; everything here speaks the
// string forms.
var statusIDs = map[int]Status{
	1: StatusNew,
	2: StatusReplenishing,
	3: StatusReady,
	4: StatusReserved,
	5: StatusWIP,
	6: StatusSplit,
	7: StatusComplete,
	8: StatusCancelled,
}

// StatusByID resolves a WMS numeric status identifier.
func StatusByID(id int) (Status, bool) {
	status, ok := statusIDs[id]
	return status, ok
}

// Type represents order type
type Type string

const (
	TypeB2C        Type = "b2c"
	TypeB2B        Type = "b2b"
	TypeLargeBulky Type = "large_bulky_item"
)

var typeIDs = map[int]Type{
	1: TypeB2C,
	2: TypeB2B,
	3: TypeLargeBulky,
}

// TypeByID resolves a WMS numeric type identifier.
func TypeByID(id int) (Type, bool) {
	orderType, ok := typeIDs[id]
	return orderType, ok
}

// OrderTypes returns every known order type.
func OrderTypes() []Type {
	return []Type{TypeB2C, TypeB2B, TypeLargeBulky}
}

// ItemStatus represents the status of a single order line
type ItemStatus string

const (
	ItemStatusWIP       ItemStatus = "wip"
	ItemStatusStraggled ItemStatus = "straggled"
	ItemStatusPicked    ItemStatus = "picked"
	ItemStatusDeleted   ItemStatus = "deleted"
	ItemStatusPlaced    ItemStatus = "placed"
)

// Order is the aggregate root for exception reconciliation. Orders are
// loaded per sweep, mutated by a single resolver task, and written back
// through the OrderRepository; they are never shared across tasks.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	OrderID       string             `bson:"orderId" json:"orderId"`
	Number        int                `bson:"orderNumber" json:"orderNumber"`
	Status        Status             `bson:"status" json:"status"`
	Type          Type               `bson:"type" json:"type"`
	ReservationID string             `bson:"reservationId,omitempty" json:"reservationId,omitempty"`
	Items         []OrderItem        `bson:"items" json:"items"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	LastUpdate    time.Time          `bson:"lastUpdate" json:"lastUpdate"`
	CompletedOn   *time.Time         `bson:"completedOn,omitempty" json:"completedOn,omitempty"`
}

// OrderItem represents a single line on an order.
type OrderItem struct {
	ItemID       string     `bson:"itemId" json:"itemId"`
	Status       ItemStatus `bson:"status" json:"status"`
	Shipped      bool       `bson:"shipped" json:"shipped"`
	Released     bool       `bson:"released" json:"released"`
	NumStraggles int        `bson:"numStraggles" json:"numStraggles"`
}

// Deleted reports whether the line has been removed from the order.
// Deleted lines never participate in aggregate completion checks and are
// never repick candidates.
func (i *OrderItem) Deleted() bool {
	return i.Status == ItemStatusDeleted
}

// Repickable reports whether the line is in a status that permits a
// forced re-pick (WIP, STRAGGLED, or PICKED).
func (i *OrderItem) Repickable() bool {
	switch i.Status {
	case ItemStatusWIP, ItemStatusStraggled, ItemStatusPicked:
		return true
	default:
		return false
	}
}

// HasReservation reports whether the order carries an active consolidation
// reservation. Reservations suffixed "-X" have been released and do not
// count.
func (o *Order) HasReservation() bool {
	return o.ReservationID != "" && !strings.HasSuffix(o.ReservationID, "-X")
}

// AllItemsShipped reports whether every non-deleted line has shipped.
func (o *Order) AllItemsShipped() bool {
	for i := range o.Items {
		if o.Items[i].Deleted() {
			continue
		}
		if !o.Items[i].Shipped {
			return false
		}
	}
	return true
}

// AllItemsPlaced reports whether every non-deleted line has been placed
// into its consolidation slot.
func (o *Order) AllItemsPlaced() bool {
	for i := range o.Items {
		if o.Items[i].Deleted() {
			continue
		}
		if o.Items[i].Status != ItemStatusPlaced {
			return false
		}
	}
	return true
}

// MarkComplete moves the order to COMPLETE and stamps the completion time.
// Completion only ever moves forward; marking an already complete order
// keeps the original stamp.
func (o *Order) MarkComplete(now time.Time) {
	if o.Status == StatusComplete {
		return
	}
	o.Status = StatusComplete
	o.CompletedOn = &now
}

// Item returns the line with the given identifier, or nil.
func (o *Order) Item(itemID string) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ItemID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}
