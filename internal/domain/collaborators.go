package domain

import "context"

// SearchParameters narrows an order repository query. Zero-valued fields
// are ignored.
type SearchParameters struct {
	IDs          []string
	Statuses     []Status
	Types        []Type
	OrderNumbers []int
}

// OrderRepository is the order backing store. Saves are fire-and-forget
// from the engine's perspective: no transactional guarantee is assumed.
type OrderRepository interface {
	Find(ctx context.Context, params SearchParameters) ([]*Order, error)
	Save(ctx context.Context, order *Order) error
	SaveItem(ctx context.Context, item *OrderItem) error
}

// OrderVerification is a WMS scan-verification record for an order.
type OrderVerification struct {
	VerificationID string `json:"id"`
	Successful     bool   `json:"successful"`
}

// VerificationSearchRequest asks the WMS for the verification records of
// a single order.
type VerificationSearchRequest struct {
	OrderNumber   int    `json:"orderNumber"`
	TransactionID string `json:"transactionId"`
}

// VerificationSearchResponse carries the verification records found.
type VerificationSearchResponse struct {
	Verifications []OrderVerification `json:"verifications"`
}

// PickSearchRequest asks the WMS for picks, either every pick on an
// order or a batch of picks by identifier.
type PickSearchRequest struct {
	OrderNumber   int    `json:"orderNumber,omitempty"`
	PickIDs       []int  `json:"pickIds,omitempty"`
	TransactionID string `json:"transactionId"`
}

// PickSearchResponse carries the picks found.
type PickSearchResponse struct {
	Picks []*Pick `json:"picks"`
}

// PickSaveRequest writes a mutated pick back to the WMS.
type PickSaveRequest struct {
	Pick          *Pick  `json:"pick"`
	TransactionID string `json:"transactionId"`
}

// WarehouseManagement is the warehouse-management collaborator.
type WarehouseManagement interface {
	SearchVerifications(ctx context.Context, req VerificationSearchRequest) (*VerificationSearchResponse, error)
	SearchPicks(ctx context.Context, req PickSearchRequest) (*PickSearchResponse, error)
	SavePick(ctx context.Context, req PickSaveRequest) error
}

// Consolidation is the consolidation collaborator. Status returns
// (nil, nil) when no consolidation record exists for the order.
type Consolidation interface {
	Status(ctx context.Context, orderNumber int, transactionID string) (*ConsolidatableOrder, error)
	UpdateOrderItemLabel(ctx context.Context, orderNumber string, itemID string, label Label) error
	Hold(ctx context.Context, orderNumber int, transactionID string) error
}

// Message is an opaque text-bodied inbound message.
type Message struct {
	MessageID string
	Body      string
}

// MessageQueue is the inbound pick-completion queue. Drain consumes the
// queue's current contents as a snapshot: one read, no re-reading while
// the batch is processed.
type MessageQueue interface {
	Drain(ctx context.Context) ([]Message, error)
}
