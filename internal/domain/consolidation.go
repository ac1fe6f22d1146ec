package domain

import (
	"strconv"
	"time"
)

// Consolidation-facing labels pushed as a write-only side channel to the
// consolidation UI.
const (
	LabelPicked           = "Picked"
	LabelPartial          = "Partial"
	LabelOut              = "Out"
	LabelRepickPending    = "Repick (Pending)"
	LabelRepickedInFlight = "Repicked (In Flight)"
	LabelRepickedComplete = "Repicked (Complete)"
)

// Label describes the consolidation-UI presentation state of an item.
type Label struct {
	Text string `json:"text"`
}

// ConsolidatableOrder is the consolidation collaborator's view of an
// order. It is retrieved transiently and never persisted by this service.
type ConsolidatableOrder struct {
	Items []ConsolidatableOrderItem `json:"items"`
}

// ConsolidatableOrderItem is a single consolidation slot. Its identifier
// parses as the numeric identifier of the pick occupying the slot.
type ConsolidatableOrderItem struct {
	ItemID     string    `json:"id"`
	LastUpdate time.Time `json:"lastUpdate"`
	Placed     bool      `json:"placed"`
}

// ItemsByPickID indexes the consolidated items by their parsed pick
// identifier. Items whose identifiers do not parse are returned in
// skipped for the caller to log; they are not fatal.
func (o *ConsolidatableOrder) ItemsByPickID() (byPickID map[int]*ConsolidatableOrderItem, skipped []string) {
	byPickID = make(map[int]*ConsolidatableOrderItem, len(o.Items))
	for i := range o.Items {
		pickID, err := strconv.Atoi(o.Items[i].ItemID)
		if err != nil {
			skipped = append(skipped, o.Items[i].ItemID)
			continue
		}
		byPickID[pickID] = &o.Items[i]
	}
	return byPickID, skipped
}
