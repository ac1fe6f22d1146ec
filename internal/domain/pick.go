package domain

import "time"

// PickStatus represents the state of a pick inside the warehouse
// management system. A nil *PickStatus on a Pick means the pick has not
// been worked yet.
type PickStatus string

const (
	PickStatusSuspended PickStatus = "suspended"
	PickStatusWIP       PickStatus = "wip"
	PickStatusPicked    PickStatus = "picked"
	PickStatusAssigned  PickStatus = "assigned"
	PickStatusDelivered PickStatus = "delivered"
)

var pickStatusDescriptions = map[PickStatus]string{
	PickStatusSuspended: "Suspended",
	PickStatusWIP:       "Work in Progress",
	PickStatusPicked:    "Successfully Picked",
	PickStatusAssigned:  "Assigned to Picker",
	PickStatusDelivered: "Delivered to Picker",
}

// Description returns the operator-facing description for the status.
func (s PickStatus) Description() string {
	if description, ok := pickStatusDescriptions[s]; ok {
		return description
	}
	return string(s)
}

// Skill is a picker capability. StragglerSkill, when present, is the
// fallback capability a re-pick is routed to.
type Skill struct {
	SkillID        string `bson:"skillId" json:"skillId"`
	StragglerSkill *Skill `bson:"stragglerSkill,omitempty" json:"stragglerSkill,omitempty"`
}

// RepickSkill resolves the effective skill for a re-pick: the straggler
// fallback when one exists, the original skill otherwise.
func (s Skill) RepickSkill() Skill {
	if s.StragglerSkill != nil {
		return *s.StragglerSkill
	}
	return s
}

// Pick is the WMS view of a single pick attempt against an order line.
// Picks are retrieved transiently per sweep or completion batch and are
// written back through the WarehouseManagement client.
type Pick struct {
	PickID            int         `json:"id"`
	OrderItemID       string      `json:"orderItemId"`
	LastUpdate        time.Time   `json:"lastUpdate"`
	Status            *PickStatus `json:"status,omitempty"`
	WorkerID          string      `json:"wmsUserId,omitempty"`
	Straggled         bool        `json:"straggled"`
	Skill             Skill       `json:"skill"`
	Quantity          float64     `json:"quantity"`
	OrderNumber       int         `json:"orderNumber"`
	CreatedOn         time.Time   `json:"createdOn"`
	FulfillmentStatus string      `json:"fulfillmentStatus,omitempty"`
}

// WasWorked reports whether the pick was ever touched by a worker: it
// either has a status or has been assigned.
func (p *Pick) WasWorked() bool {
	return p.Status != nil || p.WorkerID != ""
}

// Suspended reports whether the pick is currently suspended.
func (p *Pick) Suspended() bool {
	return p.Status != nil && *p.Status == PickStatusSuspended
}

// DeemedOut reports whether a straggler specialist has declared the pick
// permanently unfillable: straggled with no fallback skill while
// suspended. Such picks are never auto-repicked again.
func (p *Pick) DeemedOut() bool {
	return p.Straggled && p.Skill.StragglerSkill == nil && p.Suspended()
}

// HandledByStraggler reports whether the pick has already been routed to
// a straggler specialist with no further fallback.
func (p *Pick) HandledByStraggler() bool {
	return p.Straggled && p.Skill.StragglerSkill == nil
}

// Repick resets the pick for another attempt: the effective skill is
// resolved through the straggler fallback, worker assignment and status
// are cleared, and the pick is flagged straggled with zero quantity.
func (p *Pick) Repick(now time.Time) {
	p.Skill = p.Skill.RepickSkill()
	p.Status = nil
	p.WorkerID = ""
	p.Straggled = true
	p.LastUpdate = now
	p.Quantity = 0
}

// MostRecentlyUpdated returns the pick with the newest LastUpdate, or nil
// for an empty slice.
func MostRecentlyUpdated(picks []*Pick) *Pick {
	var mostRecent *Pick
	for _, pick := range picks {
		if mostRecent == nil || pick.LastUpdate.After(mostRecent.LastUpdate) {
			mostRecent = pick
		}
	}
	return mostRecent
}

// MostRecentlyCreated returns the pick with the newest CreatedOn, or nil
// for an empty slice. The completion processor keys recency on creation
// time rather than last update.
func MostRecentlyCreated(picks []*Pick) *Pick {
	var mostRecent *Pick
	for _, pick := range picks {
		if mostRecent == nil || pick.CreatedOn.After(mostRecent.CreatedOn) {
			mostRecent = pick
		}
	}
	return mostRecent
}
