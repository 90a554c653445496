// Defines the WorkUnit struct that models one item travelling through the pipeline.
// Tracks arrival and the per-stage timestamps stamped as the unit advances.

package sim

import (
	"fmt"
)

// UnitState represents the lifecycle state of a work unit.
type UnitState string

const (
	StateCreated     UnitState = "created"
	StatePrepping    UnitState = "prepping"
	StateInTransport UnitState = "in-transport"
	StateFinishing   UnitState = "finishing"
	StateCompleted   UnitState = "completed"
)

// WorkUnit is owned by exactly one stage process at a time. Timestamps are
// virtual seconds and are meaningful only once the owning stage has set them.
type WorkUnit struct {
	ID    int       // 0-based, assigned in creation order
	State UnitState // created, prepping, in-transport, finishing, completed

	ArrivalTime  float64 // Time the unit entered the pipeline
	PrepStart    float64 // Time a prep server was granted
	PrepEnd      float64 // Time prep service finished
	TransportEnd float64 // Time the unit's batch was delivered
	FinishStart  float64 // Time a finish server was granted
	FinishEnd    float64 // Time finish service finished
}

// NewWorkUnit creates a unit that arrives at the given time.
func NewWorkUnit(id int, arrival float64) *WorkUnit {
	return &WorkUnit{ID: id, State: StateCreated, ArrivalTime: arrival}
}

// Latency is the end-to-end time from arrival to finish.
func (u *WorkUnit) Latency() float64 {
	return u.FinishEnd - u.ArrivalTime
}

// Ordered reports whether the stage timestamps are non-decreasing.
func (u *WorkUnit) Ordered() bool {
	return u.ArrivalTime <= u.PrepStart &&
		u.PrepStart <= u.PrepEnd &&
		u.PrepEnd <= u.TransportEnd &&
		u.TransportEnd <= u.FinishStart &&
		u.FinishStart <= u.FinishEnd
}

// This method returns a human-readable string representation of a WorkUnit.
func (u WorkUnit) String() string {
	return fmt.Sprintf("WorkUnit: (ID: %d, State: %s, ArrivalTime: %.3f)", u.ID, u.State, u.ArrivalTime)
}
