package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWorkUnit_StartsCreated(t *testing.T) {
	u := NewWorkUnit(3, 0)
	assert.Equal(t, 3, u.ID)
	assert.Equal(t, StateCreated, u.State)
	assert.Equal(t, "WorkUnit: (ID: 3, State: created, ArrivalTime: 0.000)", u.String())
}

func TestWorkUnit_Ordered(t *testing.T) {
	u := &WorkUnit{ArrivalTime: 0, PrepStart: 1, PrepEnd: 5, TransportEnd: 9, FinishStart: 9, FinishEnd: 14}
	assert.True(t, u.Ordered())
	assert.Equal(t, 14.0, u.Latency())

	// finish before delivery breaks the ordering
	u.FinishStart = 8
	assert.False(t, u.Ordered())
}
