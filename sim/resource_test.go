package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/stagesim/sim/trace"
)

func TestNewResourcePool_ZeroCapacity_Panics(t *testing.T) {
	assert.Panics(t, func() { NewResourcePool("prep", 0, NewEventScheduler()) })
}

func TestResourcePool_Acquire_FreeServer_GrantsSynchronously(t *testing.T) {
	// GIVEN a pool with two servers
	pool := NewResourcePool("prep", 2, NewEventScheduler())

	// WHEN one server is acquired
	granted := false
	pool.Acquire(func() { granted = true })

	// THEN the grant happens without any event
	assert.True(t, granted)
	assert.Equal(t, 1, pool.Held())
	assert.Empty(t, pool.waiters)
	assert.Equal(t, 1, pool.Grants())
}

func TestResourcePool_Release_GrantsWaitersInArrivalOrder(t *testing.T) {
	// GIVEN a single-server pool held by A, with B and C waiting
	s := NewEventScheduler()
	pool := NewResourcePool("transport", 1, s)
	var order []string
	var grantTimes []float64
	acquire := func(label string) {
		pool.Acquire(func() {
			order = append(order, label)
			grantTimes = append(grantTimes, s.Now())
		})
	}
	s.Schedule(&ResumeEvent{time: 0, fn: func() {
		acquire("A")
		acquire("B")
		acquire("C")
	}})

	// WHEN the holder releases at t=10 and t=20
	s.Schedule(&ResumeEvent{time: 10, fn: pool.Release})
	s.Schedule(&ResumeEvent{time: 20, fn: pool.Release})
	s.Run(nil)

	// THEN B and C are granted in the order they queued, at the release instants
	assert.Equal(t, []string{"A", "B", "C"}, order)
	assert.Equal(t, []float64{0, 10, 20}, grantTimes)
	assert.Equal(t, 1, pool.Held())
	assert.Equal(t, 1, pool.Peak())
}

func TestResourcePool_Release_LateRequesterCannotOvertakeWaiter(t *testing.T) {
	// GIVEN a single-server pool with B waiting
	s := NewEventScheduler()
	pool := NewResourcePool("finish", 1, s)
	var order []string
	s.Schedule(&ResumeEvent{time: 0, fn: func() {
		pool.Acquire(func() { order = append(order, "A") })
		pool.Acquire(func() { order = append(order, "B") })
	}})

	// WHEN the release and a new request D happen at the same instant
	s.Schedule(&ResumeEvent{time: 5, fn: pool.Release})
	s.Schedule(&ResumeEvent{time: 5, fn: func() {
		pool.Acquire(func() { order = append(order, "D") })
	}})
	s.Run(nil)

	// THEN the server went to B and D is still waiting
	assert.Equal(t, []string{"A", "B"}, order)
	assert.Len(t, pool.waiters, 1)
}

func TestResourcePool_Peak_NeverExceedsCapacity(t *testing.T) {
	// GIVEN a two-server pool and five requesters that each hold for 3s
	s := NewEventScheduler()
	pool := NewResourcePool("prep", 2, s)
	maxSeen := 0
	for i := 0; i < 5; i++ {
		s.Schedule(&ResumeEvent{time: 0, fn: func() {
			pool.Acquire(func() {
				maxSeen = max(maxSeen, pool.Held())
				s.ScheduleAfter(3, pool.Release)
			})
		}})
	}

	// WHEN run to completion
	s.Run(nil)

	// THEN at most two were ever held and all five were granted
	assert.Equal(t, 2, maxSeen)
	assert.Equal(t, 2, pool.Peak())
	assert.Equal(t, 5, pool.Grants())
	assert.Equal(t, 0, pool.Held())
	assert.Equal(t, 9.0, s.Now(), "five 3s holds on two servers end at 9")
}

func TestResourcePool_ReleaseWithoutAcquire_Panics(t *testing.T) {
	pool := NewResourcePool("prep", 1, NewEventScheduler())
	assert.Panics(t, func() { pool.Release() })
}

func TestResourcePool_HeldSeconds_IntegratesOccupancy(t *testing.T) {
	// GIVEN one server held from 0 to 10 and another from 4 to 6
	s := NewEventScheduler()
	pool := NewResourcePool("transport", 2, s)
	s.Schedule(&ResumeEvent{time: 0, fn: func() { pool.Acquire(func() {}) }})
	s.Schedule(&ResumeEvent{time: 4, fn: func() { pool.Acquire(func() {}) }})
	s.Schedule(&ResumeEvent{time: 6, fn: pool.Release})
	s.Schedule(&ResumeEvent{time: 10, fn: pool.Release})

	// WHEN run
	s.Run(nil)

	// THEN the occupancy integral is 10 + 2
	assert.InDelta(t, 12.0, pool.HeldSeconds(), 1e-12)
}

func TestResourcePool_TraceAll_RecordsEveryGrant(t *testing.T) {
	// GIVEN a traced single-server pool with one waiter
	s := NewEventScheduler()
	pool := NewResourcePool("finish", 1, s)
	pool.trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelAll})
	s.Schedule(&ResumeEvent{time: 0, fn: func() {
		pool.Acquire(func() {})
		pool.Acquire(func() {})
	}})
	s.Schedule(&ResumeEvent{time: 7, fn: pool.Release})

	// WHEN run
	s.Run(nil)

	// THEN both grants are recorded with the waiter's queued time
	require.Len(t, pool.trace.Grants, 2)
	assert.Equal(t, trace.GrantRecord{Pool: "finish", Clock: 0, Held: 1, Waited: 0}, pool.trace.Grants[0])
	assert.Equal(t, trace.GrantRecord{Pool: "finish", Clock: 7, Held: 1, Waited: 7}, pool.trace.Grants[1])
}

func TestResourcePool_TraceBatches_RecordsNoGrants(t *testing.T) {
	pool := NewResourcePool("prep", 1, NewEventScheduler())
	pool.trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelBatches})

	pool.Acquire(func() {})

	assert.Empty(t, pool.trace.Grants)
}
