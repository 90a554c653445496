package sim

import (
	"fmt"

	"github.com/inference-sim/stagesim/sim/trace"
)

// ResourcePool models Capacity identical, interchangeable servers.
// At most Capacity holders exist at once; excess requesters wait in arrival order.
//
// Acquire never suspends while a server is free. Release hands a freed server
// straight to the longest waiter, so a requester arriving later in the same
// instant cannot overtake it.
type ResourcePool struct {
	name     string
	capacity int
	held     int
	waiters  []poolWaiter
	sched    *EventScheduler
	trace    *trace.SimulationTrace

	peak        int
	grants      int
	lastChange  float64
	heldSeconds float64 // integral of held over virtual time
}

type poolWaiter struct {
	since   float64
	onGrant func()
}

// NewResourcePool creates a pool with the given capacity bound to a scheduler.
// Panics if capacity < 1.
func NewResourcePool(name string, capacity int, sched *EventScheduler) *ResourcePool {
	if capacity < 1 {
		panic(fmt.Sprintf("NewResourcePool(%s): capacity must be >= 1, got %d", name, capacity))
	}
	return &ResourcePool{name: name, capacity: capacity, sched: sched}
}

// Acquire grants one server to the caller. If a server is free, onGrant runs
// immediately; otherwise it runs when a Release hands the caller a server.
func (p *ResourcePool) Acquire(onGrant func()) {
	now := p.sched.Now()
	if p.held < p.capacity {
		p.take(now, 0)
		onGrant()
		return
	}
	p.waiters = append(p.waiters, poolWaiter{since: now, onGrant: onGrant})
}

// Release returns one server. Panics if nothing is held.
func (p *ResourcePool) Release() {
	if p.held == 0 {
		panic(fmt.Sprintf("ResourcePool(%s): release without matching acquire", p.name))
	}
	now := p.sched.Now()
	p.advance(now)
	p.held--
	if len(p.waiters) == 0 {
		return
	}
	next := p.waiters[0]
	p.waiters[0] = poolWaiter{}
	p.waiters = p.waiters[1:]
	p.take(now, now-next.since)
	p.sched.ScheduleAfter(0, next.onGrant)
}

func (p *ResourcePool) take(now, waited float64) {
	p.advance(now)
	p.held++
	p.grants++
	if p.held > p.peak {
		p.peak = p.held
	}
	if p.trace != nil && p.trace.Config.Level == trace.TraceLevelAll {
		p.trace.RecordGrant(trace.GrantRecord{
			Pool:   p.name,
			Clock:  now,
			Held:   p.held,
			Waited: waited,
		})
	}
}

func (p *ResourcePool) advance(now float64) {
	p.heldSeconds += float64(p.held) * (now - p.lastChange)
	p.lastChange = now
}

// Name returns the pool's stage name.
func (p *ResourcePool) Name() string { return p.name }

// Capacity returns the number of servers in the pool.
func (p *ResourcePool) Capacity() int { return p.capacity }

// Held returns the number of servers currently granted.
func (p *ResourcePool) Held() int { return p.held }

// Peak returns the largest number of servers ever held at once.
func (p *ResourcePool) Peak() int { return p.peak }

// Grants returns the total number of grants made.
func (p *ResourcePool) Grants() int { return p.grants }

// HeldSeconds returns the occupancy integral up to the scheduler's clock.
func (p *ResourcePool) HeldSeconds() float64 {
	return p.heldSeconds + float64(p.held)*(p.sched.Now()-p.lastChange)
}
