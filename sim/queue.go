// Implements the HandoffQueue, which connects two pipeline stages.
// Units are appended by the upstream stage and removed by downstream consumers.

package sim

import (
	"fmt"
	"strings"
)

// HandoffQueue is an unbounded FIFO of work units plus a FIFO of consumers
// blocked on Get. Put never blocks; Get suspends only while the queue is empty.
type HandoffQueue struct {
	name    string
	queue   []*WorkUnit
	waiters []func(*WorkUnit)
	sched   *EventScheduler

	puts   int
	maxLen int
}

// NewHandoffQueue creates an empty queue bound to a scheduler.
func NewHandoffQueue(name string, sched *EventScheduler) *HandoffQueue {
	return &HandoffQueue{name: name, sched: sched}
}

// Put appends u to the tail. If a consumer is blocked, the head is handed to
// the longest-waiting consumer, which resumes at the current instant.
func (q *HandoffQueue) Put(u *WorkUnit) {
	if u == nil {
		panic(fmt.Sprintf("HandoffQueue(%s).Put: unit must not be nil", q.name))
	}
	q.puts++
	q.queue = append(q.queue, u)
	if len(q.queue) > q.maxLen {
		q.maxLen = len(q.queue)
	}
	if len(q.waiters) == 0 {
		return
	}
	resume := q.waiters[0]
	q.waiters[0] = nil
	q.waiters = q.waiters[1:]
	head := q.TryGet()
	q.sched.ScheduleAfter(0, func() { resume(head) })
}

// TryGet removes and returns the head, or nil if the queue is empty.
func (q *HandoffQueue) TryGet() *WorkUnit {
	if len(q.queue) == 0 {
		return nil
	}
	head := q.queue[0]
	q.queue[0] = nil
	q.queue = q.queue[1:]
	return head
}

// Get delivers the head to onItem. A non-empty queue delivers immediately;
// an empty one parks onItem until a Put hands it a unit.
func (q *HandoffQueue) Get(onItem func(*WorkUnit)) {
	if onItem == nil {
		panic(fmt.Sprintf("HandoffQueue(%s).Get: onItem must not be nil", q.name))
	}
	if head := q.TryGet(); head != nil {
		onItem(head)
		return
	}
	q.waiters = append(q.waiters, onItem)
}

// Len returns the number of buffered units.
func (q *HandoffQueue) Len() int {
	return len(q.queue)
}

// Puts returns the number of units ever appended.
func (q *HandoffQueue) Puts() int { return q.puts }

// MaxLen returns the longest the buffer has been.
func (q *HandoffQueue) MaxLen() int { return q.maxLen }

func (q *HandoffQueue) String() string {
	var sb strings.Builder
	sb.WriteString(q.name)
	sb.WriteString("[")
	for i, u := range q.queue {
		sb.WriteString(fmt.Sprint(u.ID))
		if i < len(q.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
