package sim

import (
	"container/heap"
	"fmt"

	"github.com/sirupsen/logrus"
)

// queuedEvent pairs an Event with the sequence number it was enqueued under.
type queuedEvent struct {
	ev  Event
	seq uint64
}

// EventQueue implements heap.Interface and orders events by timestamp.
// Events sharing a timestamp pop in the order they were scheduled.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type EventQueue []queuedEvent

func (eq EventQueue) Len() int { return len(eq) }

func (eq EventQueue) Less(i, j int) bool {
	ti, tj := eq[i].ev.Timestamp(), eq[j].ev.Timestamp()
	if ti != tj {
		return ti < tj
	}
	return eq[i].seq < eq[j].seq
}

func (eq EventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *EventQueue) Push(x any) {
	*eq = append(*eq, x.(queuedEvent))
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	old[n-1] = queuedEvent{}
	*eq = old[0 : n-1]
	return item
}

// EventScheduler owns the virtual clock and the queue of pending events.
// It is single-threaded: exactly one event executes at a time, and an event
// runs to completion before the clock moves again.
type EventScheduler struct {
	clock    float64
	queue    EventQueue
	nextSeq  uint64
	executed int
}

// NewEventScheduler returns a scheduler with the clock at zero and no pending events.
func NewEventScheduler() *EventScheduler {
	s := &EventScheduler{queue: make(EventQueue, 0)}
	heap.Init(&s.queue)
	return s
}

// Now returns the current virtual time in seconds.
func (s *EventScheduler) Now() float64 {
	return s.clock
}

// Pending returns the number of events waiting to execute.
func (s *EventScheduler) Pending() int {
	return s.queue.Len()
}

// Executed returns the number of events executed so far.
func (s *EventScheduler) Executed() int {
	return s.executed
}

// Schedule pushes an event into the queue. Panics if the event lies in the past.
func (s *EventScheduler) Schedule(ev Event) {
	if ev.Timestamp() < s.clock {
		panic(fmt.Sprintf("EventScheduler: cannot schedule %T at %v, clock is %v", ev, ev.Timestamp(), s.clock))
	}
	heap.Push(&s.queue, queuedEvent{ev: ev, seq: s.nextSeq})
	s.nextSeq++
}

// ScheduleAfter resumes fn once delay seconds of virtual time have elapsed.
// A zero delay resumes fn at the current instant, after every event already
// scheduled for that instant.
func (s *EventScheduler) ScheduleAfter(delay float64, fn func()) {
	if delay < 0 {
		panic(fmt.Sprintf("EventScheduler: negative delay %v", delay))
	}
	s.Schedule(&ResumeEvent{time: s.clock + delay, fn: fn})
}

// Run executes events in (timestamp, enqueue order) until the queue drains
// or done reports true after an event. A nil done never stops early.
func (s *EventScheduler) Run(done func() bool) {
	for s.queue.Len() > 0 {
		if done != nil && done() {
			break
		}
		qe := heap.Pop(&s.queue).(queuedEvent)
		s.clock = qe.ev.Timestamp()
		logrus.Tracef("[t=%10.3f] Executing %T", s.clock, qe.ev)
		qe.ev.Execute()
		s.executed++
	}
}
