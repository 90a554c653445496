package sim

import "github.com/sirupsen/logrus"

// Event defines the interface for all simulation events.
// Each event has a Timestamp (virtual seconds) and an Execute method
// that advances simulation state when invoked.
type Event interface {
	Timestamp() float64
	Execute()
}

// ResumeEvent continues a suspended process: a pool grant, a queue delivery,
// or any ScheduleAfter continuation.
type ResumeEvent struct {
	time float64
	fn   func()
}

// Timestamp returns the scheduled time of the ResumeEvent.
func (e *ResumeEvent) Timestamp() float64 {
	return e.time
}

// Execute runs the continuation.
func (e *ResumeEvent) Execute() {
	e.fn()
}

// ArrivalEvent creates a work unit and starts its prep process.
type ArrivalEvent struct {
	time float64
	sim  *Simulator
	ID   int // id of the unit to create
}

// Timestamp returns the scheduled time of the ArrivalEvent.
func (e *ArrivalEvent) Timestamp() float64 {
	return e.time
}

// Execute the ArrivalEvent
func (e *ArrivalEvent) Execute() {
	u := NewWorkUnit(e.ID, e.time)
	e.sim.Units = append(e.sim.Units, u)
	logrus.Debugf("<< Arrival: unit %d at %.3f", u.ID, e.time)
	e.sim.startPrep(u)
}

// PrepDoneEvent fires when a unit's prep service time has elapsed.
type PrepDoneEvent struct {
	time    float64
	sim     *Simulator
	Unit    *WorkUnit
	Service float64 // drawn prep duration
}

// Timestamp returns the scheduled time of the PrepDoneEvent.
func (e *PrepDoneEvent) Timestamp() float64 {
	return e.time
}

// Execute the PrepDoneEvent
func (e *PrepDoneEvent) Execute() {
	e.sim.finishPrep(e.Unit, e.Service)
}

// WorkerEvent starts, or after a poll interval restarts, a worker's cycle.
type WorkerEvent struct {
	time   float64
	Worker *StageWorker
}

// Timestamp returns the scheduled time of the WorkerEvent.
func (e *WorkerEvent) Timestamp() float64 {
	return e.time
}

// Execute the WorkerEvent
func (e *WorkerEvent) Execute() {
	e.Worker.cycle()
}

// TransportDoneEvent fires when a batch's transport service time has elapsed.
type TransportDoneEvent struct {
	time    float64
	Worker  *StageWorker
	Batch   []*WorkUnit
	Service float64 // drawn transport duration, shared by the batch
}

// Timestamp returns the scheduled time of the TransportDoneEvent.
func (e *TransportDoneEvent) Timestamp() float64 {
	return e.time
}

// Execute the TransportDoneEvent
func (e *TransportDoneEvent) Execute() {
	e.Worker.deliverBatch(e.Batch, e.Service)
}

// FinishDoneEvent fires when a unit's finish service time has elapsed.
type FinishDoneEvent struct {
	time    float64
	Worker  *StageWorker
	Unit    *WorkUnit
	Service float64 // drawn finish duration
}

// Timestamp returns the scheduled time of the FinishDoneEvent.
func (e *FinishDoneEvent) Timestamp() float64 {
	return e.time
}

// Execute the FinishDoneEvent
func (e *FinishDoneEvent) Execute() {
	e.Worker.completeUnit(e.Unit, e.Service)
}
