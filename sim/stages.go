package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/stagesim/sim/trace"
)

// Stage names one of the three pipeline phases.
type Stage string

const (
	StagePrep      Stage = "prep"
	StageTransport Stage = "transport"
	StageFinish    Stage = "finish"
)

// Stages lists the pipeline phases in the order units traverse them.
var Stages = []Stage{StagePrep, StageTransport, StageFinish}

// Prep runs once per unit: acquire a prep server, serve, release, hand off.

func (sim *Simulator) startPrep(u *WorkUnit) {
	u.State = StatePrepping
	sim.PrepPool.Acquire(func() {
		now := sim.Now()
		u.PrepStart = now
		service := Uniform(sim.rng, sim.config.PrepTime)
		sim.scheduler.Schedule(&PrepDoneEvent{time: now + service, sim: sim, Unit: u, Service: service})
	})
}

func (sim *Simulator) finishPrep(u *WorkUnit, service float64) {
	sim.PrepPool.Release()
	sim.Collector.AddBusy(StagePrep, service)
	u.PrepEnd = sim.Now()
	u.State = StateInTransport
	logrus.Debugf("[t=%.3f] unit %d prepped in %.3fs", u.PrepEnd, u.ID, service)
	sim.PrepQueue.Put(u)
}

// StageWorker is one long-lived transport or finish loop. It repeats its
// cycle until every unit of the run has completed.
type StageWorker struct {
	ID     int
	Stage  Stage
	Cycles int // batches moved or units finished
	Polls  int // idle re-checks under the poll discipline
	sim    *Simulator
}

func (w *StageWorker) cycle() {
	sim := w.sim
	if sim.done() {
		return
	}
	switch w.Stage {
	case StageTransport:
		w.awaitWork(sim.PrepQueue, w.formBatch)
	case StageFinish:
		w.awaitWork(sim.FinishQueue, w.startFinish)
	default:
		panic("StageWorker: no worker loop for stage " + string(w.Stage))
	}
}

// awaitWork hands the queue head to next, waiting first if the queue is empty.
func (w *StageWorker) awaitWork(q *HandoffQueue, next func(*WorkUnit)) {
	sim := w.sim
	if sim.config.PollInterval == 0 {
		q.Get(next)
		return
	}
	head := q.TryGet()
	if head == nil {
		w.Polls++
		sim.scheduler.Schedule(&WorkerEvent{time: sim.Now() + sim.config.PollInterval, Worker: w})
		return
	}
	next(head)
}

// formBatch drains up to a drawn target from the prep queue without waiting
// for more units, then carries the batch with one transport server.
func (w *StageWorker) formBatch(first *WorkUnit) {
	sim := w.sim
	formed := sim.Now()
	available := 1 + sim.PrepQueue.Len()
	target := UniformInt(sim.rng, sim.config.TransportBatch)
	batch := []*WorkUnit{first}
	for len(batch) < target {
		u := sim.PrepQueue.TryGet()
		if u == nil {
			break
		}
		batch = append(batch, u)
	}

	sim.TransportPool.Acquire(func() {
		now := sim.Now()
		service := Uniform(sim.rng, sim.config.TransportTime)
		if sim.Trace != nil {
			ids := make([]int, len(batch))
			for i, u := range batch {
				ids[i] = u.ID
			}
			sim.Trace.RecordBatch(trace.BatchRecord{
				Worker:    w.ID,
				Formed:    formed,
				Start:     now,
				Target:    target,
				Available: available,
				Size:      len(batch),
				UnitIDs:   ids,
				Service:   service,
			})
		}
		sim.scheduler.Schedule(&TransportDoneEvent{time: now + service, Worker: w, Batch: batch, Service: service})
	})
}

func (w *StageWorker) deliverBatch(batch []*WorkUnit, service float64) {
	sim := w.sim
	sim.TransportPool.Release()
	sim.Collector.AddBusy(StageTransport, service)
	now := sim.Now()
	logrus.Debugf("[t=%.3f] transport %d delivered %d units", now, w.ID, len(batch))
	for _, u := range batch {
		u.TransportEnd = now
		u.State = StateFinishing
		sim.FinishQueue.Put(u)
	}
	w.Cycles++
	w.cycle()
}

func (w *StageWorker) startFinish(u *WorkUnit) {
	sim := w.sim
	sim.FinishPool.Acquire(func() {
		now := sim.Now()
		u.FinishStart = now
		service := Uniform(sim.rng, sim.config.FinishTime)
		sim.scheduler.Schedule(&FinishDoneEvent{time: now + service, Worker: w, Unit: u, Service: service})
	})
}

func (w *StageWorker) completeUnit(u *WorkUnit, service float64) {
	sim := w.sim
	sim.FinishPool.Release()
	sim.Collector.AddBusy(StageFinish, service)
	u.FinishEnd = sim.Now()
	u.State = StateCompleted
	sim.Collector.Record(u)
	sim.completed++
	logrus.Debugf("[t=%.3f] unit %d finished, latency %.3fs (%d/%d)",
		u.FinishEnd, u.ID, u.Latency(), sim.completed, sim.total)
	w.Cycles++
	w.cycle()
}
