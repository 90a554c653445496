// sim/simulator.go
package sim

import (
	"fmt"
	"math/rand"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/stagesim/sim/trace"
)

// Simulator wires the pools, queues and stage processes of one run around a
// shared EventScheduler, and stops once every unit has finished.
type Simulator struct {
	config    SimulationConfig
	scheduler *EventScheduler
	rng       *rand.Rand
	runID     xid.ID

	PrepPool      *ResourcePool
	TransportPool *ResourcePool
	FinishPool    *ResourcePool

	// PrepQueue carries prepped units to transport; FinishQueue carries
	// delivered units to finish.
	PrepQueue   *HandoffQueue
	FinishQueue *HandoffQueue

	TransportWorkers []*StageWorker
	FinishWorkers    []*StageWorker

	Units     []*WorkUnit // in creation (id) order
	Collector *ResultCollector
	Trace     *trace.SimulationTrace // nil when tracing is off

	total     int
	completed int
	hasRun    bool
	result    *ResultTable
}

// NewSimulator validates cfg and builds a ready-to-run Simulator.
// Tracing is disabled when traceCfg.Level is none or empty.
func NewSimulator(cfg SimulationConfig, traceCfg trace.TraceConfig) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	if !trace.IsValidTraceLevel(string(traceCfg.Level)) {
		return nil, fmt.Errorf("unknown trace level %q", traceCfg.Level)
	}

	sched := NewEventScheduler()
	s := &Simulator{
		config:    cfg,
		scheduler: sched,
		rng:       NewServiceRNG(cfg.Seed),
		runID:     xid.New(),

		PrepPool:      NewResourcePool(string(StagePrep), cfg.PrepServers, sched),
		TransportPool: NewResourcePool(string(StageTransport), cfg.TransportServers, sched),
		FinishPool:    NewResourcePool(string(StageFinish), cfg.FinishServers, sched),
		PrepQueue:     NewHandoffQueue("prep->transport", sched),
		FinishQueue:   NewHandoffQueue("transport->finish", sched),

		Units:     make([]*WorkUnit, 0, cfg.TotalUnits()),
		Collector: NewResultCollector(cfg),
		total:     cfg.TotalUnits(),
	}
	if traceCfg.Level != "" && traceCfg.Level != trace.TraceLevelNone {
		s.Trace = trace.NewSimulationTrace(traceCfg)
		for _, p := range s.pools() {
			p.trace = s.Trace
		}
	}
	for i := 0; i < cfg.TransportWorkers; i++ {
		s.TransportWorkers = append(s.TransportWorkers, &StageWorker{ID: i, Stage: StageTransport, sim: s})
	}
	for i := 0; i < cfg.FinishWorkers; i++ {
		s.FinishWorkers = append(s.FinishWorkers, &StageWorker{ID: i, Stage: StageFinish, sim: s})
	}
	return s, nil
}

// Run creates every unit at time zero, starts the worker loops and drives the
// scheduler until all units have finished. Panics if called more than once.
func (sim *Simulator) Run() *ResultTable {
	if sim.hasRun {
		panic("Simulator.Run() called more than once")
	}
	sim.hasRun = true

	logrus.Infof("Starting run %s: %d units, servers prep=%d transport=%d finish=%d, seed=%d",
		sim.runID, sim.total, sim.config.PrepServers, sim.config.TransportServers,
		sim.config.FinishServers, sim.config.Seed)

	// One time-0 event per unit, in id order, so the FIFO tie-break fixes
	// the order of their prep draws.
	for id := 0; id < sim.total; id++ {
		sim.scheduler.Schedule(&ArrivalEvent{time: 0, sim: sim, ID: id})
	}
	for _, w := range sim.TransportWorkers {
		sim.scheduler.Schedule(&WorkerEvent{time: 0, Worker: w})
	}
	for _, w := range sim.FinishWorkers {
		sim.scheduler.Schedule(&WorkerEvent{time: 0, Worker: w})
	}

	sim.scheduler.Run(sim.done)

	if !sim.done() {
		logrus.Warnf("Run %s drained its event queue with %d/%d units finished", sim.runID, sim.completed, sim.total)
	}
	for _, p := range sim.pools() {
		logrus.Debugf("Pool %s: capacity %d, held %d, peak %d, occupancy %.3f server-s",
			p.Name(), p.Capacity(), p.Held(), p.Peak(), p.HeldSeconds())
	}
	sim.result = sim.Collector.Finalize(sim.pools(), sim.queues())
	logrus.Infof("[t=%.3f] Run %s ended after %d events, %d pending", sim.Now(), sim.runID,
		sim.scheduler.Executed(), sim.scheduler.Pending())
	return sim.result
}

// Result returns the finished table. Panics if called before Run().
func (sim *Simulator) Result() *ResultTable {
	if !sim.hasRun {
		panic("Simulator.Result() called before Run()")
	}
	return sim.result
}

// Now returns the current virtual time.
func (sim *Simulator) Now() float64 {
	return sim.scheduler.Now()
}

// Completed returns how many units have reached the end of the pipeline.
func (sim *Simulator) Completed() int {
	return sim.completed
}

// Config returns the configuration the simulator was built with.
func (sim *Simulator) Config() SimulationConfig {
	return sim.config
}

// RunID returns the identifier that correlates this run's log lines. It is
// not part of the result table, which depends only on config and seed.
func (sim *Simulator) RunID() string {
	return sim.runID.String()
}

func (sim *Simulator) done() bool {
	return sim.completed >= sim.total
}

func (sim *Simulator) pools() []*ResourcePool {
	return []*ResourcePool{sim.PrepPool, sim.TransportPool, sim.FinishPool}
}

// queues maps each stage to the queue its workers consume.
func (sim *Simulator) queues() map[Stage]*HandoffQueue {
	return map[Stage]*HandoffQueue{StageTransport: sim.PrepQueue, StageFinish: sim.FinishQueue}
}
