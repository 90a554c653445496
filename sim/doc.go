// Package sim provides the core discrete-event simulation engine for stagesim.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - unit.go: WorkUnit lifecycle (created → prepping → in-transport → finishing → completed)
//   - scheduler.go: the virtual clock and the (time, enqueue order) event queue
//   - stages.go: the prep, transport and finish stage processes
//   - simulator.go: wiring of pools, queues and workers, and the run loop
//
// # Model
//
// Every unit is created at time zero and served by a prep server. Prepped
// units wait in a HandoffQueue until a transport worker drains a batch of
// them and carries it with one transport server. Delivered units wait in a
// second HandoffQueue for a finish worker, which serves them one at a time
// with a finish server and emits a UnitRecord to the ResultCollector.
//
// Processes are continuations: they suspend only on a busy ResourcePool,
// a service-time wait, or an empty HandoffQueue, and the EventScheduler
// resumes them. Same-instant events, pool grants and queue deliveries are
// all first-in first-out, so a run is fully determined by its
// SimulationConfig and seed.
//
// # Randomness
//
// All draws come from one seeded stream in a fixed order: the prep duration
// when a prep server is granted; the batch target when a transport batch is
// formed and the transport duration when its server is granted; the finish
// duration when a finish server is granted.
package sim
