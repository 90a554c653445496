// Collects per-unit records and derives run-level aggregates such as:
// latency statistics, per-stage busy time and utilization, throughput.

package sim

import (
	"fmt"
	"io"
	"math"
	"time"
)

// UnitRecord is the immutable row emitted for one completed unit.
type UnitRecord struct {
	ID           int       `json:"id"`
	ArrivalTime  float64   `json:"arrival_time"`
	PrepStart    float64   `json:"prep_start"`
	PrepEnd      float64   `json:"prep_end"`
	TransportEnd float64   `json:"transport_end"`
	FinishStart  float64   `json:"finish_start"`
	FinishEnd    float64   `json:"finish_end"`
	TotalLatency float64   `json:"total_latency"`
	CompletedAt  time.Time `json:"wall_clock_completion"`
}

// Wait is the time between prep end and finish start, clipped at zero.
func (r UnitRecord) Wait() float64 {
	return math.Max(0, r.FinishStart-r.PrepEnd)
}

// Service is the time spent in prep and finish service.
func (r UnitRecord) Service() float64 {
	return (r.PrepEnd - r.PrepStart) + (r.FinishEnd - r.FinishStart)
}

// StageStats summarises one resource pool, and the queue its workers consume,
// over the run. Prep has no input queue, so its queue counters stay zero.
type StageStats struct {
	Stage       Stage   `json:"stage"`
	Servers     int     `json:"servers"`
	BusyTime    float64 `json:"busy_time"`   // sum of service draws
	Utilization float64 `json:"utilization"` // BusyTime / (TotalDuration * Servers), in [0, 1]
	PeakHeld    int     `json:"peak_held"`
	Grants      int     `json:"grants"`
	Enqueued    int     `json:"enqueued"`   // units put on the input queue
	QueuePeak   int     `json:"queue_peak"` // longest the input queue grew
}

// ResultTable is the terminal output of a run. Aggregates are NaN when no
// unit completed. It depends only on the configuration and seed, so equal
// inputs yield equal tables.
type ResultTable struct {
	Records []UnitRecord `json:"records"` // completion order

	UnitCount     int     `json:"unit_count"`
	TotalDuration float64 `json:"total_duration"` // latest finish time
	MeanLatency   float64 `json:"mean_latency"`
	MinLatency    float64 `json:"min_latency"`
	MaxLatency    float64 `json:"max_latency"`
	StdLatency    float64 `json:"std_latency"` // sample standard deviation
	P50Latency    float64 `json:"p50_latency"`
	P90Latency    float64 `json:"p90_latency"`
	MeanWait      float64 `json:"mean_wait"`
	MeanService   float64 `json:"mean_service"`
	Throughput    float64 `json:"throughput"` // units per second

	Stages []StageStats `json:"stages"` // prep, transport, finish
}

// Stage returns the stats for the named stage.
func (rt *ResultTable) Stage(stage Stage) StageStats {
	for _, s := range rt.Stages {
		if s.Stage == stage {
			return s
		}
	}
	return StageStats{Stage: stage, Utilization: math.NaN()}
}

// Print displays aggregated metrics at the end of the simulation.
func (rt *ResultTable) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Completed Units      : %d\n", rt.UnitCount)
	if rt.UnitCount == 0 {
		return
	}
	fmt.Fprintf(w, "Total Duration       : %.2f s (%.2f min)\n", rt.TotalDuration, rt.TotalDuration/60)
	fmt.Fprintf(w, "Throughput           : %.4f units/s\n", rt.Throughput)
	fmt.Fprintf(w, "Latency mean/p50/p90 : %.2f / %.2f / %.2f s\n", rt.MeanLatency, rt.P50Latency, rt.P90Latency)
	fmt.Fprintf(w, "Latency min/max/std  : %.2f / %.2f / %.2f s\n", rt.MinLatency, rt.MaxLatency, rt.StdLatency)
	fmt.Fprintf(w, "Mean Wait            : %.2f s\n", rt.MeanWait)
	fmt.Fprintf(w, "Mean Service         : %.2f s\n", rt.MeanService)
	for _, s := range rt.Stages {
		fmt.Fprintf(w, "Utilization %-9s: %5.1f%% (%d servers, peak %d)\n", s.Stage, s.Utilization*100, s.Servers, s.PeakHeld)
	}
	for _, s := range rt.Stages {
		if s.Enqueued == 0 {
			continue
		}
		fmt.Fprintf(w, "Input queue %-9s: %d enqueued, peak length %d\n", s.Stage, s.Enqueued, s.QueuePeak)
	}
}

// ResultCollector accumulates records in completion order and busy time per
// stage. It is finalized exactly once.
type ResultCollector struct {
	config    SimulationConfig
	records   []UnitRecord
	busy      map[Stage]float64
	finalized bool
}

// NewResultCollector creates an empty collector for a run of cfg.
func NewResultCollector(cfg SimulationConfig) *ResultCollector {
	return &ResultCollector{
		config:  cfg,
		records: make([]UnitRecord, 0, max(cfg.TotalUnits(), 0)),
		busy:    make(map[Stage]float64, len(Stages)),
	}
}

// AddBusy adds one service draw to a stage's busy time.
func (c *ResultCollector) AddBusy(stage Stage, service float64) {
	c.mustBeOpen()
	c.busy[stage] += service
}

// Record snapshots a completed unit. Panics if its stage timestamps are
// out of order.
func (c *ResultCollector) Record(u *WorkUnit) {
	c.mustBeOpen()
	if !u.Ordered() {
		panic(fmt.Sprintf("ResultCollector: unit %d has out-of-order timestamps: %+v", u.ID, *u))
	}
	c.records = append(c.records, UnitRecord{
		ID:           u.ID,
		ArrivalTime:  u.ArrivalTime,
		PrepStart:    u.PrepStart,
		PrepEnd:      u.PrepEnd,
		TransportEnd: u.TransportEnd,
		FinishStart:  u.FinishStart,
		FinishEnd:    u.FinishEnd,
		TotalLatency: u.Latency(),
		CompletedAt:  c.config.WallClock(u.FinishEnd),
	})
}

// Len returns the number of records collected so far.
func (c *ResultCollector) Len() int {
	return len(c.records)
}

// Finalize derives the aggregates and freezes the collector. pools supplies
// peak and grant counts per stage, queues the input-queue counters; either
// may be nil.
func (c *ResultCollector) Finalize(pools []*ResourcePool, queues map[Stage]*HandoffQueue) *ResultTable {
	c.mustBeOpen()
	c.finalized = true

	records := make([]UnitRecord, len(c.records))
	copy(records, c.records)
	rt := &ResultTable{
		Records:   records,
		UnitCount: len(records),
	}

	latencies := make([]float64, len(records))
	waits := make([]float64, len(records))
	services := make([]float64, len(records))
	finishes := make([]float64, len(records))
	for i, r := range records {
		latencies[i] = r.TotalLatency
		waits[i] = r.Wait()
		services[i] = r.Service()
		finishes[i] = r.FinishEnd
	}

	rt.TotalDuration = CalculateMax(finishes)
	rt.MeanLatency = CalculateMean(latencies)
	rt.MinLatency = CalculateMin(latencies)
	rt.MaxLatency = CalculateMax(latencies)
	rt.StdLatency = CalculateStdDev(latencies)
	rt.P50Latency = CalculatePercentile(latencies, 50)
	rt.P90Latency = CalculatePercentile(latencies, 90)
	rt.MeanWait = CalculateMean(waits)
	rt.MeanService = CalculateMean(services)
	rt.Throughput = safeRatio(float64(len(records)), rt.TotalDuration)

	byStage := make(map[string]*ResourcePool, len(pools))
	for _, p := range pools {
		byStage[p.Name()] = p
	}
	for _, stage := range Stages {
		servers := c.config.Servers(stage)
		s := StageStats{
			Stage:       stage,
			Servers:     servers,
			BusyTime:    c.busy[stage],
			Utilization: safeRatio(c.busy[stage], rt.TotalDuration*float64(servers)),
		}
		if p, ok := byStage[string(stage)]; ok {
			s.PeakHeld = p.Peak()
			s.Grants = p.Grants()
		}
		if q, ok := queues[stage]; ok {
			s.Enqueued = q.Puts()
			s.QueuePeak = q.MaxLen()
		}
		rt.Stages = append(rt.Stages, s)
	}
	return rt
}

func (c *ResultCollector) mustBeOpen() {
	if c.finalized {
		panic("ResultCollector: already finalized")
	}
}

// safeRatio returns NaN instead of dividing by a zero or NaN denominator.
func safeRatio(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) {
		return math.NaN()
	}
	return num / den
}
