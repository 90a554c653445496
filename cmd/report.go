package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"text/tabwriter"

	sim "github.com/inference-sim/stagesim/sim"
	"github.com/inference-sim/stagesim/sim/trace"
)

// writeReport prints the end-of-run summary: aggregate metrics, completions
// per wall-clock hour, the trace summary when tracing was on and, if asked,
// one row per unit.
func writeReport(w io.Writer, cfg sim.SimulationConfig, rt *sim.ResultTable, st *trace.SimulationTrace, records bool) {
	rt.Print(w)
	if rt.UnitCount == 0 {
		return
	}

	fmt.Fprintf(w, "First completion     : %s\n", rt.Records[0].CompletedAt.Format("15:04:05"))
	fmt.Fprintf(w, "Last completion      : %s\n", cfg.WallClock(rt.TotalDuration).Format("15:04:05"))

	fmt.Fprintln(w, "=== Completions by Hour ===")
	for _, b := range rt.CompletionsByHour() {
		fmt.Fprintf(w, "%02d:00  %d\n", b.Key, b.Count)
	}

	if st != nil {
		printTraceSummary(w, trace.Summarize(st))
	}

	if records {
		printRecords(w, rt)
	}
}

func printTraceSummary(w io.Writer, s *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Trace Summary ===")
	fmt.Fprintf(w, "Transport Batches    : %d (%d short of target)\n", s.TotalBatches, s.ShortBatches)
	if s.TotalBatches > 0 {
		fmt.Fprintf(w, "Batch size min/mean/max: %d / %.2f / %d\n", s.MinBatchSize, s.MeanBatchSize, s.MaxBatchSize)
		sizes := make([]int, 0, len(s.SizeDistribution))
		for size := range s.SizeDistribution {
			sizes = append(sizes, size)
		}
		sort.Ints(sizes)
		for _, size := range sizes {
			fmt.Fprintf(w, "  size %d: %d\n", size, s.SizeDistribution[size])
		}
	}
	if s.TotalGrants == 0 {
		return
	}
	fmt.Fprintf(w, "Pool Grants          : %d\n", s.TotalGrants)
	for _, stage := range sim.Stages {
		name := string(stage)
		fmt.Fprintf(w, "  %-9s peak %d, mean wait %.2f s\n", name, s.PeakHeld[name], s.MeanWait[name])
	}
}

func printRecords(w io.Writer, rt *sim.ResultTable) {
	fmt.Fprintln(w, "=== Units ===")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "id\tprep_start\tprep_end\ttransport_end\tfinish_start\tfinish_end\tlatency\tcompleted\t")
	for _, r := range rt.ByID() {
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t\n",
			r.ID, r.PrepStart, r.PrepEnd, r.TransportEnd, r.FinishStart, r.FinishEnd,
			r.TotalLatency, r.CompletedAt.Format("15:04:05"))
	}
	tw.Flush()
}

// resultsFile is the JSON layout written by --results-path. Aggregates that
// are undefined for the run (NaN) are written as null.
type resultsFile struct {
	UnitCount         int              `json:"unit_count"`
	TotalDuration     *float64         `json:"total_duration"`
	MeanLatency       *float64         `json:"mean_latency"`
	MinLatency        *float64         `json:"min_latency"`
	MaxLatency        *float64         `json:"max_latency"`
	StdLatency        *float64         `json:"std_latency"`
	P50Latency        *float64         `json:"p50_latency"`
	P90Latency        *float64         `json:"p90_latency"`
	MeanWait          *float64         `json:"mean_wait"`
	MeanService       *float64         `json:"mean_service"`
	Throughput        *float64         `json:"throughput"`
	Stages            []stageResult    `json:"stages"`
	CompletionsByHour []sim.Bin        `json:"completions_by_hour"`
	Records           []sim.UnitRecord `json:"records"`
}

type stageResult struct {
	Stage       sim.Stage `json:"stage"`
	Servers     int       `json:"servers"`
	BusyTime    float64   `json:"busy_time"`
	Utilization *float64  `json:"utilization"`
	PeakHeld    int       `json:"peak_held"`
	Grants      int       `json:"grants"`
	Enqueued    int       `json:"enqueued"`
	QueuePeak   int       `json:"queue_peak"`
}

func newResultsFile(rt *sim.ResultTable) resultsFile {
	out := resultsFile{
		UnitCount:         rt.UnitCount,
		TotalDuration:     finite(rt.TotalDuration),
		MeanLatency:       finite(rt.MeanLatency),
		MinLatency:        finite(rt.MinLatency),
		MaxLatency:        finite(rt.MaxLatency),
		StdLatency:        finite(rt.StdLatency),
		P50Latency:        finite(rt.P50Latency),
		P90Latency:        finite(rt.P90Latency),
		MeanWait:          finite(rt.MeanWait),
		MeanService:       finite(rt.MeanService),
		Throughput:        finite(rt.Throughput),
		CompletionsByHour: rt.CompletionsByHour(),
		Records:           rt.ByID(),
	}
	for _, s := range rt.Stages {
		out.Stages = append(out.Stages, stageResult{
			Stage:       s.Stage,
			Servers:     s.Servers,
			BusyTime:    s.BusyTime,
			Utilization: finite(s.Utilization),
			PeakHeld:    s.PeakHeld,
			Grants:      s.Grants,
			Enqueued:    s.Enqueued,
			QueuePeak:   s.QueuePeak,
		})
	}
	return out
}

// writeResultsJSON writes the result table to path as indented JSON.
func writeResultsJSON(path string, rt *sim.ResultTable) error {
	data, err := json.MarshalIndent(newResultsFile(rt), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing results to %s: %w", path, err)
	}
	return nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
