package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalBatches     int
	UnitsCarried     int
	MeanBatchSize    float64
	MinBatchSize     int
	MaxBatchSize     int
	ShortBatches     int         // batches smaller than their drawn target
	SizeDistribution map[int]int // batch size → count
	TotalGrants      int
	PeakHeld         map[string]int     // pool → max held observed at a grant
	MeanWait         map[string]float64 // pool → mean queued time per grant
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		SizeDistribution: make(map[int]int),
		PeakHeld:         make(map[string]int),
		MeanWait:         make(map[string]float64),
	}
	if st == nil {
		return summary
	}

	summary.TotalBatches = len(st.Batches)
	for i, b := range st.Batches {
		summary.UnitsCarried += b.Size
		summary.SizeDistribution[b.Size]++
		if b.Size < b.Target {
			summary.ShortBatches++
		}
		if i == 0 || b.Size < summary.MinBatchSize {
			summary.MinBatchSize = b.Size
		}
		if b.Size > summary.MaxBatchSize {
			summary.MaxBatchSize = b.Size
		}
	}
	if summary.TotalBatches > 0 {
		summary.MeanBatchSize = float64(summary.UnitsCarried) / float64(summary.TotalBatches)
	}

	summary.TotalGrants = len(st.Grants)
	grants := make(map[string]int)
	for _, g := range st.Grants {
		grants[g.Pool]++
		summary.MeanWait[g.Pool] += g.Waited
		if g.Held > summary.PeakHeld[g.Pool] {
			summary.PeakHeld[g.Pool] = g.Held
		}
	}
	for pool, n := range grants {
		summary.MeanWait[pool] /= float64(n)
	}

	return summary
}
