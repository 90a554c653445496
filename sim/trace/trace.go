package trace

// TraceLevel controls the verbosity of run tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelBatches captures every transport batch.
	TraceLevelBatches TraceLevel = "batches"
	// TraceLevelAll captures batches and every resource-pool grant.
	TraceLevelAll TraceLevel = "all"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:    true,
	TraceLevelBatches: true,
	TraceLevelAll:     true,
	"":                true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects batch and grant records during a run.
type SimulationTrace struct {
	Config  TraceConfig
	Batches []BatchRecord
	Grants  []GrantRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:  config,
		Batches: make([]BatchRecord, 0),
		Grants:  make([]GrantRecord, 0),
	}
}

// RecordBatch appends a transport batch record.
func (st *SimulationTrace) RecordBatch(record BatchRecord) {
	st.Batches = append(st.Batches, record)
}

// RecordGrant appends a resource grant record.
func (st *SimulationTrace) RecordGrant(record GrantRecord) {
	st.Grants = append(st.Grants, record)
}
