// Package trace provides run-trace recording for batch and resource analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// BatchRecord captures one transport batch from formation to departure.
type BatchRecord struct {
	Worker    int     // transport worker that formed the batch
	Formed    float64 // clock when the batch was drained from the queue
	Start     float64 // clock when a transport server was granted
	Target    int     // drawn batch size
	Available int     // units queued at formation, including the first
	Size      int     // units actually carried: min(Target, Available)
	UnitIDs   []int   // carried units, in queue order
	Service   float64 // drawn transport duration
}

// GrantRecord captures a single resource-pool grant.
type GrantRecord struct {
	Pool   string  // stage name of the pool
	Clock  float64 // grant time
	Held   int     // servers held right after the grant
	Waited float64 // time the requester spent queued; 0 for immediate grants
}
