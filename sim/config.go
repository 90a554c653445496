package sim

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ReferencePollInterval is the idle re-check delay of the classic polling
// model. Setting PollInterval to it reproduces polling timestamps.
const ReferencePollInterval = 0.5

// TimeRange bounds a uniformly distributed service time, in seconds.
type TimeRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// NewTimeRange creates a TimeRange.
func NewTimeRange(min, max float64) TimeRange {
	return TimeRange{Min: min, Max: max}
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%g-%g", r.Min, r.Max)
}

// LoadRange bounds a uniformly distributed integer batch size.
type LoadRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// NewLoadRange creates a LoadRange.
func NewLoadRange(min, max int) LoadRange {
	return LoadRange{Min: min, Max: max}
}

func (r LoadRange) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// SimulationConfig is the immutable input of one run.
type SimulationConfig struct {
	TableCount     int // tables to serve
	PeoplePerTable int // units per table; TotalUnits = TableCount * PeoplePerTable

	PrepServers      int // servers in the prep pool
	TransportServers int // servers in the transport pool
	FinishServers    int // servers in the finish pool

	TransportWorkers int // transport worker loops
	FinishWorkers    int // finish worker loops

	PrepTime       TimeRange // prep service time
	TransportTime  TimeRange // transport service time, one draw per batch
	FinishTime     TimeRange // finish service time
	TransportBatch LoadRange // transport batch target size

	// PollInterval selects how idle transport and finish workers wait for work.
	// Zero wakes them on the next Put; a positive value re-checks the queue
	// after that many seconds.
	PollInterval float64

	StartWallClock time.Time // display time of virtual t=0
	Seed           int64     // master seed
}

// DefaultConfig returns the canteen defaults: 60 tables of 3, three prep,
// two transport and two finish servers, starting at 07:00.
func DefaultConfig() SimulationConfig {
	return SimulationConfig{
		TableCount:       60,
		PeoplePerTable:   3,
		PrepServers:      3,
		TransportServers: 2,
		FinishServers:    2,
		TransportWorkers: 1,
		FinishWorkers:    1,
		PrepTime:         NewTimeRange(30, 60),
		TransportTime:    NewTimeRange(20, 60),
		FinishTime:       NewTimeRange(30, 60),
		TransportBatch:   NewLoadRange(4, 7),
		PollInterval:     0,
		StartWallClock:   time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC),
		Seed:             42,
	}
}

// TotalUnits returns the number of work units the run creates.
func (c SimulationConfig) TotalUnits() int {
	return c.TableCount * c.PeoplePerTable
}

// Servers returns the pool size of the given stage.
func (c SimulationConfig) Servers(stage Stage) int {
	switch stage {
	case StagePrep:
		return c.PrepServers
	case StageTransport:
		return c.TransportServers
	case StageFinish:
		return c.FinishServers
	}
	panic(fmt.Sprintf("SimulationConfig.Servers: unknown stage %q", stage))
}

// WallClock translates virtual seconds into a display timestamp.
func (c SimulationConfig) WallClock(seconds float64) time.Time {
	return c.StartWallClock.Add(time.Duration(seconds * float64(time.Second)))
}

// Validate reports every problem with the configuration at once.
func (c SimulationConfig) Validate() error {
	var errs []error
	positive := func(name string, v int) {
		if v < 1 {
			errs = append(errs, fmt.Errorf("%s must be >= 1, got %d", name, v))
		}
	}
	finite := func(name string, v float64) bool {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must be finite, got %g", name, v))
			return false
		}
		return true
	}
	timeRange := func(name string, r TimeRange) {
		minOK := finite(name+" min", r.Min)
		maxOK := finite(name+" max", r.Max)
		if !minOK || !maxOK {
			return
		}
		if r.Min < 0 {
			errs = append(errs, fmt.Errorf("%s min must be non-negative, got %g", name, r.Min))
		}
		if r.Min > r.Max {
			errs = append(errs, fmt.Errorf("%s min (%g) must not exceed max (%g)", name, r.Min, r.Max))
		}
	}

	positive("table_count", c.TableCount)
	positive("people_per_table", c.PeoplePerTable)
	positive("prep_servers", c.PrepServers)
	positive("transport_servers", c.TransportServers)
	positive("finish_servers", c.FinishServers)
	positive("transport_workers", c.TransportWorkers)
	positive("finish_workers", c.FinishWorkers)
	timeRange("prep_time", c.PrepTime)
	timeRange("transport_time", c.TransportTime)
	timeRange("finish_time", c.FinishTime)
	if c.TransportBatch.Min < 1 {
		errs = append(errs, fmt.Errorf("transport_batch min must be >= 1, got %d", c.TransportBatch.Min))
	}
	if c.TransportBatch.Min > c.TransportBatch.Max {
		errs = append(errs, fmt.Errorf("transport_batch min (%d) must not exceed max (%d)",
			c.TransportBatch.Min, c.TransportBatch.Max))
	}
	if finite("poll_interval", c.PollInterval) && c.PollInterval < 0 {
		errs = append(errs, fmt.Errorf("poll_interval must be non-negative, got %g", c.PollInterval))
	}
	return errors.Join(errs...)
}
