package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFile holds run configuration loadable from a YAML file.
// Nil pointer fields mean "not set in YAML" and do not override the base config.
type ConfigFile struct {
	TableCount       *int       `yaml:"table_count"`
	PeoplePerTable   *int       `yaml:"people_per_table"`
	PrepServers      *int       `yaml:"prep_servers"`
	TransportServers *int       `yaml:"transport_servers"`
	FinishServers    *int       `yaml:"finish_servers"`
	TransportWorkers *int       `yaml:"transport_workers"`
	FinishWorkers    *int       `yaml:"finish_workers"`
	PrepTime         *TimeRange `yaml:"prep_time"`
	TransportTime    *TimeRange `yaml:"transport_time"`
	FinishTime       *TimeRange `yaml:"finish_time"`
	TransportBatch   *LoadRange `yaml:"transport_batch"`
	PollInterval     *float64   `yaml:"poll_interval"`
	StartTime        string     `yaml:"start_time"` // "HH:MM", empty = keep base
	Seed             *int64     `yaml:"seed"`
}

// LoadConfigFile reads and parses a YAML run configuration.
// Unknown keys are rejected so typos surface as errors.
func LoadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config: %w", err)
	}
	return ParseConfigFile(data)
}

// ParseConfigFile parses YAML run configuration bytes. An empty document
// sets nothing.
func ParseConfigFile(data []byte) (*ConfigFile, error) {
	var f ConfigFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing run config: %w", err)
	}
	return &f, nil
}

// Apply overlays every field set in the file onto base and returns the result.
func (f *ConfigFile) Apply(base SimulationConfig) (SimulationConfig, error) {
	cfg := base
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setInt(&cfg.TableCount, f.TableCount)
	setInt(&cfg.PeoplePerTable, f.PeoplePerTable)
	setInt(&cfg.PrepServers, f.PrepServers)
	setInt(&cfg.TransportServers, f.TransportServers)
	setInt(&cfg.FinishServers, f.FinishServers)
	setInt(&cfg.TransportWorkers, f.TransportWorkers)
	setInt(&cfg.FinishWorkers, f.FinishWorkers)
	if f.PrepTime != nil {
		cfg.PrepTime = *f.PrepTime
	}
	if f.TransportTime != nil {
		cfg.TransportTime = *f.TransportTime
	}
	if f.FinishTime != nil {
		cfg.FinishTime = *f.FinishTime
	}
	if f.TransportBatch != nil {
		cfg.TransportBatch = *f.TransportBatch
	}
	if f.PollInterval != nil {
		cfg.PollInterval = *f.PollInterval
	}
	if f.Seed != nil {
		cfg.Seed = *f.Seed
	}
	if f.StartTime != "" {
		start, err := ParseStartTime(cfg.StartWallClock, f.StartTime)
		if err != nil {
			return base, err
		}
		cfg.StartWallClock = start
	}
	return cfg, nil
}

// ParseStartTime moves day's clock to the "HH:MM" given in hhmm, keeping the date.
func ParseStartTime(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return day, fmt.Errorf("start time %q must be HH:MM: %w", hhmm, err)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}
