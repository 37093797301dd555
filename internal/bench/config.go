// Package bench is the measurement and orchestration core: it generates load
// at a fixed concurrency, times every submission end to end, reduces the
// samples to latency statistics and persists one normalized result record
// per run.
package bench

import "fmt"

// Scenario is one of the fixed synthetic workload shapes.
type Scenario string

const (
	ScenarioSimple Scenario = "simple"
	ScenarioCPU    Scenario = "cpu"
	ScenarioIO     Scenario = "io"
)

// Valid reports whether s is a known scenario.
func (s Scenario) Valid() bool {
	switch s {
	case ScenarioSimple, ScenarioCPU, ScenarioIO:
		return true
	}
	return false
}

// RunConfig describes one benchmark run. Immutable for the run's duration.
type RunConfig struct {
	Jobs        int
	Scenario    Scenario
	Concurrency int
	Backend     string
}

// ConfigError is an invalid run configuration, caught before any submission
// is attempted.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "config: " + e.Msg }

// Validate fails fast on configurations that must never start a run.
func (c RunConfig) Validate() error {
	if c.Jobs <= 0 {
		return &ConfigError{Msg: fmt.Sprintf("jobs_count must be > 0, got %d", c.Jobs)}
	}
	if c.Concurrency <= 0 {
		return &ConfigError{Msg: fmt.Sprintf("concurrency must be >= 1, got %d", c.Concurrency)}
	}
	if !c.Scenario.Valid() {
		return &ConfigError{Msg: fmt.Sprintf("unknown scenario %q (expected simple, cpu, io)", c.Scenario)}
	}
	if c.Backend == "" {
		return &ConfigError{Msg: "backend must be set"}
	}
	return nil
}
