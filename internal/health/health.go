// Package health runs readiness probes against the service's backing
// dependencies.
package health

import (
	"context"
	"time"
)

// Check pings one dependency. An error means not ready.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// CheckResult is the outcome of one probe, rendered into the readiness
// payload.
type CheckResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Elapsed string `json:"elapsed"`
}

// ProbeRunner executes a fixed set of checks with a per-check timeout.
type ProbeRunner struct {
	checks  []Check
	timeout time.Duration
}

func NewProbeRunner(timeout time.Duration, checks ...Check) *ProbeRunner {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &ProbeRunner{checks: checks, timeout: timeout}
}

func (p *ProbeRunner) Ready(ctx context.Context) (bool, []CheckResult) {
	ready := true
	results := make([]CheckResult, 0, len(p.checks))
	for _, check := range p.checks {
		start := time.Now()
		checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
		err := check.Probe(checkCtx)
		cancel()

		result := CheckResult{
			Name:    check.Name,
			Status:  "ok",
			Elapsed: time.Since(start).Round(time.Millisecond).String(),
		}
		if err != nil {
			ready = false
			result.Status = "failed"
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return ready, results
}
