// Package engine runs composition sweeps.
package engine

import (
	"runtime"

	"github.com/reglet-dev/xrdsim/internal/application/dto"
)

// MinWorkers is the minimum number of concurrent compositions in parallel
// mode, ensuring reasonable parallelism even on single-core systems.
const MinWorkers = 4

// DefaultExecutionOptions returns parallel execution sized to the host.
func DefaultExecutionOptions() dto.ExecutionOptions {
	return dto.ExecutionOptions{
		Parallel:   true,
		MaxWorkers: workerCount(0),
	}
}

// workerCount resolves a configured worker limit; values <= 0 mean NumCPU,
// but at least MinWorkers.
func workerCount(configured int) int {
	if configured > 0 {
		return configured
	}
	n := runtime.NumCPU()
	if n < MinWorkers {
		n = MinWorkers
	}
	return n
}
