package pulse

import "fmt"

// Strategy selects how submitted tasks are grouped and handed to the worker
// pool. It is chosen once at simulation preparation time and fixed for the
// run. Grouping never changes the numeric result of any individual task.
type Strategy int

const (
	// StrategySequential runs every task on the submitting goroutine.
	StrategySequential Strategy = iota
	// StrategyChunk groups tasks into fixed-size batches for the pool.
	StrategyChunk
	// StrategyDynamicChunk grows the batch size with pool backlog, trading
	// latency for lower dispatch overhead when workers fall behind.
	StrategyDynamicChunk
)

// ParseStrategy parses a configuration string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "sequential":
		return StrategySequential, nil
	case "chunk", "":
		return StrategyChunk, nil
	case "dynamic":
		return StrategyDynamicChunk, nil
	default:
		return StrategyChunk, fmt.Errorf("unknown parallelization strategy %q (want \"sequential\", \"chunk\" or \"dynamic\")", s)
	}
}

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategySequential:
		return "sequential"
	case StrategyDynamicChunk:
		return "dynamic"
	default:
		return "chunk"
	}
}
