package bot

import (
	"math/rand"
	"sort"

	"go.uber.org/zap"
)

var registry = map[string]Constructor{
	StrategyRandom: NewRandomBot,
	StrategyLowest: NewLowestBot,
}

// Names lists the registered strategy identifiers in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Known reports whether id names a registered strategy.
func Known(id string) bool {
	_, ok := registry[id]
	return ok
}

// New builds the strategy registered under id. An unknown id falls back to
// a strategy drawn uniformly from the registry and logs a warning.
func New(id string, rng *rand.Rand, logger *zap.Logger) Strategy {
	if ctor, ok := registry[id]; ok {
		return ctor(rng)
	}
	names := Names()
	pick := names[rng.Intn(len(names))]
	if logger != nil {
		logger.Warn("unknown bot strategy, using fallback",
			zap.String("strategy", id),
			zap.String("fallback", pick))
	}
	return registry[pick](rng)
}
