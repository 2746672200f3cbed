package bot

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRegistryLookup(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Equal(t, []string{StrategyLowest, StrategyRandom}, Names())
	assert.Equal(t, StrategyLowest, New(StrategyLowest, rng, zap.NewNop()).Name())
	assert.Equal(t, StrategyRandom, New(StrategyRandom, rng, zap.NewNop()).Name())
	assert.True(t, Known("lowest"))
	assert.False(t, Known("greedy"))
}

func TestRegistryFallbackWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)
	rng := rand.New(rand.NewSource(2))

	s := New("shoot-the-moon", rng, logger)
	assert.True(t, Known(s.Name()))

	entries := logs.FilterMessage("unknown bot strategy, using fallback").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "shoot-the-moon", entries[0].ContextMap()["strategy"])
	}
}
