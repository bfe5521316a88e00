package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimulationKey_Creation(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"zero seed", 0},
		{"negative seed", -1},
		{"max int64", math.MaxInt64},
		{"min int64", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewSimulationKey(tt.seed)
			assert.Equal(t, tt.seed, int64(key))
		})
	}
}

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// BDD: Same key+name produces same sequence
	rng1 := NewPartitionedRNG(NewSimulationKey(42))
	rng2 := NewPartitionedRNG(NewSimulationKey(42))

	for i := 0; i < 3; i++ {
		assert.Equal(t,
			rng1.ForSubsystem(SubsystemSelectivity).Float64(),
			rng2.ForSubsystem(SubsystemSelectivity).Float64(),
			"draw %d", i)
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// BDD: Drawing from sensor A doesn't affect sensor B
	rngA := NewPartitionedRNG(NewSimulationKey(7))
	rngB := NewPartitionedRNG(NewSimulationKey(7))

	for i := 0; i < 10; i++ {
		rngA.ForSubsystem(SubsystemSensor("a")).Float64()
	}

	assert.Equal(t,
		rngB.ForSubsystem(SubsystemSensor("b")).Float64(),
		rngA.ForSubsystem(SubsystemSensor("b")).Float64())
}

func TestPartitionedRNG_Caching(t *testing.T) {
	p := NewPartitionedRNG(NewSimulationKey(1))
	assert.Same(t, p.ForSubsystem("x"), p.ForSubsystem("x"))
	assert.Equal(t, NewSimulationKey(1), p.Key())
}
