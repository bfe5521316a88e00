package entity

import (
	"fmt"
	"math/rand"
)

// Distribution draws sensor inter-transmission times.
type Distribution interface {
	Next() float64
	Mean() float64
}

// Deterministic always returns Value.
type Deterministic struct {
	Value float64
}

func (d Deterministic) Next() float64 { return d.Value }
func (d Deterministic) Mean() float64 { return d.Value }

// Uniform draws from [Min, Max).
type Uniform struct {
	Min, Max float64
	rng      *rand.Rand
}

func (u *Uniform) Next() float64 { return u.Min + u.rng.Float64()*(u.Max-u.Min) }
func (u *Uniform) Mean() float64 { return (u.Min + u.Max) / 2 }

// Normal draws from N(MeanValue, StdDev). Non-positive draws fall back to the mean.
type Normal struct {
	MeanValue, StdDev float64
	rng               *rand.Rand
}

func (n *Normal) Next() float64 {
	v := n.rng.NormFloat64()*n.StdDev + n.MeanValue
	if v <= 0 {
		return n.MeanValue
	}
	return v
}

func (n *Normal) Mean() float64 { return n.MeanValue }

// NewDistribution builds a named distribution. kind is one of
// "deterministic", "uniform" or "normal".
func NewDistribution(kind string, a, b float64, rng *rand.Rand) (Distribution, error) {
	switch kind {
	case "", "deterministic":
		if a <= 0 {
			return nil, fmt.Errorf("deterministic distribution needs a positive value, got %g", a)
		}
		return Deterministic{Value: a}, nil
	case "uniform":
		if a <= 0 || b < a {
			return nil, fmt.Errorf("uniform distribution needs 0 < min <= max, got [%g, %g]", a, b)
		}
		return &Uniform{Min: a, Max: b, rng: rng}, nil
	case "normal":
		if a <= 0 || b < 0 {
			return nil, fmt.Errorf("normal distribution needs mean > 0 and stdev >= 0, got (%g, %g)", a, b)
		}
		return &Normal{MeanValue: a, StdDev: b, rng: rng}, nil
	}
	return nil, fmt.Errorf("unknown distribution %q", kind)
}
