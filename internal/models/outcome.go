// Package models defines the domain types shared by the prediction pipeline.
package models

import (
	"fmt"
	"math"
)

// Outcome is one of the three match results, encoded 0/1/2 for training labels
type Outcome int

const (
	Home Outcome = iota
	Draw
	Away
)

// NumOutcomes is the number of classes every distribution covers
const NumOutcomes = 3

// Outcomes lists every outcome in index order
var Outcomes = [NumOutcomes]Outcome{Home, Draw, Away}

// String returns the wire label of the outcome
func (o Outcome) String() string {
	switch o {
	case Home:
		return "home"
	case Draw:
		return "draw"
	case Away:
		return "away"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Valid reports whether o is a known outcome
func (o Outcome) Valid() bool {
	return o >= Home && o <= Away
}

// MarshalText implements encoding.TextMarshaler
func (o Outcome) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: unknown outcome %d", ErrValidation, int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Outcome) UnmarshalText(text []byte) error {
	parsed, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOutcome converts a wire label into an Outcome
func ParseOutcome(label string) (Outcome, error) {
	switch label {
	case "home":
		return Home, nil
	case "draw":
		return Draw, nil
	case "away":
		return Away, nil
	default:
		return 0, fmt.Errorf("%w: unknown outcome %q", ErrValidation, label)
	}
}

// Distribution is a probability per outcome, indexed by Outcome
type Distribution [NumOutcomes]float64

// DistributionTolerance is the allowed deviation of a distribution's sum from 1
const DistributionTolerance = 1e-6

// Sum returns the total mass
func (d Distribution) Sum() float64 {
	return d[Home] + d[Draw] + d[Away]
}

// Normalize rescales d to sum to 1
func (d Distribution) Normalize() (Distribution, error) {
	total := d.Sum()
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return Distribution{}, fmt.Errorf("%w: cannot normalize distribution with total %v", ErrComputation, total)
	}
	var out Distribution
	for i := range d {
		out[i] = d[i] / total
	}
	return out, nil
}

// Scale multiplies every entry by factor
func (d Distribution) Scale(factor float64) Distribution {
	var out Distribution
	for i := range d {
		out[i] = d[i] * factor
	}
	return out
}

// Add returns the element-wise sum of d and other
func (d Distribution) Add(other Distribution) Distribution {
	var out Distribution
	for i := range d {
		out[i] = d[i] + other[i]
	}
	return out
}

// Max returns the largest probability
func (d Distribution) Max() float64 {
	return math.Max(d[Home], math.Max(d[Draw], d[Away]))
}

// Min returns the smallest probability
func (d Distribution) Min() float64 {
	return math.Min(d[Home], math.Min(d[Draw], d[Away]))
}

// ArgMax returns the most probable outcome, preferring the lower index on ties
func (d Distribution) ArgMax() Outcome {
	best := Home
	for _, o := range Outcomes[1:] {
		if d[o] > d[best] {
			best = o
		}
	}
	return best
}

// Variance returns the population variance of the three probabilities
func (d Distribution) Variance() float64 {
	return Variance(d[:])
}

// StdDev returns the population standard deviation of the three probabilities
func (d Distribution) StdDev() float64 {
	return math.Sqrt(d.Variance())
}

// IsValid reports whether every entry lies in [0,1] and the entries sum to 1
func (d Distribution) IsValid() bool {
	for _, p := range d {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return false
		}
	}
	return math.Abs(d.Sum()-1) <= DistributionTolerance
}

// Map returns the distribution keyed by outcome label
func (d Distribution) Map() map[string]float64 {
	out := make(map[string]float64, NumOutcomes)
	for _, o := range Outcomes {
		out[o.String()] = d[o]
	}
	return out
}

// Mean returns the arithmetic mean of values, 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance returns the population variance of values
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var acc float64
	for _, v := range values {
		diff := v - mean
		acc += diff * diff
	}
	return acc / float64(len(values))
}

// StdDev returns the population standard deviation of values
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Clamp bounds v to [lo, hi]; NaN clamps to lo
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// Clamp01 bounds v to [0, 1]
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}
