package sim

import (
	"fmt"
	"math"
)

// Distribution identifies the family of a Variate.
type Distribution int

const (
	// Exponential draws -mean*ln(1-u) for a uniform u.
	Exponential Distribution = iota
	// Deterministic always yields a fixed value and consumes no draw.
	Deterministic
)

func (d Distribution) String() string {
	switch d {
	case Exponential:
		return "EXPONENTIAL"
	case Deterministic:
		return "DETERMINISTIC"
	default:
		return fmt.Sprintf("Distribution(%d)", int(d))
	}
}

// Variate describes one stochastic duration source: a distribution family
// plus its parameter. Variates are immutable values built once at
// configuration time.
type Variate struct {
	Dist  Distribution
	Mean  float64 // Exponential mean
	Value float64 // Deterministic value
}

// NewExponential builds an exponential variate with the given mean.
func NewExponential(mean float64) (Variate, error) {
	if mean <= 0 {
		return Variate{}, fmt.Errorf("exponential mean must be positive, got %g", mean)
	}
	return Variate{Dist: Exponential, Mean: mean}, nil
}

// ExponentialFromRate builds an exponential variate with mean 1/rate.
// This is the rate-to-mean normalization performed once at construction.
func ExponentialFromRate(rate float64) (Variate, error) {
	if rate <= 0 {
		return Variate{}, fmt.Errorf("exponential rate must be positive, got %g", rate)
	}
	return Variate{Dist: Exponential, Mean: 1.0 / rate}, nil
}

// NewDeterministic builds a fixed-value variate.
func NewDeterministic(value float64) (Variate, error) {
	if value < 0 {
		return Variate{}, fmt.Errorf("deterministic value must be non-negative, got %g", value)
	}
	return Variate{Dist: Deterministic, Value: value}, nil
}

// Rate returns the rate of an exponential variate (1/mean).
func (v Variate) Rate() float64 {
	if v.Dist != Exponential {
		panic(fmt.Sprintf("Rate is defined only for exponential variates, got %v", v.Dist))
	}
	return 1.0 / v.Mean
}

// Sample draws one duration from the variate, consuming a uniform from
// the given stream for the exponential family. Deterministic variates do
// not advance the stream, so switching a parameter between deterministic
// values leaves every other random sequence untouched.
func (v Variate) Sample(gen *MultiStream, stream int) float64 {
	switch v.Dist {
	case Exponential:
		return exponential(v.Mean, gen.Uniform(stream))
	case Deterministic:
		return v.Value
	default:
		panic(fmt.Sprintf("unsupported distribution %v", v.Dist))
	}
}

// exponential applies the inverse exponential CDF to a uniform u in (0,1).
func exponential(mean, u float64) float64 {
	return -mean * math.Log(1.0-u)
}
