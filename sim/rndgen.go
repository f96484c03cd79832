package sim

import "fmt"

// Default Lehmer parameters for 32-bit semantics. The modulus is the
// Mersenne prime 2^31-1, the multiplier is a full-period multiplier for
// it, and the jumper partitions the period into 256 disjoint streams.
const (
	DefaultModulus    int64 = 2147483647
	DefaultMultiplier int64 = 48271
	DefaultStreams    int   = 256
	DefaultJumper     int64 = 22925
	DefaultSeed       int64 = 123456789
)

// MultiStream is a multi-stream Lehmer (multiplicative linear congruential)
// pseudo-random number generator. The period is partitioned into disjoint
// streams, each with its own seed; a draw on one stream never touches the
// state of another. Stream indices are passed explicitly into every call,
// so two callers drawing on different streams cannot perturb each other.
//
// Given the same (seed, modulus, multiplier, streams, jumper) and the same
// sequence of Uniform calls per stream, the output is bit-for-bit
// reproducible.
//
// Not safe for concurrent use; each simulation run owns its own instance.
type MultiStream struct {
	iseed      int64
	modulus    int64
	multiplier int64
	jumper     int64
	seeds      []int64
}

// NewMultiStream creates a generator with the default 32-bit parameters.
// The seed must be strictly positive.
func NewMultiStream(seed int64) (*MultiStream, error) {
	return NewMultiStreamParams(seed, DefaultModulus, DefaultMultiplier, DefaultStreams, DefaultJumper)
}

// NewMultiStreamParams creates a generator with explicit parameters.
// The modulus must be prime, the multiplier a full-period multiplier
// modulo it, and the jumper a valid jump multiplier for the given number
// of streams; these properties are assumed, not verified.
func NewMultiStreamParams(seed, modulus, multiplier int64, streams int, jumper int64) (*MultiStream, error) {
	if modulus <= 0 || multiplier <= 0 || jumper <= 0 {
		return nil, fmt.Errorf("modulus, multiplier and jumper must be positive, got (%d, %d, %d)", modulus, multiplier, jumper)
	}
	if streams <= 0 {
		return nil, fmt.Errorf("stream count must be positive, got %d", streams)
	}
	g := &MultiStream{
		iseed:      seed,
		modulus:    modulus,
		multiplier: multiplier,
		jumper:     jumper,
		seeds:      make([]int64, streams),
	}
	if err := g.PlantSeeds(seed); err != nil {
		return nil, err
	}
	return g, nil
}

// PlantSeeds seeds stream 0 with x mod modulus and derives every other
// stream's seed from its predecessor via the jump relation, using
// Schrage's algorithm so the intermediate products never overflow the
// 32-bit range the default parameters were chosen for.
func (g *MultiStream) PlantSeeds(x int64) error {
	if x <= 0 {
		return fmt.Errorf("seed must be a positive number in (0, modulus), got %d", x)
	}
	g.seeds[0] = x % g.modulus

	q := g.modulus / g.jumper
	r := g.modulus % g.jumper
	for j := 1; j < len(g.seeds); j++ {
		s := g.jumper*(g.seeds[j-1]%q) - r*(g.seeds[j-1]/q)
		if s > 0 {
			g.seeds[j] = s
		} else {
			g.seeds[j] = s + g.modulus
		}
	}
	return nil
}

// PutSeed sets the seed of a single stream.
func (g *MultiStream) PutSeed(stream int, x int64) error {
	if x <= 0 {
		return fmt.Errorf("seed must be a positive number in (0, modulus), got %d", x)
	}
	g.seeds[g.index(stream)] = x % g.modulus
	return nil
}

// Uniform advances the given stream's seed by one Lehmer step and returns
// seed/modulus, a uniform variate in (0, 1). Only that stream's seed is
// mutated.
func (g *MultiStream) Uniform(stream int) float64 {
	j := g.index(stream)

	q := g.modulus / g.multiplier
	r := g.modulus % g.multiplier
	t := g.multiplier*(g.seeds[j]%q) - r*(g.seeds[j]/q)
	if t > 0 {
		g.seeds[j] = t
	} else {
		g.seeds[j] = t + g.modulus
	}
	return float64(g.seeds[j]) / float64(g.modulus)
}

// Seed returns the current raw seed of a stream.
func (g *MultiStream) Seed(stream int) int64 {
	return g.seeds[g.index(stream)]
}

// InitialSeed returns the seed the generator was planted with.
func (g *MultiStream) InitialSeed() int64 { return g.iseed }

// Modulus returns the generator modulus.
func (g *MultiStream) Modulus() int64 { return g.modulus }

// Multiplier returns the generator multiplier.
func (g *MultiStream) Multiplier() int64 { return g.multiplier }

// Streams returns the number of disjoint streams.
func (g *MultiStream) Streams() int { return len(g.seeds) }

func (g *MultiStream) index(stream int) int {
	j := stream % len(g.seeds)
	if j < 0 {
		j += len(g.seeds)
	}
	return j
}
