package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTaskgen(t *testing.T, rate1, rate2, tStop float64) (*Taskgen, *MultiStream) {
	t.Helper()
	gen, err := NewMultiStream(DefaultSeed)
	require.NoError(t, err)

	v1, err := ExponentialFromRate(rate1)
	require.NoError(t, err)
	v2, err := ExponentialFromRate(rate2)
	require.NoError(t, err)

	tg, err := NewTaskgen(gen, NewEventFactory(), map[TaskClass]Variate{Task1: v1, Task2: v2}, tStop)
	require.NoError(t, err)
	return tg, gen
}

func TestNewTaskgen_RejectsNonExponential(t *testing.T) {
	// Non-exponential arrival configurations are a hard construction
	// error, never silently approximated.
	gen, err := NewMultiStream(DefaultSeed)
	require.NoError(t, err)

	fixed, err := NewDeterministic(1.0)
	require.NoError(t, err)
	expo, err := ExponentialFromRate(2.0)
	require.NoError(t, err)

	_, err = NewTaskgen(gen, NewEventFactory(), map[TaskClass]Variate{Task1: fixed, Task2: expo}, 100)
	assert.Error(t, err)
}

func TestNewTaskgen_RequiresBothClasses(t *testing.T) {
	gen, err := NewMultiStream(DefaultSeed)
	require.NoError(t, err)
	expo, err := ExponentialFromRate(2.0)
	require.NoError(t, err)

	_, err = NewTaskgen(gen, NewEventFactory(), map[TaskClass]Variate{Task1: expo}, 100)
	assert.Error(t, err)
}

func TestTaskgen_GenerateProducesSystemArrivals(t *testing.T) {
	tg, _ := testTaskgen(t, 3.25, 6.25, math.Inf(1))

	clock := 0.0
	for i := 0; i < 1000; i++ {
		ev := tg.Generate(clock)
		assert.Equal(t, ActionArrival, ev.Type.Act)
		assert.Equal(t, ScopeSystem, ev.Type.Scope)
		assert.Greater(t, ev.Time, clock)
		clock = ev.Time
	}
	// With p1 = 3.25/9.5 both classes must show up over 1000 draws.
	assert.Greater(t, tg.Generated[Task1], int64(0))
	assert.Greater(t, tg.Generated[Task2], int64(0))
	assert.Equal(t, int64(1000), tg.Generated[Task1]+tg.Generated[Task2])
}

func TestTaskgen_GenerateIsDeterministic(t *testing.T) {
	tgA, _ := testTaskgen(t, 3.25, 6.25, math.Inf(1))
	tgB, _ := testTaskgen(t, 3.25, 6.25, math.Inf(1))

	clock := 0.0
	for i := 0; i < 500; i++ {
		a := tgA.Generate(clock)
		b := tgB.Generate(clock)
		require.Equal(t, a.Type, b.Type, "event %d", i)
		require.Equal(t, a.Time, b.Time, "event %d", i)
		clock = a.Time
	}
}

func TestTaskgen_UsesOnlyDedicatedStreams(t *testing.T) {
	// GIVEN a fresh generator
	// WHEN arrivals are generated
	// THEN only the class-selection and inter-arrival streams advance,
	// so service sampling elsewhere stays unperturbed
	tg, gen := testTaskgen(t, 3.25, 6.25, math.Inf(1))

	before := make([]int64, gen.Streams())
	for j := range before {
		before[j] = gen.Seed(j)
	}

	for i := 0; i < 200; i++ {
		tg.Generate(float64(i))
	}

	for j := 0; j < gen.Streams(); j++ {
		if j == streamArrivalType || j == streamArrivalTime {
			assert.NotEqual(t, before[j], gen.Seed(j), "stream %d must advance", j)
		} else {
			assert.Equal(t, before[j], gen.Seed(j), "stream %d must not advance", j)
		}
	}
}

func TestTaskgen_GenerateForForcedClass(t *testing.T) {
	tg, gen := testTaskgen(t, 3.25, 6.25, math.Inf(1))

	typeSeed := gen.Seed(streamArrivalType)
	timeSeed := gen.Seed(streamArrivalTime)

	ev := tg.GenerateFor(5.0, Task2)

	assert.Equal(t, EventType{ActionArrival, ScopeSystem, Task2}, ev.Type)
	assert.Greater(t, ev.Time, 5.0)
	// Forced generation samples the class's own distribution on its own
	// stream; the race streams stay untouched.
	assert.Equal(t, typeSeed, gen.Seed(streamArrivalType))
	assert.Equal(t, timeSeed, gen.Seed(streamArrivalTime))
	assert.Equal(t, int64(1), tg.Generated[Task2])
}

func TestTaskgen_GeneratedCountersRespectHorizon(t *testing.T) {
	tg, _ := testTaskgen(t, 3.25, 6.25, 1e-9)

	for i := 0; i < 100; i++ {
		tg.Generate(1.0)
	}
	assert.Equal(t, int64(0), tg.Generated[Task1]+tg.Generated[Task2],
		"arrivals past the horizon are generated but not counted")
}

func TestTaskgen_Rates(t *testing.T) {
	tg, _ := testTaskgen(t, 3.25, 6.25, math.Inf(1))

	rates := tg.Rates()
	assert.InDelta(t, 3.25, rates[Task1], 1e-12)
	assert.InDelta(t, 6.25, rates[Task2], 1e-12)
}
