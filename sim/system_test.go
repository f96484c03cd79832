package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSystem(t *testing.T, nServers, threshold int) *System {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Cloudlet.NServers = nServers
	cfg.Cloudlet.Threshold = threshold

	gen, err := NewMultiStream(DefaultSeed)
	require.NoError(t, err)
	sys, err := NewSystem(gen, NewEventFactory(), NewStatistics(), cfg)
	require.NoError(t, err)
	return sys
}

func TestSystem_ArrivalTask1_RoutesToCloudlet(t *testing.T) {
	sys := testSystem(t, 2, 2)

	completion, _, _, preempted := sys.ArrivalTask1(1.0)

	assert.False(t, preempted)
	assert.Equal(t, EventType{ActionCompletion, ScopeCloudlet, Task1}, completion.Type)
	assert.Greater(t, completion.Time, 1.0)
	assert.Equal(t, 1, sys.Cloudlet.N1)
	assert.Equal(t, 0, sys.Cloud.N1)
	assert.Equal(t, int64(1), sys.Arrived1)
}

func TestSystem_ArrivalTask1_OverflowsToCloudWhenSlotsFull(t *testing.T) {
	// GIVEN a cloudlet whose class-1 slots are fully occupied
	// WHEN another class-1 task arrives
	// THEN it is routed to the cloud
	sys := testSystem(t, 2, 2)
	sys.ArrivalTask1(1.0)
	sys.ArrivalTask1(2.0)
	require.Equal(t, 2, sys.Cloudlet.N1)

	completion, _, _, preempted := sys.ArrivalTask1(3.0)

	assert.False(t, preempted)
	assert.Equal(t, EventType{ActionCompletion, ScopeCloud, Task1}, completion.Type)
	assert.Equal(t, 2, sys.Cloudlet.N1)
	assert.Equal(t, 1, sys.Cloud.N1)
}

func TestSystem_ArrivalTask1_PreemptsClass2AtThreshold(t *testing.T) {
	// GIVEN the cloudlet at threshold with free class-1 capacity and a
	// class-2 occupant
	// WHEN a class-1 task arrives
	// THEN exactly one class-2 completion is cancelled, one cloud restart
	// is scheduled for it, and the class-1 task is admitted locally
	sys := testSystem(t, 2, 2)
	victimCompletion := sys.ArrivalTask2(1.0)
	sys.ArrivalTask1(2.0)
	require.Equal(t, 2, sys.Cloudlet.N1+sys.Cloudlet.N2)

	completion, restart, cancelled, preempted := sys.ArrivalTask1(3.0)

	require.True(t, preempted)
	assert.Equal(t, EventType{ActionCompletion, ScopeCloudlet, Task1}, completion.Type)
	assert.Equal(t, EventType{ActionCompletion, ScopeCloud, Task2}, restart.Type)
	assert.Equal(t, victimCompletion.ID, cancelled.ID)

	assert.Equal(t, 2, sys.Cloudlet.N1)
	assert.Equal(t, 0, sys.Cloudlet.N2)
	assert.Equal(t, 1, sys.Cloud.N2)
	assert.Equal(t, int64(1), sys.Switched)
}

func TestSystem_ArrivalTask1_AdmitsAtThresholdWithoutVictim(t *testing.T) {
	// At threshold, class-1 slots free, no class-2 occupant: admit anyway.
	sys := testSystem(t, 3, 2)
	sys.ArrivalTask1(1.0)
	sys.ArrivalTask1(2.0)
	require.Equal(t, 2, sys.Cloudlet.N1)

	completion, _, _, preempted := sys.ArrivalTask1(3.0)

	assert.False(t, preempted)
	assert.Equal(t, EventType{ActionCompletion, ScopeCloudlet, Task1}, completion.Type)
	assert.Equal(t, 3, sys.Cloudlet.N1)
	assert.Equal(t, 0, sys.Cloud.N1)
}

func TestSystem_PreemptionPicksEarliestCompletion(t *testing.T) {
	sys := testSystem(t, 3, 3)

	completions := []Event{
		sys.ArrivalTask2(0.1),
		sys.ArrivalTask2(0.2),
		sys.ArrivalTask2(0.3),
	}
	require.Equal(t, 3, sys.Cloudlet.N2)

	earliest := completions[0]
	for _, ev := range completions[1:] {
		if ev.Time < earliest.Time {
			earliest = ev
		}
	}

	_, _, cancelled, preempted := sys.ArrivalTask1(0.4)
	require.True(t, preempted)
	assert.Equal(t, earliest.ID, cancelled.ID)
}

func TestSystem_ArrivalTask2_Routing(t *testing.T) {
	sys := testSystem(t, 2, 2)

	below := sys.ArrivalTask2(1.0)
	assert.Equal(t, EventType{ActionCompletion, ScopeCloudlet, Task2}, below.Type)

	sys.ArrivalTask2(2.0)
	require.Equal(t, 2, sys.Cloudlet.N1+sys.Cloudlet.N2)

	at := sys.ArrivalTask2(3.0)
	assert.Equal(t, EventType{ActionCompletion, ScopeCloud, Task2}, at.Type)
	assert.Equal(t, 1, sys.Cloud.N2)
}

func TestSystem_Submit_OccupancyConservation(t *testing.T) {
	// Drive a full arrival/completion interleaving through Submit and
	// check the conservation invariant after every event.
	cfg := DefaultConfig()
	cfg.Cloudlet.NServers = 4
	cfg.Cloudlet.Threshold = 3

	gen, err := NewMultiStream(DefaultSeed)
	require.NoError(t, err)
	factory := NewEventFactory()
	sys, err := NewSystem(gen, factory, NewStatistics(), cfg)
	require.NoError(t, err)

	arrival1, err := ExponentialFromRate(3.0)
	require.NoError(t, err)
	arrival2, err := ExponentialFromRate(5.0)
	require.NoError(t, err)
	tg, err := NewTaskgen(gen, factory, map[TaskClass]Variate{Task1: arrival1, Task2: arrival2}, math.Inf(1))
	require.NoError(t, err)

	cal := NewCalendar(0, math.Inf(1))
	cal.Schedule(tg.Generate(0))

	for i := 0; i < 5000; i++ {
		ev, ok := cal.NextEvent()
		if !ok {
			break
		}
		toSchedule, toUnschedule := sys.Submit(ev)
		for _, e := range toSchedule {
			cal.Schedule(e)
		}
		cal.Unschedule(toUnschedule...)
		if ev.Type.Act == ActionArrival && cal.Clock() < 100 {
			cal.Schedule(tg.Generate(cal.Clock()))
		}

		require.Equal(t, sys.Arrived1-sys.Served1, int64(sys.N1), "class-1 conservation at event %d", i)
		require.Equal(t, sys.Arrived2-sys.Served2, int64(sys.N2), "class-2 conservation at event %d", i)
		require.Equal(t, sys.N1, sys.Cloudlet.N1+sys.Cloud.N1, "class-1 tier split at event %d", i)
		require.Equal(t, sys.N2, sys.Cloudlet.N2+sys.Cloud.N2, "class-2 tier split at event %d", i)
		require.GreaterOrEqual(t, sys.Cloudlet.N1, 0)
		require.GreaterOrEqual(t, sys.Cloudlet.N2, 0)
		require.GreaterOrEqual(t, sys.Cloud.N1, 0)
		require.GreaterOrEqual(t, sys.Cloud.N2, 0)
	}

	assert.True(t, sys.Empty(), "system must drain once arrivals stop")
	assert.Greater(t, sys.Served1+sys.Served2, int64(0))
}

func TestSystem_Submit_PreemptionEventPlumbing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cloudlet.NServers = 2
	cfg.Cloudlet.Threshold = 2

	gen, err := NewMultiStream(DefaultSeed)
	require.NoError(t, err)
	factory := NewEventFactory()
	sys, err := NewSystem(gen, factory, NewStatistics(), cfg)
	require.NoError(t, err)

	sys.Submit(factory.New(EventType{ActionArrival, ScopeSystem, Task2}, 1.0))
	sys.Submit(factory.New(EventType{ActionArrival, ScopeSystem, Task1}, 2.0))

	toSchedule, toUnschedule := sys.Submit(factory.New(EventType{ActionArrival, ScopeSystem, Task1}, 3.0))

	require.Len(t, toSchedule, 2, "class-1 completion plus class-2 restart")
	require.Len(t, toUnschedule, 1, "stale class-2 completion")
}

func TestSystem_Submit_UnknownEventTypePanics(t *testing.T) {
	sys := testSystem(t, 2, 2)

	assert.Panics(t, func() {
		sys.Submit(Event{Type: EventType{ActionArrival, ScopeCloudlet, Task1}, Time: 1.0, ID: 99})
	})
}

func TestSystem_CompletionWithoutArrivalPanics(t *testing.T) {
	sys := testSystem(t, 2, 2)

	assert.Panics(t, func() {
		sys.CompletionCloudTask1(Event{Type: EventType{ActionCompletion, ScopeCloud, Task1}, Time: 1.0, ID: 1})
	})
}

func TestSystem_MetricsZeroGuards(t *testing.T) {
	// Before any event, throughput and utilization are defined as 0
	// rather than dividing by a zero clock.
	sys := testSystem(t, 2, 2)

	assert.Equal(t, 0.0, sys.Throughput())
	assert.Equal(t, 0.0, sys.Utilization())
}

func TestSystem_UtilizationWithinUnitInterval(t *testing.T) {
	sys := testSystem(t, 2, 2)

	// Simultaneous arrivals keep the hand-driven event order chronological:
	// both completions necessarily fall after 1.0.
	c1, _, _, _ := sys.ArrivalTask1(1.0)
	c2 := sys.ArrivalTask2(1.0)

	first, second := c1, c2
	if second.Time < first.Time {
		first, second = second, first
	}
	sys.completionOf(t, first)
	sys.completionOf(t, second)

	u := sys.Utilization()
	assert.GreaterOrEqual(t, u, 0.0)
	assert.LessOrEqual(t, u, 1.0)
	assert.Greater(t, sys.Throughput(), 0.0)
}

// completionOf applies the matching completion operation for an event
// produced by an arrival in tests.
func (s *System) completionOf(t *testing.T, ev Event) {
	t.Helper()
	toSchedule, toUnschedule := s.Submit(ev)
	require.Empty(t, toSchedule)
	require.Empty(t, toUnschedule)
}
