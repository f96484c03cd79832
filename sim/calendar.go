package sim

import (
	"container/heap"

	"github.com/sirupsen/logrus"
)

// eventHeap implements heap.Interface ordered by (time, ID).
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	// Equal timestamps pop in creation order, keeping runs reproducible.
	return h[i].ID < h[j].ID
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// Calendar is the next-event calendar. It orders pending events by
// occurrence time, refuses arrival events past the horizon, and supports
// lazy cancellation: an unscheduled event stays in the heap and is
// silently skipped when popped. The cancellation set holds event IDs,
// and its size is bounded by the number of outstanding cancellable
// completions, which stays small relative to total events.
type Calendar struct {
	clock   float64
	horizon float64
	events  eventHeap
	ignore  map[uint64]struct{}
}

// NewCalendar creates a calendar starting at the given clock time.
// Arrival events with time >= horizon are rejected by Schedule.
func NewCalendar(clock, horizon float64) *Calendar {
	return &Calendar{
		clock:   clock,
		horizon: horizon,
		events:  make(eventHeap, 0),
		ignore:  make(map[uint64]struct{}),
	}
}

// Clock returns the current simulation time.
func (c *Calendar) Clock() float64 { return c.clock }

// Horizon returns the configured stop time for arrivals.
func (c *Calendar) Horizon() float64 { return c.horizon }

// Schedule enqueues an event and reports whether it was accepted.
// Arrival events at or past the horizon are rejected; completions are
// never time-bounded, since their cause occurred while the system was
// still open.
func (c *Calendar) Schedule(ev Event) bool {
	if ev.Type.Act == ActionArrival && ev.Time >= c.horizon {
		logrus.Debugf("not scheduled (past horizon): %v", ev)
		return false
	}
	heap.Push(&c.events, ev)
	logrus.Debugf("scheduled: %v", ev)
	return true
}

// Unschedule marks events as cancelled. They are not searched for or
// removed from the heap; NextEvent discards them when they surface.
func (c *Calendar) Unschedule(events ...Event) {
	for _, ev := range events {
		c.ignore[ev.ID] = struct{}{}
		logrus.Debugf("unscheduled: %v", ev)
	}
}

// NextEvent pops the earliest non-cancelled event, advances the clock to
// its time, and returns it. The second return value is false when no
// event remains.
func (c *Calendar) NextEvent() (Event, bool) {
	for c.events.Len() > 0 {
		ev := heap.Pop(&c.events).(Event)
		if _, cancelled := c.ignore[ev.ID]; cancelled {
			delete(c.ignore, ev.ID)
			logrus.Debugf("ignoring next event (unscheduled): %v", ev)
			continue
		}
		c.clock = ev.Time
		return ev, true
	}
	return Event{}, false
}

// Empty reports whether no events remain in the heap. Cancelled entries
// still count until they are popped.
func (c *Calendar) Empty() bool {
	return c.events.Len() == 0
}
