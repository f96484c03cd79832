package sim

import "fmt"

// Cloudlet is the bounded front tier: NServers service slots and an
// admission threshold on total occupancy. It tracks the pending
// completion events of its class-2 occupants so the preemption path can
// pick a deterministic victim and hand its completion back to the
// calendar for cancellation.
type Cloudlet struct {
	gen     *MultiStream
	factory *EventFactory

	NServers  int
	Threshold int

	N1 int
	N2 int

	service1 Variate
	service2 Variate

	pending2 []Event // pending class-2 completions, in schedule order
}

// NewCloudlet creates the cloudlet tier. Parameters are assumed already
// validated by Config.Validate.
func NewCloudlet(gen *MultiStream, factory *EventFactory, nServers, threshold int, service1, service2 Variate) *Cloudlet {
	return &Cloudlet{
		gen:       gen,
		factory:   factory,
		NServers:  nServers,
		Threshold: threshold,
		service1:  service1,
		service2:  service2,
	}
}

// SubmitArrival1 admits a class-1 task and returns its completion event.
func (c *Cloudlet) SubmitArrival1(t float64) Event {
	c.N1++
	d := c.service1.Sample(c.gen, streamCloudletService1)
	return c.factory.New(EventType{ActionCompletion, ScopeCloudlet, Task1}, t+d)
}

// SubmitArrival2 admits a class-2 task and returns its completion event,
// which is also remembered as a preemption candidate.
func (c *Cloudlet) SubmitArrival2(t float64) Event {
	c.N2++
	d := c.service2.Sample(c.gen, streamCloudletService2)
	ev := c.factory.New(EventType{ActionCompletion, ScopeCloudlet, Task2}, t+d)
	c.pending2 = append(c.pending2, ev)
	return ev
}

// SubmitRemoval2 preempts one class-2 task and returns its now-stale
// completion event so the caller can unschedule it. The victim is the
// occupant with the earliest pending completion time, ties broken by
// lowest event ID, which keeps per-task response times reproducible.
func (c *Cloudlet) SubmitRemoval2() Event {
	if len(c.pending2) == 0 {
		panic("cloudlet: removal of class-2 task with none in service")
	}
	victim := 0
	for i := 1; i < len(c.pending2); i++ {
		ev, best := c.pending2[i], c.pending2[victim]
		if ev.Time < best.Time || (ev.Time == best.Time && ev.ID < best.ID) {
			victim = i
		}
	}
	ev := c.pending2[victim]
	c.pending2 = append(c.pending2[:victim], c.pending2[victim+1:]...)
	c.N2--
	return ev
}

// SubmitCompletion1 records the completion of a class-1 task.
func (c *Cloudlet) SubmitCompletion1() {
	c.N1--
	if c.N1 < 0 {
		panic("cloudlet: negative class-1 occupancy")
	}
}

// SubmitCompletion2 records the completion of a class-2 task and drops
// it from the preemption candidates.
func (c *Cloudlet) SubmitCompletion2(ev Event) {
	c.N2--
	if c.N2 < 0 {
		panic("cloudlet: negative class-2 occupancy")
	}
	for i := range c.pending2 {
		if c.pending2[i].ID == ev.ID {
			c.pending2 = append(c.pending2[:i], c.pending2[i+1:]...)
			return
		}
	}
	panic(fmt.Sprintf("cloudlet: completion %v has no pending record", ev))
}
