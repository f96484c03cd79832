package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// System is the two-tier routing state machine: a bounded cloudlet in
// front of an unbounded cloud. Submit dispatches every calendar event to
// the matching operation and returns the follow-up events for the caller
// to schedule or unschedule.
type System struct {
	Cloudlet *Cloudlet
	Cloud    *Cloud

	// totals across both tiers
	N1 int
	N2 int

	Arrived1 int64
	Arrived2 int64
	Served1  int64
	Served2  int64
	Switched int64

	Response SampleStatistic

	stats *Statistics

	tLastEvent      float64
	tLastCompletion float64
	areaService     float64
}

// NewSystem builds the system from a validated configuration.
func NewSystem(gen *MultiStream, factory *EventFactory, stats *Statistics, cfg *Config) (*System, error) {
	cloudletService1, err := ExponentialFromRate(cfg.Cloudlet.Service.Task1)
	if err != nil {
		return nil, fmt.Errorf("cloudlet class-1 service: %w", err)
	}
	cloudletService2, err := ExponentialFromRate(cfg.Cloudlet.Service.Task2)
	if err != nil {
		return nil, fmt.Errorf("cloudlet class-2 service: %w", err)
	}
	cloudService1, err := ExponentialFromRate(cfg.Cloud.Service.Task1)
	if err != nil {
		return nil, fmt.Errorf("cloud class-1 service: %w", err)
	}
	cloudService2, err := ExponentialFromRate(cfg.Cloud.Service.Task2)
	if err != nil {
		return nil, fmt.Errorf("cloud class-2 service: %w", err)
	}
	// Class-1 tasks start on the cloud without a restart penalty; only
	// class-2 tasks pay the sampled setup delay.
	setup1, err := NewDeterministic(0)
	if err != nil {
		return nil, err
	}
	setup2, err := NewExponential(cfg.Cloud.SetupMean)
	if err != nil {
		return nil, fmt.Errorf("cloud setup: %w", err)
	}

	return &System{
		Cloudlet: NewCloudlet(gen, factory, cfg.Cloudlet.NServers, cfg.Cloudlet.Threshold, cloudletService1, cloudletService2),
		Cloud:    NewCloud(gen, factory, cloudService1, cloudService2, setup1, setup2),
		stats:    stats,
	}, nil
}

// Empty reports whether no task is in service on either tier.
func (s *System) Empty() bool {
	return s.N1+s.N2 == 0
}

// Population returns the total number of in-service tasks.
func (s *System) Population() int {
	return s.N1 + s.N2
}

// Submit applies one event to the system and returns the events to
// schedule and to unschedule in response. An event type outside the
// closed union is a calendar corruption and panics.
func (s *System) Submit(ev Event) (toSchedule, toUnschedule []Event) {
	switch ev.Type {
	case EventType{ActionArrival, ScopeSystem, Task1}:
		completion, restart, cancelled, preempted := s.ArrivalTask1(ev.Time)
		toSchedule = append(toSchedule, completion)
		if preempted {
			toSchedule = append(toSchedule, restart)
			toUnschedule = append(toUnschedule, cancelled)
		}
	case EventType{ActionArrival, ScopeSystem, Task2}:
		toSchedule = append(toSchedule, s.ArrivalTask2(ev.Time))
	case EventType{ActionCompletion, ScopeCloudlet, Task1}:
		s.CompletionCloudletTask1(ev)
	case EventType{ActionCompletion, ScopeCloudlet, Task2}:
		s.CompletionCloudletTask2(ev)
	case EventType{ActionCompletion, ScopeCloud, Task1}:
		s.CompletionCloudTask1(ev)
	case EventType{ActionCompletion, ScopeCloud, Task2}:
		s.CompletionCloudTask2(ev)
	default:
		panic(fmt.Sprintf("system: unexpected event type %v", ev.Type))
	}
	return toSchedule, toUnschedule
}

// ArrivalTask1 routes a class-1 arrival. In order: cloud when the
// cloudlet's class-1 slots are full; cloudlet when below the admission
// threshold; otherwise preempt a class-2 occupant to the cloud when one
// exists; otherwise admit to the cloudlet anyway. When preempted is
// true, restart is the cloud completion of the relocated class-2 task
// and cancelled is its stale cloudlet completion.
func (s *System) ArrivalTask1(t float64) (completion, restart, cancelled Event, preempted bool) {
	s.advance(t)
	s.N1++
	s.Arrived1++
	s.stats.Arrived.AddEvent()

	switch {
	case s.Cloudlet.N1 == s.Cloudlet.NServers:
		logrus.Debugf("ARRIVAL_TASK_1 routed to CLOUD at %.6f", t)
		completion = s.Cloud.SubmitArrival1(t)

	case s.Cloudlet.N1+s.Cloudlet.N2 < s.Cloudlet.Threshold:
		logrus.Debugf("ARRIVAL_TASK_1 routed to CLOUDLET at %.6f", t)
		completion = s.Cloudlet.SubmitArrival1(t)

	case s.Cloudlet.N2 > 0:
		logrus.Debugf("ARRIVAL_TASK_1 preempts a class-2 task at %.6f", t)
		cancelled = s.Cloudlet.SubmitRemoval2()
		restart = s.Cloud.SubmitRestart2(t)
		completion = s.Cloudlet.SubmitArrival1(t)
		s.Switched++
		s.stats.Switched.AddEvent()
		preempted = true

	default:
		// At threshold with free class-1 capacity and no class-2 victim.
		logrus.Debugf("ARRIVAL_TASK_1 routed to CLOUDLET (threshold, no victim) at %.6f", t)
		completion = s.Cloudlet.SubmitArrival1(t)
	}

	s.recordAdmission(t, completion)
	return completion, restart, cancelled, preempted
}

// ArrivalTask2 routes a class-2 arrival: cloud when the cloudlet is at
// or past its admission threshold, cloudlet otherwise.
func (s *System) ArrivalTask2(t float64) Event {
	s.advance(t)
	s.N2++
	s.Arrived2++
	s.stats.Arrived.AddEvent()

	var completion Event
	if s.Cloudlet.N1+s.Cloudlet.N2 >= s.Cloudlet.Threshold {
		logrus.Debugf("ARRIVAL_TASK_2 routed to CLOUD at %.6f", t)
		completion = s.Cloud.SubmitArrival2(t)
	} else {
		logrus.Debugf("ARRIVAL_TASK_2 routed to CLOUDLET at %.6f", t)
		completion = s.Cloudlet.SubmitArrival2(t)
	}

	s.recordAdmission(t, completion)
	return completion
}

// CompletionCloudletTask1 applies a class-1 cloudlet completion.
func (s *System) CompletionCloudletTask1(ev Event) {
	s.completion(ev.Time, Task1)
	s.Cloudlet.SubmitCompletion1()
}

// CompletionCloudletTask2 applies a class-2 cloudlet completion.
func (s *System) CompletionCloudletTask2(ev Event) {
	s.completion(ev.Time, Task2)
	s.Cloudlet.SubmitCompletion2(ev)
}

// CompletionCloudTask1 applies a class-1 cloud completion.
func (s *System) CompletionCloudTask1(ev Event) {
	s.completion(ev.Time, Task1)
	s.Cloud.SubmitCompletion1()
}

// CompletionCloudTask2 applies a class-2 cloud completion.
func (s *System) CompletionCloudTask2(ev Event) {
	s.completion(ev.Time, Task2)
	s.Cloud.SubmitCompletion2()
}

// Throughput returns served tasks per unit time up to the last
// completion, or 0 before any completion has been processed.
func (s *System) Throughput() float64 {
	if s.tLastCompletion == 0 {
		return 0
	}
	return float64(s.Served1+s.Served2) / s.tLastCompletion
}

// Utilization returns the fraction of elapsed time with at least one
// task in service, or 0 before any event has been processed.
func (s *System) Utilization() float64 {
	if s.tLastEvent == 0 {
		return 0
	}
	return s.areaService / s.tLastEvent
}

// advance accumulates the busy-time area over the interval since the
// previous event. Occupancy is checked before the caller mutates it, so
// the interval is weighed by the population that actually held during it.
func (s *System) advance(t float64) {
	if s.N1+s.N2 > 0 {
		s.areaService += t - s.tLastEvent
	}
	s.tLastEvent = t
}

func (s *System) recordAdmission(t float64, completion Event) {
	response := completion.Time - t
	s.Response.Add(response)
	s.stats.Response.AddValue(response)
	s.stats.Service.AddValue(response)
}

func (s *System) completion(t float64, task TaskClass) {
	s.advance(t)
	switch task {
	case Task1:
		s.N1--
		s.Served1++
	case Task2:
		s.N2--
		s.Served2++
	}
	if s.N1 < 0 || s.N2 < 0 {
		panic(fmt.Sprintf("system: negative occupancy (n1=%d, n2=%d) at %.6f", s.N1, s.N2, t))
	}
	s.tLastCompletion = t
	s.stats.Completed.AddEvent()
}
