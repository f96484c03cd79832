package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Simulation is the driver: it owns the generator, calendar, task
// generator, system and statistics of one run, and executes the
// next-event loop until the stop condition holds.
//
// Two modes exist. TransientAnalysis runs with the calendar horizon at
// t_stop, samples every t_sample and seals every sample as its own
// batch. PerformanceAnalysis runs with an open horizon until the batch
// quota is met, discarding everything collected before t_tran. In both
// modes the run ends when the door is closed (horizon passed, or quota
// met) and the system has drained.
//
// Strictly sequential: one event is processed start-to-finish before the
// next is drawn, so a run is byte-for-byte reproducible for a fixed seed
// and configuration.
type Simulation struct {
	cfg *Config

	tStop    float64
	tTran    float64
	batches  int
	batchDim int
	tSample  float64

	gen      *MultiStream
	factory  *EventFactory
	calendar *Calendar
	taskgen  *Taskgen
	system   *System
	stats    *Statistics

	tLastSample    float64
	samplesInBatch int
	closedDoor     bool
	discardPending bool
}

// NewSimulation builds a run from a validated configuration.
func NewSimulation(cfg *Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	gen, err := NewMultiStream(cfg.General.Seed)
	if err != nil {
		return nil, err
	}
	factory := NewEventFactory()
	stats := NewStatistics()

	s := &Simulation{
		cfg:     cfg,
		gen:     gen,
		factory: factory,
		stats:   stats,
		tSample: cfg.General.SampleInterval,
	}

	switch cfg.General.Mode {
	case TransientAnalysis:
		s.tStop = cfg.General.Stop
		s.tTran = 0
		s.batches = math.MaxInt
		s.batchDim = 1
	case PerformanceAnalysis:
		s.tStop = math.Inf(1)
		s.tTran = cfg.General.Transient
		s.batches = cfg.General.Batches
		s.batchDim = cfg.General.BatchDim
		s.discardPending = s.tTran > 0
	default:
		return nil, fmt.Errorf("unsupported mode %q", cfg.General.Mode)
	}

	arrival1, err := ExponentialFromRate(cfg.Arrival.Task1)
	if err != nil {
		return nil, fmt.Errorf("class-1 arrival: %w", err)
	}
	arrival2, err := ExponentialFromRate(cfg.Arrival.Task2)
	if err != nil {
		return nil, fmt.Errorf("class-2 arrival: %w", err)
	}
	s.taskgen, err = NewTaskgen(gen, factory, map[TaskClass]Variate{Task1: arrival1, Task2: arrival2}, s.tStop)
	if err != nil {
		return nil, err
	}

	s.system, err = NewSystem(gen, factory, stats, cfg)
	if err != nil {
		return nil, err
	}

	s.calendar = NewCalendar(0, s.tStop)
	return s, nil
}

// Run executes the next-event loop to completion.
func (s *Simulation) Run() {
	logrus.Infof("starting %s run, seed=%d", s.cfg.General.Mode, s.gen.InitialSeed())

	// The first arrival; the calendar keeps the rest ordered.
	s.calendar.Schedule(s.taskgen.Generate(s.calendar.Clock()))

	for !(s.closedDoor && s.system.Empty()) {
		ev, ok := s.calendar.NextEvent()
		if !ok {
			break
		}

		s.closedDoor = s.closedDoorCondition()

		// Once the door is closed, arrivals are dropped; in-flight
		// completions still drain.
		if !s.closedDoor || ev.Type.Act != ActionArrival {
			toSchedule, toUnschedule := s.system.Submit(ev)
			for _, e := range toSchedule {
				s.calendar.Schedule(e)
			}
			s.calendar.Unschedule(toUnschedule...)
		}

		if ev.Type.Act == ActionArrival && !s.closedDoor {
			s.calendar.Schedule(s.taskgen.Generate(s.calendar.Clock()))
		}

		// Sampling stops once the door closes: the drain period is not
		// part of the observation window.
		if !s.closedDoor && s.calendar.Clock() > s.tTran {
			if s.discardPending {
				// Remove initialization bias: fold the transient into the
				// open batch, then drop it.
				s.sample()
				s.stats.DiscardBatch()
				s.discardPending = false
				s.tLastSample = s.calendar.Clock()
				logrus.Debugf("transient data discarded at %.6f", s.calendar.Clock())
			}
			if s.calendar.Clock() >= s.tLastSample+s.tSample {
				s.sample()
				s.tLastSample = s.calendar.Clock()
				s.samplesInBatch++
				if s.samplesInBatch >= s.batchDim {
					s.stats.RegisterBatch()
					s.samplesInBatch = 0
				}
			}
		}
	}

	logrus.Infof("run ended at clock %.6f with %d batches", s.calendar.Clock(), s.stats.NBatches())
}

// sample records the instantaneous population and throughput.
func (s *Simulation) sample() {
	clock := s.calendar.Clock()
	s.stats.Population.AddValue(float64(s.system.Population()))
	s.stats.Throughput.AddValue(s.system.Throughput(), clock)
}

func (s *Simulation) closedDoorCondition() bool {
	if s.cfg.General.Mode == PerformanceAnalysis {
		return s.stats.NBatches() >= s.batches
	}
	return s.calendar.Clock() >= s.tStop
}

// Clock returns the simulation clock.
func (s *Simulation) Clock() float64 { return s.calendar.Clock() }

// Statistics returns the batch-means statistics group of the run.
func (s *Simulation) Statistics() *Statistics { return s.stats }

// System returns the system state machine of the run.
func (s *Simulation) System() *System { return s.system }

// Taskgen returns the arrival generator of the run.
func (s *Simulation) Taskgen() *Taskgen { return s.taskgen }

// Generator returns the random number generator of the run.
func (s *Simulation) Generator() *MultiStream { return s.gen }
