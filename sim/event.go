package sim

import "fmt"

// Action is the kind of state change an event carries.
type Action int

const (
	ActionArrival Action = iota
	ActionCompletion
)

func (a Action) String() string {
	switch a {
	case ActionArrival:
		return "ARRIVAL"
	case ActionCompletion:
		return "COMPLETION"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Scope is the tier an event refers to. Arrivals are scoped to the whole
// system (the routing decision has not been made yet); completions are
// scoped to the tier the task was served on.
type Scope int

const (
	ScopeSystem Scope = iota
	ScopeCloudlet
	ScopeCloud
)

func (s Scope) String() string {
	switch s {
	case ScopeSystem:
		return "SYSTEM"
	case ScopeCloudlet:
		return "CLOUDLET"
	case ScopeCloud:
		return "CLOUD"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// TaskClass is the task type: class 1 has priority over class 2.
type TaskClass int

const (
	Task1 TaskClass = iota
	Task2
)

func (c TaskClass) String() string {
	switch c {
	case Task1:
		return "TASK_1"
	case Task2:
		return "TASK_2"
	default:
		return fmt.Sprintf("TaskClass(%d)", int(c))
	}
}

// EventType is the closed (action, scope, class) union used both as the
// routing key in System.Submit and as the calendar's arrival filter.
type EventType struct {
	Act   Action
	Scope Scope
	Task  TaskClass
}

func (t EventType) String() string {
	return fmt.Sprintf("%v_%v_%v", t.Act, t.Scope, t.Task)
}

// Event is an immutable scheduled occurrence. ID is a sequence number
// assigned at creation by an EventFactory; the calendar orders events by
// (Time, ID), which gives a stable FIFO tie-break for equal timestamps,
// and cancels them by ID, so two events with identical (type, time)
// remain distinguishable.
type Event struct {
	Type EventType
	Time float64
	ID   uint64
}

func (e Event) String() string {
	return fmt.Sprintf("Event(%v @ %.6f #%d)", e.Type, e.Time, e.ID)
}

// EventFactory hands out monotonically increasing event IDs. One factory
// is shared by every event producer of a run (task generator and system),
// so IDs are unique run-wide. Not safe for concurrent use.
type EventFactory struct {
	seq uint64
}

// NewEventFactory creates a factory whose first event gets ID 1.
func NewEventFactory() *EventFactory {
	return &EventFactory{}
}

// New creates an event with the next sequence ID.
func (f *EventFactory) New(t EventType, time float64) Event {
	f.seq++
	return Event{Type: t, Time: time, ID: f.seq}
}

// Fixed stream indices. Each stochastic concern draws on its own stream
// so that perturbing one configuration parameter never shifts the random
// sequence consumed by another concern.
const (
	streamArrivalTask1     = 2
	streamArrivalTask2     = 3
	streamCloudletService1 = 4
	streamCloudletService2 = 5
	streamCloudService1    = 6
	streamCloudService2    = 7
	streamCloudSetup1      = 8
	streamCloudSetup2      = 9

	streamArrivalType = 100
	streamArrivalTime = 101
)
