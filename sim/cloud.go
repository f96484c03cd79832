package sim

// Cloud is the unbounded overflow tier. Tasks routed or preempted here
// incur a sampled setup delay before service begins; the setup and
// service offsets are folded into a single completion event.
type Cloud struct {
	gen     *MultiStream
	factory *EventFactory

	N1 int
	N2 int

	service1 Variate
	service2 Variate
	setup1   Variate
	setup2   Variate
}

// NewCloud creates the cloud tier.
func NewCloud(gen *MultiStream, factory *EventFactory, service1, service2, setup1, setup2 Variate) *Cloud {
	return &Cloud{
		gen:      gen,
		factory:  factory,
		service1: service1,
		service2: service2,
		setup1:   setup1,
		setup2:   setup2,
	}
}

// SubmitArrival1 starts a class-1 task on the cloud.
func (c *Cloud) SubmitArrival1(t float64) Event {
	c.N1++
	d := c.setup1.Sample(c.gen, streamCloudSetup1) + c.service1.Sample(c.gen, streamCloudService1)
	return c.factory.New(EventType{ActionCompletion, ScopeCloud, Task1}, t+d)
}

// SubmitArrival2 starts a class-2 task on the cloud.
func (c *Cloud) SubmitArrival2(t float64) Event {
	c.N2++
	d := c.setup2.Sample(c.gen, streamCloudSetup2) + c.service2.Sample(c.gen, streamCloudService2)
	return c.factory.New(EventType{ActionCompletion, ScopeCloud, Task2}, t+d)
}

// SubmitRestart2 restarts a preempted class-2 task on the cloud, with a
// fresh setup delay on top of a freshly sampled service time.
func (c *Cloud) SubmitRestart2(t float64) Event {
	c.N2++
	d := c.setup2.Sample(c.gen, streamCloudSetup2) + c.service2.Sample(c.gen, streamCloudService2)
	return c.factory.New(EventType{ActionCompletion, ScopeCloud, Task2}, t+d)
}

// SubmitCompletion1 records the completion of a class-1 task.
func (c *Cloud) SubmitCompletion1() {
	c.N1--
	if c.N1 < 0 {
		panic("cloud: negative class-1 occupancy")
	}
}

// SubmitCompletion2 records the completion of a class-2 task.
func (c *Cloud) SubmitCompletion2() {
	c.N2--
	if c.N2 < 0 {
		panic("cloud: negative class-2 occupancy")
	}
}
