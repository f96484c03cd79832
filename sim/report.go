package sim

import (
	"fmt"
	"strings"
)

// Report is the read-only summary of a finished run, assembled from the
// engine's accessors for the surrounding reporting layer.
type Report struct {
	Mode  Mode
	Clock float64

	Seed       int64
	Modulus    int64
	Multiplier int64
	Streams    int

	ArrivalRate1 float64
	ArrivalRate2 float64
	Generated1   int64
	Generated2   int64

	Arrived1 int64
	Arrived2 int64
	Served1  int64
	Served2  int64

	InServiceCloudlet1 int
	InServiceCloudlet2 int
	InServiceCloud1    int
	InServiceCloud2    int

	Switched int64

	ResponseMean float64
	ResponseSdev float64
	Throughput   float64
	Utilization  float64

	Batches    int
	Confidence float64

	// Batch-means estimates with confidence-interval half-widths.
	PopulationMean float64
	PopulationCInt float64
	ResponseBMean  float64
	ResponseBCInt  float64
	ThroughputMean float64
	ThroughputCInt float64
}

// Report builds the summary of the run's current state.
func (s *Simulation) Report() *Report {
	rates := s.taskgen.Rates()
	conf := s.cfg.General.Confidence
	return &Report{
		Mode:  s.cfg.General.Mode,
		Clock: s.calendar.Clock(),

		Seed:       s.gen.InitialSeed(),
		Modulus:    s.gen.Modulus(),
		Multiplier: s.gen.Multiplier(),
		Streams:    s.gen.Streams(),

		ArrivalRate1: rates[Task1],
		ArrivalRate2: rates[Task2],
		Generated1:   s.taskgen.Generated[Task1],
		Generated2:   s.taskgen.Generated[Task2],

		Arrived1: s.system.Arrived1,
		Arrived2: s.system.Arrived2,
		Served1:  s.system.Served1,
		Served2:  s.system.Served2,

		InServiceCloudlet1: s.system.Cloudlet.N1,
		InServiceCloudlet2: s.system.Cloudlet.N2,
		InServiceCloud1:    s.system.Cloud.N1,
		InServiceCloud2:    s.system.Cloud.N2,

		Switched: s.system.Switched,

		ResponseMean: s.system.Response.Mean(),
		ResponseSdev: s.system.Response.Sdev(),
		Throughput:   s.system.Throughput(),
		Utilization:  s.system.Utilization(),

		Batches:    s.stats.NBatches(),
		Confidence: conf,

		PopulationMean: s.stats.Population.Mean(),
		PopulationCInt: s.stats.Population.CInt(conf),
		ResponseBMean:  s.stats.Response.Mean(),
		ResponseBCInt:  s.stats.Response.CInt(conf),
		ThroughputMean: s.stats.Throughput.Mean(),
		ThroughputCInt: s.stats.Throughput.CInt(conf),
	}
}

// String renders the report as a fixed-order text block.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Simulation Report (%s) ===\n", r.Mode)
	fmt.Fprintf(&b, "clock                : %.6f\n", r.Clock)
	fmt.Fprintf(&b, "seed                 : %d\n", r.Seed)
	fmt.Fprintf(&b, "modulus              : %d\n", r.Modulus)
	fmt.Fprintf(&b, "multiplier           : %d\n", r.Multiplier)
	fmt.Fprintf(&b, "streams              : %d\n", r.Streams)
	fmt.Fprintf(&b, "arrival rate (1, 2)  : %.4f, %.4f\n", r.ArrivalRate1, r.ArrivalRate2)
	fmt.Fprintf(&b, "generated (1, 2)     : %d, %d\n", r.Generated1, r.Generated2)
	fmt.Fprintf(&b, "arrived (1, 2)       : %d, %d\n", r.Arrived1, r.Arrived2)
	fmt.Fprintf(&b, "served (1, 2)        : %d, %d\n", r.Served1, r.Served2)
	fmt.Fprintf(&b, "in service cloudlet  : %d, %d\n", r.InServiceCloudlet1, r.InServiceCloudlet2)
	fmt.Fprintf(&b, "in service cloud     : %d, %d\n", r.InServiceCloud1, r.InServiceCloud2)
	fmt.Fprintf(&b, "switched to cloud    : %d\n", r.Switched)
	fmt.Fprintf(&b, "response mean (sdev) : %.6f (%.6f)\n", r.ResponseMean, r.ResponseSdev)
	fmt.Fprintf(&b, "throughput           : %.6f\n", r.Throughput)
	fmt.Fprintf(&b, "utilization          : %.6f\n", r.Utilization)
	fmt.Fprintf(&b, "batches              : %d (confidence %.2f)\n", r.Batches, r.Confidence)
	fmt.Fprintf(&b, "population mean      : %.6f +/- %.6f\n", r.PopulationMean, r.PopulationCInt)
	fmt.Fprintf(&b, "response batch mean  : %.6f +/- %.6f\n", r.ResponseBMean, r.ResponseBCInt)
	fmt.Fprintf(&b, "throughput batch mean: %.6f +/- %.6f\n", r.ThroughputMean, r.ThroughputCInt)
	return b.String()
}
