// Package sim is the discrete-event simulation engine for a two-tier
// cloudlet/cloud computing system serving two task classes.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - event.go: the closed (action, scope, class) event union and the
//     sequence-ID factory that makes cancellation and tie-breaking stable
//   - calendar.go: the next-event calendar with lazy cancellation
//   - system.go: routing, preemption and completion bookkeeping
//   - simulation.go: the driver loop, modes and stop conditions
//
// # Architecture
//
// Every stochastic decision draws from one generator (rndgen.go), a
// multi-stream Lehmer generator whose streams decorrelate the concerns:
// arrival class, arrival time, per-tier per-class service, cloud setup.
// Variates (rndvar.go) turn a uniform draw plus a distribution
// descriptor into a duration. The task generator (taskgen.go) races the
// two exponential arrival processes; the system (system.go, cloudlet.go,
// cloud.go) decides where each task runs; batch-means accumulators
// (batchstats.go) reduce one long run into approximately independent
// samples with confidence intervals.
//
// Execution is strictly sequential: one event at a time, in
// non-decreasing time order with a stable tie-break, so every run is
// byte-for-byte reproducible for a fixed seed and configuration.
package sim
