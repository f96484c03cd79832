package sim

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// SampleStatistic is a running mean/variance accumulator (Welford's
// update) for raw samples, used for the whole-run response-time summary.
type SampleStatistic struct {
	n    int64
	mean float64
	m2   float64
}

// Add records one sample.
func (s *SampleStatistic) Add(v float64) {
	s.n++
	delta := v - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (v - s.mean)
}

// Count returns the number of samples recorded.
func (s *SampleStatistic) Count() int64 { return s.n }

// Mean returns the sample mean, or 0 with no samples.
func (s *SampleStatistic) Mean() float64 { return s.mean }

// Sdev returns the sample standard deviation, or 0 with fewer than two
// samples.
func (s *SampleStatistic) Sdev() float64 {
	if s.n < 2 {
		return 0
	}
	return math.Sqrt(s.m2 / float64(s.n-1))
}

// batchSeries holds the sealed per-batch values shared by all batched
// accumulators and computes their summary statistics.
type batchSeries struct {
	values []float64
}

func (b *batchSeries) seal(v float64)      { b.values = append(b.values, v) }
func (b *batchSeries) NBatches() int       { return len(b.values) }
func (b *batchSeries) Value(i int) float64 { return b.values[i] }

// Mean returns the mean of the sealed batch values, or 0 with none.
func (b *batchSeries) Mean() float64 {
	if len(b.values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range b.values {
		sum += v
	}
	return sum / float64(len(b.values))
}

// Sdev returns the sample standard deviation of the sealed batch values.
func (b *batchSeries) Sdev() float64 {
	n := len(b.values)
	if n < 2 {
		return 0
	}
	mean := b.Mean()
	sum := 0.0
	for _, v := range b.values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(n-1))
}

// CInt returns the half-width of the two-sided confidence interval for
// the batch mean at the given confidence level. Batches, not raw
// samples, are the unit of statistical independence: raw samples in a
// queueing run are autocorrelated, batch averages over long intervals
// are approximately independent. A Student-t quantile is used for small
// batch counts, the normal quantile above that.
func (b *batchSeries) CInt(confidence float64) float64 {
	n := len(b.values)
	if n < 2 {
		return 0
	}
	alpha := 1.0 - confidence
	var q float64
	if n < 40 {
		q = distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(1 - alpha/2)
	} else {
		q = distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - alpha/2)
	}
	return q * b.Sdev() / math.Sqrt(float64(n))
}

// BatchedMeasure is a batched event counter: the open batch accumulates
// add_event/add_value contributions; RegisterBatch seals it as one data
// point and clears it.
type BatchedMeasure struct {
	batchSeries
	current float64
}

// AddEvent counts one occurrence into the open batch.
func (m *BatchedMeasure) AddEvent() { m.current++ }

// AddValue adds an amount into the open batch.
func (m *BatchedMeasure) AddValue(v float64) { m.current += v }

// Current returns the open batch's accumulated value.
func (m *BatchedMeasure) Current() float64 { return m.current }

// RegisterBatch seals the open batch and resets the accumulator.
func (m *BatchedMeasure) RegisterBatch() {
	m.seal(m.current)
	m.current = 0
}

// DiscardBatch drops the open batch's partial data without sealing it.
func (m *BatchedMeasure) DiscardBatch() { m.current = 0 }

// BatchedSampleStatistic seals the mean of the samples added during the
// open batch. A batch with no samples seals as 0.
type BatchedSampleStatistic struct {
	batchSeries
	sum   float64
	count int64
}

// AddValue records one sample into the open batch.
func (s *BatchedSampleStatistic) AddValue(v float64) {
	s.sum += v
	s.count++
}

// RegisterBatch seals the open batch's sample mean and resets it.
func (s *BatchedSampleStatistic) RegisterBatch() {
	if s.count > 0 {
		s.seal(s.sum / float64(s.count))
	} else {
		s.seal(0)
	}
	s.sum, s.count = 0, 0
}

// DiscardBatch drops the open batch's partial data.
func (s *BatchedSampleStatistic) DiscardBatch() { s.sum, s.count = 0, 0 }

// BatchedSamplePathStatistic seals the time-weighted mean of a sample
// path: each AddValue(v, t) weighs v by the time elapsed since the
// previous observation.
type BatchedSamplePathStatistic struct {
	batchSeries
	area   float64
	tStart float64
	tLast  float64
}

// AddValue extends the sample path with value v up to time t.
func (s *BatchedSamplePathStatistic) AddValue(v, t float64) {
	s.area += v * (t - s.tLast)
	s.tLast = t
}

// RegisterBatch seals the time-weighted mean over the batch interval and
// starts a new interval at the last observation time. An empty interval
// seals as 0.
func (s *BatchedSamplePathStatistic) RegisterBatch() {
	if s.tLast > s.tStart {
		s.seal(s.area / (s.tLast - s.tStart))
	} else {
		s.seal(0)
	}
	s.area = 0
	s.tStart = s.tLast
}

// DiscardBatch drops the open interval's partial data.
func (s *BatchedSamplePathStatistic) DiscardBatch() {
	s.area = 0
	s.tStart = s.tLast
}

// Statistics is the batch-means statistics group for one run. Batches
// are sealed atomically across all accumulators so NBatches stays
// uniform; callers must never register a batch on a member directly.
type Statistics struct {
	Arrived    BatchedMeasure
	Completed  BatchedMeasure
	Switched   BatchedMeasure
	Service    BatchedMeasure
	Population BatchedSampleStatistic
	Response   BatchedSampleStatistic
	Throughput BatchedSamplePathStatistic

	nBatches int
}

// NewStatistics creates an empty statistics group.
func NewStatistics() *Statistics {
	return &Statistics{}
}

// NBatches returns the number of sealed batches.
func (s *Statistics) NBatches() int { return s.nBatches }

// RegisterBatch seals the open batch on every accumulator.
func (s *Statistics) RegisterBatch() {
	s.Arrived.RegisterBatch()
	s.Completed.RegisterBatch()
	s.Switched.RegisterBatch()
	s.Service.RegisterBatch()
	s.Population.RegisterBatch()
	s.Response.RegisterBatch()
	s.Throughput.RegisterBatch()
	s.nBatches++
}

// DiscardBatch drops the open batch on every accumulator. Used once, at
// the end of the transient period, to remove initialization bias.
func (s *Statistics) DiscardBatch() {
	s.Arrived.DiscardBatch()
	s.Completed.DiscardBatch()
	s.Switched.DiscardBatch()
	s.Service.DiscardBatch()
	s.Population.DiscardBatch()
	s.Response.DiscardBatch()
	s.Throughput.DiscardBatch()
}

// SaveCSV writes one row per sealed batch.
func (s *Statistics) SaveCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"batch", "arrived", "completed", "switched", "service", "n", "response", "throughput"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing statistics header: %w", err)
	}
	for b := 0; b < s.nBatches; b++ {
		row := []string{
			fmt.Sprintf("%d", b),
			formatStat(s.Arrived.Value(b)),
			formatStat(s.Completed.Value(b)),
			formatStat(s.Switched.Value(b)),
			formatStat(s.Service.Value(b)),
			formatStat(s.Population.Value(b)),
			formatStat(s.Response.Value(b)),
			formatStat(s.Throughput.Value(b)),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing statistics batch %d: %w", b, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatStat(v float64) string {
	return fmt.Sprintf("%g", v)
}
