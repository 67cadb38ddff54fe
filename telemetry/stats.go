// Package telemetry records generation statistics and per-frame timing, and
// writes them as CSV.
package telemetry

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ChunkRecord is the per-chunk row written to chunks.csv.
type ChunkRecord struct {
	X            int    `csv:"x"`
	Y            int    `csv:"y"`
	Block        string `csv:"block"`
	BlockQuarter int    `csv:"block_quarter"`
	Lanes        string `csv:"lanes"` // slot names joined with "|"
	Intersection string `csv:"intersection"`
	Cars         int    `csv:"cars"`
	Clouds       int    `csv:"clouds"`
	Attempts     int    `csv:"attempts"`
	Relaxed      bool   `csv:"relaxed"`
}

// LaneNames splits the joined lane column back into slot names.
func (r ChunkRecord) LaneNames() []string {
	if r.Lanes == "" {
		return nil
	}
	return strings.Split(r.Lanes, "|")
}

// GenerationStats summarises one grid generation run.
type GenerationStats struct {
	TableSize     int
	Chunks        int
	Cars          int
	Clouds        int
	Relaxed       int
	Attempts      int
	StadiumPlaced bool
	Duration      time.Duration

	BlockCounts map[string]int
	LaneCounts  map[string]int

	// Derived in Finish
	MobsMean float64
	MobsStd  float64
	MobsP90  float64
	LaneChi2 float64 // Chi-square of observed lane draws against configured weights

	Records []ChunkRecord
}

// NewGenerationStats creates an empty stats accumulator.
func NewGenerationStats(tableSize int) *GenerationStats {
	return &GenerationStats{
		TableSize:   tableSize,
		BlockCounts: make(map[string]int),
		LaneCounts:  make(map[string]int),
		Records:     make([]ChunkRecord, 0, tableSize*tableSize),
	}
}

// RecordChunk adds one generated chunk.
func (s *GenerationStats) RecordChunk(r ChunkRecord) {
	s.Chunks++
	s.Cars += r.Cars
	s.Clouds += r.Clouds
	s.Attempts += r.Attempts
	if r.Relaxed {
		s.Relaxed++
	}
	s.BlockCounts[r.Block]++
	for _, lane := range r.LaneNames() {
		s.LaneCounts[lane]++
	}
	s.Records = append(s.Records, r)
}

// Finish computes the derived fields. laneProb maps lane names to their
// configured selection probability; names missing from it are ignored.
func (s *GenerationStats) Finish(d time.Duration, laneProb map[string]float64) {
	s.Duration = d

	mobs := make([]float64, len(s.Records))
	for i, r := range s.Records {
		mobs[i] = float64(r.Cars + r.Clouds)
	}
	switch {
	case len(mobs) > 1:
		s.MobsMean, s.MobsStd = stat.MeanStdDev(mobs, nil)
	case len(mobs) == 1:
		s.MobsMean = mobs[0]
	}
	if len(mobs) > 0 {
		sort.Float64s(mobs)
		s.MobsP90 = Percentile(mobs, 0.90)
	}

	s.LaneChi2 = laneChiSquare(s.LaneCounts, laneProb)
}

func laneChiSquare(counts map[string]int, prob map[string]float64) float64 {
	names := make([]string, 0, len(prob))
	var total float64
	for name, p := range prob {
		if p > 0 {
			names = append(names, name)
			total += float64(counts[name])
		}
	}
	if total == 0 || len(names) < 2 {
		return 0
	}
	sort.Strings(names)

	obs := make([]float64, len(names))
	exp := make([]float64, len(names))
	for i, name := range names {
		obs[i] = float64(counts[name])
		exp[i] = prob[name] * total
	}
	return stat.ChiSquare(obs, exp)
}

// Percentile returns the p-th percentile (0-1) of sorted values by linear
// interpolation. Returns 0 for an empty slice.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("table_size", s.TableSize),
		slog.Int("chunks", s.Chunks),
		slog.Int("cars", s.Cars),
		slog.Int("clouds", s.Clouds),
		slog.Int("relaxed", s.Relaxed),
		slog.Int("attempts", s.Attempts),
		slog.Bool("stadium", s.StadiumPlaced),
		slog.Int64("duration_us", s.Duration.Microseconds()),
		slog.Float64("mobs_mean", s.MobsMean),
		slog.Float64("mobs_std", s.MobsStd),
		slog.Float64("mobs_p90", s.MobsP90),
		slog.Float64("lane_chi2", s.LaneChi2),
	)
}

// LogStats logs the generation summary using slog.
func (s GenerationStats) LogStats() {
	slog.Info("generation", "stats", s)
}
