package telemetry

import (
	"math"
	"testing"
	"time"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestChunkRecordLaneNames(t *testing.T) {
	tests := []struct {
		lanes string
		want  int
	}{
		{"", 0},
		{"Road_Lane_01_fixed", 1},
		{"Road_Lane_01_fixed|Road_Lane_03_fixed|Road_Lane_01_fixed|Road_Lane_01_fixed", 4},
	}
	for _, tt := range tests {
		got := ChunkRecord{Lanes: tt.lanes}.LaneNames()
		if len(got) != tt.want {
			t.Errorf("LaneNames(%q) = %v, want %d names", tt.lanes, got, tt.want)
		}
	}
}

func TestGenerationStatsRecordChunk(t *testing.T) {
	s := NewGenerationStats(2)
	s.RecordChunk(ChunkRecord{Block: "block_1_merged", Lanes: "a|a|b|a", Cars: 2, Clouds: 1, Attempts: 1})
	s.RecordChunk(ChunkRecord{Block: "block_2_merged", Lanes: "b|a|a|a", Cars: 1, Attempts: 3})
	s.RecordChunk(ChunkRecord{Block: "block_1_merged", Lanes: "a|a|a|a", Attempts: 100, Relaxed: true})

	if s.Chunks != 3 {
		t.Errorf("Chunks = %d, want 3", s.Chunks)
	}
	if s.Cars != 3 {
		t.Errorf("Cars = %d, want 3", s.Cars)
	}
	if s.Clouds != 1 {
		t.Errorf("Clouds = %d, want 1", s.Clouds)
	}
	if s.Attempts != 104 {
		t.Errorf("Attempts = %d, want 104", s.Attempts)
	}
	if s.Relaxed != 1 {
		t.Errorf("Relaxed = %d, want 1", s.Relaxed)
	}
	if s.BlockCounts["block_1_merged"] != 2 {
		t.Errorf("BlockCounts[block_1_merged] = %d, want 2", s.BlockCounts["block_1_merged"])
	}
	if s.LaneCounts["a"] != 10 || s.LaneCounts["b"] != 2 {
		t.Errorf("LaneCounts = %v, want a:10 b:2", s.LaneCounts)
	}
}

func TestGenerationStatsFinish(t *testing.T) {
	s := NewGenerationStats(2)
	for _, mobs := range []int{0, 1, 2, 3} {
		s.RecordChunk(ChunkRecord{Cars: mobs, Lanes: "a|a|b|b"})
	}
	s.Finish(5*time.Millisecond, map[string]float64{"a": 0.5, "b": 0.5})

	if math.Abs(s.MobsMean-1.5) > 1e-9 {
		t.Errorf("MobsMean = %v, want 1.5", s.MobsMean)
	}
	// Sample standard deviation of 0..3.
	if want := math.Sqrt(5.0 / 3.0); math.Abs(s.MobsStd-want) > 1e-9 {
		t.Errorf("MobsStd = %v, want %v", s.MobsStd, want)
	}
	if math.Abs(s.MobsP90-2.7) > 1e-9 {
		t.Errorf("MobsP90 = %v, want 2.7", s.MobsP90)
	}
	if s.LaneChi2 != 0 {
		t.Errorf("LaneChi2 = %v, want 0 for an exact match", s.LaneChi2)
	}
	if s.Duration != 5*time.Millisecond {
		t.Errorf("Duration = %v, want 5ms", s.Duration)
	}
}

func TestGenerationStatsFinishSingleChunk(t *testing.T) {
	s := NewGenerationStats(1)
	s.RecordChunk(ChunkRecord{Cars: 2, Clouds: 1})
	s.Finish(0, nil)

	if s.MobsMean != 3 {
		t.Errorf("MobsMean = %v, want 3", s.MobsMean)
	}
	if s.MobsStd != 0 {
		t.Errorf("MobsStd = %v, want 0", s.MobsStd)
	}
	if math.IsNaN(s.LaneChi2) {
		t.Error("LaneChi2 is NaN")
	}
}

func TestLaneChiSquare(t *testing.T) {
	prob := map[string]float64{
		"Road_Lane_01_fixed": 10.0 / 15.0,
		"Road_Lane_03_fixed": 5.0 / 15.0,
	}
	tests := []struct {
		name   string
		counts map[string]int
		want   float64
	}{
		{"exact", map[string]int{"Road_Lane_01_fixed": 20, "Road_Lane_03_fixed": 10}, 0},
		// (15-20)^2/20 + (15-10)^2/10
		{"uniform", map[string]int{"Road_Lane_01_fixed": 15, "Road_Lane_03_fixed": 15}, 3.75},
		{"no draws", map[string]int{}, 0},
		{"unknown names ignored", map[string]int{"Road_Lane_01_fixed": 20, "Road_Lane_03_fixed": 10, "other": 7}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := laneChiSquare(tt.counts, prob)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("laneChiSquare() = %v, want %v", got, tt.want)
			}
		})
	}
}
