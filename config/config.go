// Package config provides configuration loading and access for the city generator.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Neighbourhood modes for grid adjacency.
const (
	NeighborhoodMoore  = "moore"  // all eight surrounding cells
	NeighborhoodSparse = "sparse" // up, down, left, right and the (-1,-1) diagonal
)

// Spawn profiles.
const (
	ProfileDesktop = "desktop"
	ProfileMobile  = "mobile"
)

// Config holds all generator configuration parameters.
type Config struct {
	Seed      int64           `yaml:"seed"`
	Grid      GridConfig      `yaml:"grid"`
	Render    RenderConfig    `yaml:"render"`
	Spawn     SpawnConfig     `yaml:"spawn"`
	Traffic   TrafficConfig   `yaml:"traffic"`
	Clouds    CloudsConfig    `yaml:"clouds"`
	Camera    CameraConfig    `yaml:"camera"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Assets    AssetsConfig    `yaml:"assets"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// GridConfig holds the chunk grid layout.
type GridConfig struct {
	TableSize           int     `yaml:"table_size"`            // Chunks per side of the toroidal grid
	ChunkSpan           float64 `yaml:"chunk_span"`            // World units per chunk
	Neighborhood        string  `yaml:"neighborhood"`          // "moore" or "sparse"
	RetryLimit          int     `yaml:"retry_limit"`           // Block draws per cell before the fallback
	StadiumBlock        string  `yaml:"stadium_block"`         // Block name placed at most once per grid
	RandomBlockRotation bool    `yaml:"random_block_rotation"` // Quarter-turn yaw on every block
}

// RenderConfig holds the material flags shared with the renderer.
type RenderConfig struct {
	ShadowMapType string `yaml:"shadow_map_type"`
}

// SpawnConfig holds entity spawn probabilities.
type SpawnConfig struct {
	Profile          string  `yaml:"profile"`            // "desktop" or "mobile"
	CarChanceDesktop float64 `yaml:"car_chance_desktop"` // Per-lane car chance on full profile
	CarChanceMobile  float64 `yaml:"car_chance_mobile"`  // Per-lane car chance on constrained profile
	CloudThreshold   float64 `yaml:"cloud_threshold"`    // Cloud spawns when the roll is above this
}

// TrafficConfig holds car controller tuning.
type TrafficConfig struct {
	LaneLength    float64 `yaml:"lane_length"`    // Length of one lane segment
	CruiseSpeed   float64 `yaml:"cruise_speed"`   // Units per second
	SpeedJitter   float64 `yaml:"speed_jitter"`   // +/- fraction applied to cruise speed at spawn
	Accel         float64 `yaml:"accel"`          // Speed change per second
	BrakeDistance float64 `yaml:"brake_distance"` // Cars closer than this ahead cause braking
	BrakeFactor   float64 `yaml:"brake_factor"`   // Fraction of cruise speed while braking
	LaneTolerance float64 `yaml:"lane_tolerance"` // Lateral distance still counted as same lane
}

// CloudsConfig holds cloud drift parameters.
type CloudsConfig struct {
	Altitude   float64 `yaml:"altitude"`
	DriftSpeed float64 `yaml:"drift_speed"`
}

// CameraConfig holds the fly-through focus path.
type CameraConfig struct {
	Height     float64 `yaml:"height"`
	HeadingDeg float64 `yaml:"heading_deg"` // 0 travels towards -Z
	Speed      float64 `yaml:"speed"`       // Units per second
	ViewDist   float64 `yaml:"view_dist"`   // Mobs within this ground distance count as visible
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"` // Frames averaged by the perf collector
	LogEvery   int `yaml:"log_every"`   // Frames between perf log lines (0 = never)
}

// AssetsConfig lists the prototypes handed to the generator.
type AssetsConfig struct {
	Blocks        []AssetEntry `yaml:"blocks"`
	Lanes         []AssetEntry `yaml:"lanes"`
	Intersections []AssetEntry `yaml:"intersections"`
	Cars          []AssetEntry `yaml:"cars"`
	Clouds        []AssetEntry `yaml:"clouds"`
}

// AssetEntry describes one prototype.
type AssetEntry struct {
	Name   string    `yaml:"name"`
	Weight float64   `yaml:"weight,omitempty"` // Lanes only; 0 excludes the entry
	PBR    bool      `yaml:"pbr"`              // Physically based material
	Size   []float64 `yaml:"size,flow"`        // Placeholder box extents (x, y, z)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	CarChance  float64 // Chance for the active spawn profile
	WorldSpan  float64 // TableSize * ChunkSpan
	LaneWeight map[string]float64
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	if err := validateDocument(defaultsYAML); err != nil {
		return nil, fmt.Errorf("validating embedded defaults: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := cfg.Overlay(data); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Overlay merges a YAML document into the config.
// Only fields present in the document are overwritten; lists are replaced wholesale.
func (c *Config) Overlay(data []byte) error {
	if err := validateDocument(data); err != nil {
		return fmt.Errorf("validating config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// validate checks cross-field constraints the schema cannot express.
func (c *Config) validate() error {
	if c.Grid.TableSize < 1 {
		return fmt.Errorf("grid.table_size must be >= 1, got %d", c.Grid.TableSize)
	}
	if c.Grid.RetryLimit < 1 {
		return fmt.Errorf("grid.retry_limit must be >= 1, got %d", c.Grid.RetryLimit)
	}
	switch c.Grid.Neighborhood {
	case NeighborhoodMoore, NeighborhoodSparse:
	default:
		return fmt.Errorf("grid.neighborhood: unknown mode %q", c.Grid.Neighborhood)
	}
	switch c.Spawn.Profile {
	case ProfileDesktop, ProfileMobile:
	default:
		return fmt.Errorf("spawn.profile: unknown profile %q", c.Spawn.Profile)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.CarChance = c.Spawn.CarChanceDesktop
	if c.Spawn.Profile == ProfileMobile {
		c.Derived.CarChance = c.Spawn.CarChanceMobile
	}
	c.Derived.WorldSpan = float64(c.Grid.TableSize) * c.Grid.ChunkSpan

	c.Derived.LaneWeight = make(map[string]float64, len(c.Assets.Lanes))
	for _, lane := range c.Assets.Lanes {
		c.Derived.LaneWeight[lane.Name] += lane.Weight
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
