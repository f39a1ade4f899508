package lifecycle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/baldhumanity/roombots/config"
)

// Algorithm types.
type AlgorithmType int

const (
	AlgorithmNEAT AlgorithmType = iota
	AlgorithmSplineNEAT
	AlgorithmCPG
	AlgorithmPower
)

func (a AlgorithmType) String() string {
	switch a {
	case AlgorithmNEAT:
		return "NEAT"
	case AlgorithmSplineNEAT:
		return "SPLINENEAT"
	case AlgorithmCPG:
		return "CPG"
	case AlgorithmPower:
		return "POWER"
	default:
		return "AlgorithmType(" + strconv.Itoa(int(a)) + ")"
	}
}

// ParseAlgorithm maps a configured name to an algorithm. CPG is recognised
// but cannot run.
func ParseAlgorithm(name string) (AlgorithmType, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "NEAT", "HYPERNEAT":
		return AlgorithmNEAT, nil
	case "SPLINENEAT":
		return AlgorithmSplineNEAT, nil
	case "POWER", "RL_POWER":
		return AlgorithmPower, nil
	case "CPG":
		return AlgorithmCPG, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, name)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// MatingPolicy decides who picks mates.
type MatingPolicy int

const (
	MatingByEvolver MatingPolicy = iota
	MatingByOrganisms
)

func (m MatingPolicy) String() string {
	if m == MatingByOrganisms {
		return "ORGANISMS"
	}
	return "EVOLVER"
}

func ParseMatingPolicy(name string) (MatingPolicy, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "EVOLVER":
		return MatingByEvolver, nil
	case "ORGANISMS":
		return MatingByOrganisms, nil
	default:
		return 0, fmt.Errorf("%w: mating %q", ErrUnknownPolicy, name)
	}
}

// DeathPolicy decides when a mature organism dies.
type DeathPolicy int

const (
	DeathByEvolver DeathPolicy = iota
	DeathByTimeToLive
)

func (d DeathPolicy) String() string {
	if d == DeathByTimeToLive {
		return "TIME_TO_LIVE"
	}
	return "EVOLVER"
}

func ParseDeathPolicy(name string) (DeathPolicy, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "EVOLVER":
		return DeathByEvolver, nil
	case "TIME_TO_LIVE", "TTL":
		return DeathByTimeToLive, nil
	default:
		return 0, fmt.Errorf("%w: death %q", ErrUnknownPolicy, name)
	}
}

// ModuleConfig describes one module of an organism.
type ModuleConfig struct {
	Name string `ini:"name" yaml:"name"`
	// Index is the module's slot in the organism's angle table.
	Index        int  `ini:"index" yaml:"index"`
	Root         bool `ini:"root" yaml:"root"`
	OrganismSize int  `ini:"modules" yaml:"modules"`
	Motors       int  `ini:"motors" yaml:"motors"`
}

// AlgorithmConfig selects the learning algorithm and the length of infancy.
type AlgorithmConfig struct {
	Type        string `ini:"type" yaml:"type"`
	Evaluations int    `ini:"evaluations" yaml:"evaluations"`
	// Durations are in ticks.
	InfancyDuration  int     `ini:"infancy_duration" yaml:"infancy_duration"`
	MatureTimeToLive int     `ini:"mature_time_to_live" yaml:"mature_time_to_live"`
	AngularVelocity  float64 `ini:"angular_velocity" yaml:"angular_velocity"`
	Seed             int64   `ini:"seed" yaml:"seed"`
}

// EvolutionConfig holds the mating and death policies.
type EvolutionConfig struct {
	Mating            string  `ini:"mating" yaml:"mating"`
	Death             string  `ini:"death" yaml:"death"`
	ParentSelection   string  `ini:"parent_selection" yaml:"parent_selection"`
	FertilityDistance float64 `ini:"fertility_distance" yaml:"fertility_distance"`
	CenterX           float64 `ini:"center_x" yaml:"center_x"`
	CenterZ           float64 `ini:"center_z" yaml:"center_z"`
	CheckCylinder     bool    `ini:"check_cylinder" yaml:"check_cylinder"`
	CylinderRadius    float64 `ini:"cylinder_radius" yaml:"cylinder_radius"`
	// Planar ignores height when measuring displacement.
	Planar bool `ini:"planar" yaml:"planar"`
}

// TimingConfig holds every interval and window, in ticks.
type TimingConfig struct {
	TimeStepMS int `ini:"time_step_ms" yaml:"time_step_ms"`

	FitnessInterval       int `ini:"fitness_interval" yaml:"fitness_interval"`
	EvolverUpdateInterval int `ini:"evolver_update_interval" yaml:"evolver_update_interval"`
	SendGenomeInterval    int `ini:"send_genome_interval" yaml:"send_genome_interval"`
	SpreadInterval        int `ini:"spread_interval" yaml:"spread_interval"`
	MatingInterval        int `ini:"mating_interval" yaml:"mating_interval"`

	LockTicks          int `ini:"lock_ticks" yaml:"lock_ticks"`
	ProblemListenTicks int `ini:"problem_listen_ticks" yaml:"problem_listen_ticks"`
	WaitTicks          int `ini:"wait_ticks" yaml:"wait_ticks"`
	SettleTicks        int `ini:"settle_ticks" yaml:"settle_ticks"`
	PositionLogPeriod  int `ini:"position_log_period" yaml:"position_log_period"`
}

// ChannelConfig holds the radio channel ids.
type ChannelConfig struct {
	Evolver  int `ini:"evolver" yaml:"evolver"`
	Death    int `ini:"death" yaml:"death"`
	Clinic   int `ini:"clinic" yaml:"clinic"`
	Modifier int `ini:"modifier" yaml:"modifier"`
	Genome   int `ini:"genome" yaml:"genome"`
}

// AngleChannels returns the channels an organism's modules exchange angles
// on: non-root modules send on up and the root broadcasts on down.
func (c ChannelConfig) AngleChannels(organismID int) (up, down int) {
	return organismID, c.Evolver - 1 - organismID
}

// OrganismConfig carries the genomes the organism was built from.
type OrganismConfig struct {
	Genome string `ini:"genome" yaml:"genome"`
	// Mind is a mind genome array; empty lets the algorithm draw one.
	Mind string `ini:"mind" yaml:"mind"`
}

// Config is everything a module controller reads at start.
type Config struct {
	Module    ModuleConfig
	Algorithm AlgorithmConfig
	Evolution EvolutionConfig
	Timing    TimingConfig
	Channels  ChannelConfig
	Organism  OrganismConfig
}

// DefaultConfig returns a single-module organism with evolver-driven
// mating and death.
func DefaultConfig() Config {
	return Config{
		Module: ModuleConfig{
			Name:         "module_1",
			Root:         true,
			OrganismSize: 1,
			Motors:       3,
		},
		Algorithm: AlgorithmConfig{
			Type:             "POWER",
			Evaluations:      4,
			InfancyDuration:  400,
			MatureTimeToLive: 1000,
			AngularVelocity:  2,
		},
		Evolution: EvolutionConfig{
			Mating:            "EVOLVER",
			Death:             "EVOLVER",
			ParentSelection:   "best_two",
			FertilityDistance: 0.5,
			CylinderRadius:    2,
		},
		Timing: TimingConfig{
			TimeStepMS:            32,
			FitnessInterval:       10,
			EvolverUpdateInterval: 20,
			SendGenomeInterval:    20,
			SpreadInterval:        10,
			MatingInterval:        50,
			LockTicks:             60,
			ProblemListenTicks:    30,
			WaitTicks:             30,
			SettleTicks:           90,
			PositionLogPeriod:     50,
		},
		Channels: ChannelConfig{
			Evolver:  10000,
			Death:    10001,
			Clinic:   10002,
			Modifier: 10003,
			Genome:   10004,
		},
	}
}

// ConfigFromSource reads the [Module], [Algorithm], [Evolution], [Timing],
// [Channels] and [Organism] sections of src over DefaultConfig.
func ConfigFromSource(src config.Source) (Config, error) {
	cfg := DefaultConfig()
	sections := []struct {
		name string
		v    any
	}{
		{"Module", &cfg.Module},
		{"Algorithm", &cfg.Algorithm},
		{"Evolution", &cfg.Evolution},
		{"Timing", &cfg.Timing},
		{"Channels", &cfg.Channels},
		{"Organism", &cfg.Organism},
	}
	for _, s := range sections {
		if err := src.Decode(s.name, s.v); err != nil {
			return Config{}, fmt.Errorf("reading [%s]: %w", s.name, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration, including that the algorithm can run.
func (c Config) Validate() error {
	if _, err := ParseAlgorithm(c.Algorithm.Type); err != nil {
		return err
	}
	if _, err := ParseMatingPolicy(c.Evolution.Mating); err != nil {
		return err
	}
	if _, err := ParseDeathPolicy(c.Evolution.Death); err != nil {
		return err
	}
	if _, err := OrganismID(c.Module.Name); err != nil {
		return err
	}
	switch {
	case c.Module.OrganismSize < 1:
		return fmt.Errorf("config error: modules must be at least 1")
	case c.Module.Index < 0 || c.Module.Index >= c.Module.OrganismSize:
		return fmt.Errorf("config error: module index %d outside organism of %d", c.Module.Index, c.Module.OrganismSize)
	case c.Module.Motors < 0:
		return fmt.Errorf("config error: motors cannot be negative")
	case c.Algorithm.Evaluations < 1:
		return fmt.Errorf("config error: evaluations must be at least 1")
	case c.Algorithm.InfancyDuration < 0 || c.Algorithm.MatureTimeToLive < 0:
		return fmt.Errorf("config error: durations cannot be negative")
	case c.Timing.TimeStepMS <= 0:
		return fmt.Errorf("config error: time_step_ms must be positive")
	}
	return nil
}

// OrganismID reads the organism id from a module name: the digits after the
// first underscore, so "module_12" and "module_12_3" both belong to
// organism 12.
func OrganismID(name string) (int, error) {
	_, suffix, ok := strings.Cut(name, "_")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrBadModuleName, name)
	}
	end := strings.IndexFunc(suffix, func(r rune) bool { return r < '0' || r > '9' })
	if end >= 0 {
		suffix = suffix[:end]
	}
	id, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadModuleName, name)
	}
	return id, nil
}
