package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/onigiri/internal/gameover"
	"github.com/udisondev/onigiri/internal/match"
	"github.com/udisondev/onigiri/internal/model"
	"github.com/udisondev/onigiri/internal/spawn"
)

// Game holds all configuration for a puzzle session and the binary around it.
type Game struct {
	LogLevel string `yaml:"log_level"`

	// Seed for the spawn RNG; 0 means time-based.
	Seed uint64 `yaml:"seed"`

	Rules     RulesConfig       `yaml:"rules"`
	Spawn     SpawnConfig       `yaml:"spawn"`
	GameOver  gameover.Settings `yaml:"game_over"`
	Container ContainerConfig   `yaml:"container"`
	Fillings  []FillingEntry    `yaml:"fillings"`

	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Journal  JournalConfig  `yaml:"journal"`
	Autoplay AutoplayConfig `yaml:"autoplay"`
}

// RulesConfig holds scoring and merge-detection tuning.
type RulesConfig struct {
	MatchBaseScore     int           `yaml:"match_base_score"`
	ComboMultiplier    float64       `yaml:"combo_multiplier"`
	MergeCheckRadius   float64       `yaml:"merge_check_radius"`
	MergeCheckInterval time.Duration `yaml:"merge_check_interval"`
	RemovalDelay       time.Duration `yaml:"removal_delay"` // wait between merge and removal
}

// Match converts to the collector's rules.
func (r RulesConfig) Match() match.Rules {
	return match.Rules{
		MatchBaseScore:   r.MatchBaseScore,
		ComboMultiplier:  r.ComboMultiplier,
		MergeCheckRadius: r.MergeCheckRadius,
	}
}

// SpawnConfig holds selection weights and drop pacing.
type SpawnConfig struct {
	Weights        spawn.Weights `yaml:"weights"`
	MaxConsecutive int           `yaml:"max_consecutive"`
	Delays         spawn.Delays  `yaml:"delays"`
	Radii          spawn.Radii   `yaml:"radii"`
}

// ContainerConfig describes the drop area.
type ContainerConfig struct {
	MinX     float64 `yaml:"min_x"`
	MaxX     float64 `yaml:"max_x"`
	SpawnY   float64 `yaml:"spawn_y"`
	FloorY   float64 `yaml:"floor_y"`
	CellSize float64 `yaml:"cell_size"`
}

// FillingEntry is one filling in the catalog.
type FillingEntry struct {
	Name           string `yaml:"name"`
	Score          int    `yaml:"score"`
	Rarity         string `yaml:"rarity"`
	Sprite         string `yaml:"sprite"`
	FillingOSprite string `yaml:"filling_o_sprite"`
	FillingNSprite string `yaml:"filling_n_sprite"`
	FillingSound   string `yaml:"filling_sound"`
	WrappingSound  string `yaml:"wrapping_sound"`
}

// ServerConfig configures the websocket event stream.
type ServerConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.BindAddress, s.Port)
}

// JournalConfig configures the compressed event journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// AutoplayConfig configures the headless demo host.
type AutoplayConfig struct {
	Drops     int           `yaml:"drops"`      // stop after this many drops (0 = until game over)
	TickRate  time.Duration `yaml:"tick_rate"`  // simulated time per tick
	RealTime  bool          `yaml:"real_time"`  // pace ticks with a wall-clock ticker
	FallSpeed float64       `yaml:"fall_speed"` // units per second
	Fever     bool          `yaml:"fever"`
}

// Default returns Game config with the stock tuning.
func Default() Game {
	return Game{
		LogLevel: "info",
		Rules: RulesConfig{
			MatchBaseScore:     500,
			ComboMultiplier:    0.5,
			MergeCheckRadius:   0.2,
			MergeCheckInterval: 200 * time.Millisecond,
			RemovalDelay:       500 * time.Millisecond,
		},
		Spawn: SpawnConfig{
			Weights:        spawn.DefaultWeights(),
			MaxConsecutive: 2,
			Delays:         spawn.DefaultDelays(),
			Radii:          spawn.DefaultRadii(),
		},
		GameOver: gameover.DefaultSettings(),
		Container: ContainerConfig{
			MinX:     -2.5,
			MaxX:     2.5,
			SpawnY:   3.5,
			FloorY:   -4.0,
			CellSize: 1.0,
		},
		Fillings: []FillingEntry{
			{Name: "ume", Score: 0, Rarity: "common"},
			{Name: "salmon", Score: 100, Rarity: "common"},
			{Name: "tuna_mayo", Score: 200, Rarity: "rare"},
			{Name: "mentaiko", Score: 300, Rarity: "super_rare"},
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "onigiri",
			Password: "onigiri",
			DBName:   "onigiri",
			SSLMode:  "disable",
		},
		Server: ServerConfig{
			BindAddress: "127.0.0.1",
			Port:        8085,
		},
		Journal: JournalConfig{
			Path: "journal/session.jsonl.zst",
		},
		Autoplay: AutoplayConfig{
			Drops:     200,
			TickRate:  20 * time.Millisecond,
			FallSpeed: 6.0,
		},
	}
}

// Load loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (Game, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks tuning values that would break the rules engine.
func (g Game) Validate() error {
	var errs []error

	w := g.Spawn.Weights
	if w.WhiteRice < 0 || w.Nori < 0 || w.Filling < 0 {
		errs = append(errs, errors.New("spawn weights must be non-negative"))
	}
	if g.Spawn.MaxConsecutive < 1 {
		errs = append(errs, fmt.Errorf("max_consecutive must be >= 1, got %d", g.Spawn.MaxConsecutive))
	}
	if g.Rules.MergeCheckRadius < 0 {
		errs = append(errs, fmt.Errorf("merge_check_radius must be >= 0, got %v", g.Rules.MergeCheckRadius))
	}
	if g.Rules.MergeCheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("merge_check_interval must be positive, got %v", g.Rules.MergeCheckInterval))
	}
	if g.Rules.RemovalDelay < 0 {
		errs = append(errs, fmt.Errorf("removal_delay must be >= 0, got %v", g.Rules.RemovalDelay))
	}
	if g.GameOver.CheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("game_over.check_interval must be positive, got %v", g.GameOver.CheckInterval))
	}
	if g.Container.MinX >= g.Container.MaxX {
		errs = append(errs, fmt.Errorf("container min_x (%v) must be below max_x (%v)", g.Container.MinX, g.Container.MaxX))
	}
	if len(g.Fillings) == 0 {
		errs = append(errs, errors.New("at least one filling is required"))
	}

	seen := make(map[string]struct{}, len(g.Fillings))
	for i, f := range g.Fillings {
		if f.Name == "" {
			errs = append(errs, fmt.Errorf("filling #%d has no name", i))
			continue
		}
		if _, dup := seen[f.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate filling %q", f.Name))
		}
		seen[f.Name] = struct{}{}
	}

	return errors.Join(errs...)
}

// Catalog builds the filling reference data.
func (g Game) Catalog() []*model.Filling {
	out := make([]*model.Filling, 0, len(g.Fillings))
	for _, f := range g.Fillings {
		out = append(out, &model.Filling{
			Name:           f.Name,
			Score:          f.Score,
			Rarity:         model.ParseRarity(f.Rarity),
			Sprite:         f.Sprite,
			FillingOSprite: f.FillingOSprite,
			FillingNSprite: f.FillingNSprite,
			FillingSound:   f.FillingSound,
			WrappingSound:  f.WrappingSound,
		})
	}
	return out
}
