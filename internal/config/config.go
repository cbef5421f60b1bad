package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/bturcotte520/kilocup/internal/simulation"
)

// EnvPrefix is prepended to every environment override, e.g.
// KILOCUP_SERVER_ADDR or KILOCUP_MATCH_SEED.
const EnvPrefix = "KILOCUP"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Match     MatchConfig     `mapstructure:"match"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	LoopHz    int    `mapstructure:"loop_hz"`
	FrameHz   int    `mapstructure:"frame_hz"`
	ViewHz    int    `mapstructure:"view_hz"`
	ReplayDir string `mapstructure:"replay_dir"`
}

type TelemetryConfig struct {
	Addr      string `mapstructure:"addr"`
	URL       string `mapstructure:"url"`
	QueueSize int    `mapstructure:"queue_size"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

type MatchConfig struct {
	PitchW        float64 `mapstructure:"pitch_w"`
	PitchH        float64 `mapstructure:"pitch_h"`
	GoalHalfW     float64 `mapstructure:"goal_half_w"`
	TickMs        float64 `mapstructure:"tick_ms"`
	MaxFrameMs    float64 `mapstructure:"max_frame_ms"`
	UISampleHz    float64 `mapstructure:"ui_sample_hz"`
	DurationMs    float64 `mapstructure:"duration_ms"`
	KickoffHoldMs float64 `mapstructure:"kickoff_hold_ms"`
	// Seed 0 lets the server pick a fresh seed per match.
	Seed         int64  `mapstructure:"seed"`
	OpponentName string `mapstructure:"opponent_name"`
	OpponentCode string `mapstructure:"opponent_code"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	sim := simulation.DefaultConfig()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.loop_hz", 60)
	v.SetDefault("server.frame_hz", 30)
	v.SetDefault("server.view_hz", 10)
	v.SetDefault("server.replay_dir", "")

	v.SetDefault("telemetry.addr", ":8090")
	v.SetDefault("telemetry.url", "")
	v.SetDefault("telemetry.queue_size", 256)
	v.SetDefault("telemetry.timeout_ms", 2000)

	v.SetDefault("match.pitch_w", sim.PitchW)
	v.SetDefault("match.pitch_h", sim.PitchH)
	v.SetDefault("match.goal_half_w", sim.GoalHalfW)
	v.SetDefault("match.tick_ms", sim.TickMs)
	v.SetDefault("match.max_frame_ms", sim.MaxFrameMs)
	v.SetDefault("match.ui_sample_hz", sim.UISampleHz)
	v.SetDefault("match.duration_ms", sim.MatchDurationMs)
	v.SetDefault("match.kickoff_hold_ms", sim.KickoffHoldMs)
	v.SetDefault("match.seed", 0)
	v.SetDefault("match.opponent_name", simulation.DefaultOpponent.Name)
	v.SetDefault("match.opponent_code", simulation.DefaultOpponent.Code)

	v.SetDefault("log.level", "info")
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are skipped; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads defaults, then the config file (path, or ./config.yaml when
// path is empty and the file exists), then KILOCUP_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	m := c.Match
	switch {
	case m.PitchW <= 0 || m.PitchH <= 0:
		return fmt.Errorf("invalid config: pitch %gx%g", m.PitchW, m.PitchH)
	case m.GoalHalfW <= 0 || m.GoalHalfW*2 >= m.PitchH:
		return fmt.Errorf("invalid config: goal half width %g", m.GoalHalfW)
	case m.TickMs <= 0:
		return fmt.Errorf("invalid config: tick_ms %g", m.TickMs)
	case m.MaxFrameMs < m.TickMs:
		return fmt.Errorf("invalid config: max_frame_ms %g below tick_ms", m.MaxFrameMs)
	case m.DurationMs <= 0:
		return fmt.Errorf("invalid config: duration_ms %g", m.DurationMs)
	case c.Server.LoopHz <= 0 || c.Server.FrameHz <= 0 || c.Server.ViewHz <= 0:
		return fmt.Errorf("invalid config: server rates %d/%d/%d", c.Server.LoopHz, c.Server.FrameHz, c.Server.ViewHz)
	}
	return nil
}

// SimulationConfig maps the match section onto the engine config.
func (c *Config) SimulationConfig() simulation.Config {
	m := c.Match
	return simulation.Config{
		PitchW:          m.PitchW,
		PitchH:          m.PitchH,
		GoalHalfW:       m.GoalHalfW,
		TickMs:          m.TickMs,
		MaxFrameMs:      m.MaxFrameMs,
		UISampleHz:      m.UISampleHz,
		MatchDurationMs: m.DurationMs,
		KickoffHoldMs:   m.KickoffHoldMs,
		Seed:            m.Seed,
	}
}

// Opponent is the default away side when a client does not pick one.
func (c *Config) Opponent() simulation.TeamIdentity {
	return simulation.NewOpponent(c.Match.OpponentName, c.Match.OpponentCode)
}
