package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/wricardo/caravan-wars/game/engine"
	"github.com/wricardo/caravan-wars/game/world"
)

// EnvPrefix prefixes every environment variable read into Settings.
const EnvPrefix = "CARAVAN"

var ErrInvalidSettings = errors.New("invalid settings")

// Settings are the process-level options of the server and console.
type Settings struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	ScenarioDir string        `mapstructure:"scenario_dir"`
	Scenario    string        `mapstructure:"scenario"`
	Speed       float64       `mapstructure:"speed"`
	FrameRate   int           `mapstructure:"frame_rate"`
	Language    string        `mapstructure:"language"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
	Debug       bool          `mapstructure:"debug"`
}

// Defaults returns the settings used when nothing overrides them.
func Defaults() Settings {
	return Settings{
		Host:       "localhost",
		Port:       8080,
		Scenario:   world.ClassicName,
		Speed:      engine.SpeedNormal,
		FrameRate:  10,
		Language:   world.DefaultLanguage,
		SessionTTL: 2 * time.Hour,
	}
}

// LoadSettings reads settings from CARAVAN_* environment variables and,
// when path is set, from a settings file (any format viper reads).
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("host", d.Host)
	v.SetDefault("port", d.Port)
	v.SetDefault("scenario_dir", d.ScenarioDir)
	v.SetDefault("scenario", d.Scenario)
	v.SetDefault("speed", d.Speed)
	v.SetDefault("frame_rate", d.FrameRate)
	v.SetDefault("language", d.Language)
	v.SetDefault("session_ttl", d.SessionTTL)
	v.SetDefault("debug", d.Debug)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks ranges.
func (s *Settings) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidSettings, s.Port)
	}
	if s.Speed < 0 {
		return fmt.Errorf("%w: speed must be zero or positive", ErrInvalidSettings)
	}
	if s.FrameRate < 1 || s.FrameRate > 240 {
		return fmt.Errorf("%w: frame_rate %d out of range 1-240", ErrInvalidSettings, s.FrameRate)
	}
	if s.SessionTTL < 0 {
		return fmt.Errorf("%w: session_ttl must not be negative", ErrInvalidSettings)
	}
	return nil
}

// Addr is the listen address.
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// FrameInterval is the real-time loop's frame period.
func (s *Settings) FrameInterval() time.Duration {
	return time.Second / time.Duration(s.FrameRate)
}
