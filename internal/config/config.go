package config

import (
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/mutker/lightsweep/internal/dataset"
	"codeberg.org/mutker/lightsweep/internal/errors"
	"codeberg.org/mutker/lightsweep/internal/light"
	"codeberg.org/mutker/lightsweep/internal/variation"
)

const (
	DefaultLogLevel = "info"
	envConfigVar    = "LIGHTSWEEP_CONFIG"
)

// Config holds the full measurement session configuration. Values come
// from the TOML config file, LIGHTSWEEP_* environment variables and
// command line flags, in increasing order of precedence.
type Config struct {
	LogLevel    string   `mapstructure:"log_level"`
	ExportDir   string   `mapstructure:"export_dir"`
	SessionDB   string   `mapstructure:"session_db"`
	ColorModes  []string `mapstructure:"color_modes"`
	Resume      string   `mapstructure:"resume"`
	Gzip        bool     `mapstructure:"gzip"`
	AddDatetime bool     `mapstructure:"csv_add_datetime"`
	NumLights   int      `mapstructure:"num_lights"`
	DummyLoad   bool     `mapstructure:"dummy_load"`
	StandbyOnly bool     `mapstructure:"standby"`
	SampleCount int      `mapstructure:"sample_count"`
	MaxNudges   int      `mapstructure:"max_nudges"`

	LightDriver string  `mapstructure:"light_driver"`
	MeterDriver string  `mapstructure:"meter_driver"`
	SimWatts    float64 `mapstructure:"sim_watts"`
	SimModelID  string  `mapstructure:"sim_model_id"`
	SimMinMired float64 `mapstructure:"sim_min_mired"`
	SimMaxMired float64 `mapstructure:"sim_max_mired"`

	Sleep SleepConfig `mapstructure:"sleep"`
	Sweep SweepConfig `mapstructure:"sweep"`
}

// SleepConfig holds every settle and wait duration used by the sweep
type SleepConfig struct {
	Initial    time.Duration `mapstructure:"initial"`
	Standby    time.Duration `mapstructure:"standby"`
	Step       time.Duration `mapstructure:"step"`
	Sample     time.Duration `mapstructure:"sample"`
	CT         time.Duration `mapstructure:"ct"`
	Sat        time.Duration `mapstructure:"sat"`
	Hue        time.Duration `mapstructure:"hue"`
	Nudge      time.Duration `mapstructure:"nudge"`
	NudgePulse time.Duration `mapstructure:"nudge_pulse"`
}

// SweepConfig holds the variation space range and step parameters
type SweepConfig struct {
	MinBrightness int `mapstructure:"min_brightness"`
	MaxBrightness int `mapstructure:"max_brightness"`
	BriSteps      int `mapstructure:"bri_steps"`
	HSBriSteps    int `mapstructure:"hs_bri_steps"`
	HSSatSteps    int `mapstructure:"hs_sat_steps"`
	HSHueSteps    int `mapstructure:"hs_hue_steps"`
	MinSat        int `mapstructure:"min_sat"`
	MaxSat        int `mapstructure:"max_sat"`
	MinHue        int `mapstructure:"min_hue"`
	MaxHue        int `mapstructure:"max_hue"`
	CTBriSteps    int `mapstructure:"ct_bri_steps"`
	CTMiredSteps  int `mapstructure:"ct_mired_steps"`
}

// Params converts the sweep configuration into generator parameters
func (c SweepConfig) Params() variation.SweepParams {
	return variation.SweepParams{
		MinBrightness: c.MinBrightness,
		MaxBrightness: c.MaxBrightness,
		BriSteps:      c.BriSteps,
		HSBriSteps:    c.HSBriSteps,
		HSSatSteps:    c.HSSatSteps,
		HSHueSteps:    c.HSHueSteps,
		MinSat:        c.MinSat,
		MaxSat:        c.MaxSat,
		MinHue:        c.MinHue,
		MaxHue:        c.MaxHue,
		CTBriSteps:    c.CTBriSteps,
		CTMiredSteps:  c.CTMiredSteps,
	}
}

// ResumePreference returns the configured resume tri-state
func (c *Config) ResumePreference() dataset.ResumePreference {
	return dataset.ResumePreference(c.Resume)
}

// Modes returns the configured color modes
func (c *Config) Modes() []light.ColorMode {
	modes := make([]light.ColorMode, 0, len(c.ColorModes))
	for _, m := range c.ColorModes {
		modes = append(modes, light.ColorMode(m))
	}

	return modes
}

// Load reads configuration from file, environment and the given command
// line arguments (typically os.Args[1:]).
func Load(args ...string) (*Config, error) {
	v := viper.New()

	fs := pflag.NewFlagSet("lightsweep", pflag.ContinueOnError)
	fs.String("config", "", "Path to configuration file")
	fs.String("log-level", "", "Log level (debug, info, warn, error)")
	fs.String("resume", "", "Resume preference (ask, always, never)")
	fs.Bool("standby", false, "Only measure standby power")
	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(errors.ErrBindFlags, err)
	}

	setDefaults(v)

	configPath, _ := fs.GetString("config")
	if configPath == "" {
		configPath = os.Getenv(envConfigVar)
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(errors.ErrReadConfig, err).
				WithMessage("Failed to read config file")
		}
	} else {
		v.SetConfigName("lightsweep")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.Wrap(errors.ErrReadConfig, err).
					WithMessage("Failed to read config file")
			}
		}
	}

	v.SetEnvPrefix("LIGHTSWEEP")
	v.AutomaticEnv()

	bindFlag(v, fs, "log_level", "log-level")
	bindFlag(v, fs, "resume", "resume")
	bindFlag(v, fs, "standby", "standby")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func bindFlag(v *viper.Viper, fs *pflag.FlagSet, key, flagName string) {
	if flag := fs.Lookup(flagName); flag != nil && flag.Changed {
		v.Set(key, flag.Value.String())
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("export_dir", "export")
	v.SetDefault("session_db", "lightsweep.db")
	v.SetDefault("color_modes", []string{string(light.ModeBrightness)})
	v.SetDefault("resume", string(dataset.ResumeAsk))
	v.SetDefault("gzip", true)
	v.SetDefault("csv_add_datetime", false)
	v.SetDefault("num_lights", 1)
	v.SetDefault("dummy_load", false)
	v.SetDefault("standby", false)
	v.SetDefault("sample_count", 1)
	v.SetDefault("max_nudges", 3)

	v.SetDefault("light_driver", "sim")
	v.SetDefault("meter_driver", "sim")
	v.SetDefault("sim_watts", 10.0)
	v.SetDefault("sim_model_id", "SIM001")
	v.SetDefault("sim_min_mired", 153)
	v.SetDefault("sim_max_mired", 500)

	v.SetDefault("sleep.initial", "10s")
	v.SetDefault("sleep.standby", "20s")
	v.SetDefault("sleep.step", "2s")
	v.SetDefault("sleep.sample", "1s")
	v.SetDefault("sleep.ct", "6s")
	v.SetDefault("sleep.sat", "10s")
	v.SetDefault("sleep.hue", "10s")
	v.SetDefault("sleep.nudge", "10s")
	v.SetDefault("sleep.nudge_pulse", "3s")

	v.SetDefault("sweep.min_brightness", 1)
	v.SetDefault("sweep.max_brightness", 255)
	v.SetDefault("sweep.bri_steps", 3)
	v.SetDefault("sweep.hs_bri_steps", 10)
	v.SetDefault("sweep.hs_sat_steps", 10)
	v.SetDefault("sweep.hs_hue_steps", 2000)
	v.SetDefault("sweep.min_sat", 1)
	v.SetDefault("sweep.max_sat", 255)
	v.SetDefault("sweep.min_hue", 1)
	v.SetDefault("sweep.max_hue", 65535)
	v.SetDefault("sweep.ct_bri_steps", 15)
	v.SetDefault("sweep.ct_mired_steps", 10)
}

// Validate checks the configuration for values the sweep cannot run with
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if !c.ResumePreference().IsValid() {
		return errors.WithData(errors.ErrInvalidConfig, c.Resume).
			WithMessage("resume must be one of ask, always, never")
	}

	if len(c.ColorModes) == 0 {
		return errors.WithMessage(errors.ErrMissingConfig, "at least one color mode is required")
	}
	for _, mode := range c.Modes() {
		if !mode.IsValid() {
			return errors.WithData(light.ErrUnsupportedMode, mode)
		}
	}

	if c.NumLights < 1 {
		return errors.WithData(errors.ErrInvalidConfig, c.NumLights).
			WithMessage("num_lights must be at least 1")
	}
	if c.SampleCount < 1 {
		return errors.WithData(errors.ErrInvalidConfig, c.SampleCount).
			WithMessage("sample_count must be at least 1")
	}
	if c.MaxNudges < 1 {
		return errors.WithData(errors.ErrInvalidConfig, c.MaxNudges).
			WithMessage("max_nudges must be at least 1")
	}

	sweep := c.Sweep
	if sweep.MinBrightness > sweep.MaxBrightness {
		return errors.WithMessage(errors.ErrInvalidConfig, "min_brightness exceeds max_brightness")
	}
	for _, step := range []int{
		sweep.BriSteps, sweep.HSBriSteps, sweep.HSSatSteps, sweep.HSHueSteps,
		sweep.CTBriSteps, sweep.CTMiredSteps,
	} {
		if step <= 0 {
			return errors.WithMessage(errors.ErrInvalidConfig, "sweep steps must be positive")
		}
	}

	return nil
}
