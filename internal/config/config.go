package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/limaJavier/timetabler/pkg/model"
	"github.com/limaJavier/timetabler/pkg/solver"
	"github.com/spf13/viper"
)

const EnvPrefix = "TIMETABLER"

// Config holds the solver settings and the weekly period grid. Priority: environment > file > defaults.
type Config struct {
	StrictTimeBudgetSeconds  float64        `mapstructure:"strict_time_budget_seconds" validate:"gt=0"`
	RelaxedTimeBudgetSeconds float64        `mapstructure:"relaxed_time_budget_seconds" validate:"gt=0"`
	PenaltyMultiplier        float64        `mapstructure:"penalty_multiplier" validate:"gt=0"`
	Workers                  int            `mapstructure:"workers" validate:"gte=1,lte=64"`
	RelaxOnModelError        bool           `mapstructure:"relax_on_model_error"`
	Periods                  []model.Period `mapstructure:"periods" validate:"min=1,dive"`
	Log                      LogConfig      `mapstructure:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// Load reads the optional configuration file (YAML, JSON or TOML by extension) and the TIMETABLER_*
// environment, after loading a .env file when present
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error while loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error while reading config file %v: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error while decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("strict_time_budget_seconds", 60)
	v.SetDefault("relaxed_time_budget_seconds", 60)
	v.SetDefault("penalty_multiplier", 1)
	v.SetDefault("workers", 1)
	v.SetDefault("relax_on_model_error", false)
	v.SetDefault("periods", DefaultPeriods())

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func (cfg *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SolverOptions converts the configuration into orchestrator options
func (cfg *Config) SolverOptions() solver.Options {
	return solver.Options{
		StrictBudget:      seconds(cfg.StrictTimeBudgetSeconds),
		RelaxedBudget:     seconds(cfg.RelaxedTimeBudgetSeconds),
		PenaltyMultiplier: cfg.PenaltyMultiplier,
		Workers:           cfg.Workers,
		RelaxOnModelError: cfg.RelaxOnModelError,
	}
}

func seconds(value float64) time.Duration {
	return time.Duration(value * float64(time.Second))
}

var (
	dayCodes = []string{"mon", "tue", "wed", "thu", "fri", "sat"}
	slots    = [][2]string{
		{"07:00", "09:55"},
		{"10:05", "12:55"},
		{"13:05", "15:55"},
		{"16:05", "18:55"},
		{"19:05", "21:55"},
	}
)

// DefaultPeriods is the Monday to Saturday grid of five daily slots, weighted from 5 (first slot) down to 1
func DefaultPeriods() []model.Period {
	periods := make([]model.Period, 0, len(dayCodes)*len(slots))
	for weekday, code := range dayCodes {
		for slot, times := range slots {
			periods = append(periods, model.Period{
				Id:      fmt.Sprintf("%v-%d", code, slot+1),
				Weekday: uint64(weekday),
				Start:   times[0],
				End:     times[1],
				Weight:  int64(len(slots) - slot),
			})
		}
	}
	return periods
}
