// Package config loads the DCA simulator's tunables from a YAML file and
// applies CLI flag overrides on top of it.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full set of simulation, agent and ambient-stack tunables.
// Field names mirror the long-form flags in spec section 6.
type Config struct {
	CallDur     float64 `mapstructure:"call_dur"`
	HoffCallDur float64 `mapstructure:"hoff_call_dur"`
	CallRate    float64 `mapstructure:"call_rate"`
	PHandoff    float64 `mapstructure:"p_handoff"`
	NEvents     int     `mapstructure:"n_events"`
	LogIter     int     `mapstructure:"log_iter"`
	Alpha       float64 `mapstructure:"alpha"`
	AlphaAvg    float64 `mapstructure:"alpha_avg"`
	AlphaGrad   float64 `mapstructure:"alpha_grad"`
	VerifyGrid  bool    `mapstructure:"verify_grid"`
	Verbose     int     `mapstructure:"verbose"`

	// Dashboard, DashboardAddr and LogLevel are ambient-stack additions with
	// no bearing on simulation correctness.
	Dashboard     bool   `mapstructure:"dashboard"`
	DashboardAddr string `mapstructure:"dashboard_addr"`
	LogLevel      string `mapstructure:"log_level"`
}

// Defaults returns the built-in values from spec section 6, used both as the
// viper defaults and as the zero-config fallback when no file is given.
func Defaults() Config {
	return Config{
		CallDur:       3,
		HoffCallDur:   1,
		CallRate:      200,
		PHandoff:      0.0,
		NEvents:       470000,
		LogIter:       5000,
		Alpha:         2.52e-6,
		AlphaAvg:      0.06,
		AlphaGrad:     5e-6,
		VerifyGrid:    false,
		Verbose:       0,
		Dashboard:     false,
		DashboardAddr: ":7070",
		LogLevel:      "info",
	}
}

// Load reads path (if non-empty and present) over the built-in defaults,
// then binds flags so that any flag the caller actually set on the command
// line takes precedence over both the file and the defaults. An empty path
// is not an error -- it just means "defaults plus flags".
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	vp := viper.New()
	def := Defaults()
	vp.SetDefault("call_dur", def.CallDur)
	vp.SetDefault("hoff_call_dur", def.HoffCallDur)
	vp.SetDefault("call_rate", def.CallRate)
	vp.SetDefault("p_handoff", def.PHandoff)
	vp.SetDefault("n_events", def.NEvents)
	vp.SetDefault("log_iter", def.LogIter)
	vp.SetDefault("alpha", def.Alpha)
	vp.SetDefault("alpha_avg", def.AlphaAvg)
	vp.SetDefault("alpha_grad", def.AlphaGrad)
	vp.SetDefault("verify_grid", def.VerifyGrid)
	vp.SetDefault("verbose", def.Verbose)
	vp.SetDefault("dashboard", def.Dashboard)
	vp.SetDefault("dashboard_addr", def.DashboardAddr)
	vp.SetDefault("log_level", def.LogLevel)

	if path != "" {
		vp.SetConfigFile(path)
		vp.SetConfigType("yaml")
		vp.AddConfigPath(filepath.Dir(path))
		if err := vp.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return Config{}, err
			}
		}
	}

	if flags != nil {
		if err := vp.BindPFlags(flags); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{}
	if err := vp.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
