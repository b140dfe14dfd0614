// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/katalvlaran/spectral/basis"
)

// envPrefix scopes environment overrides (SPECTRAL_RANKS, SPECTRAL_BC_LEFT, ...).
const envPrefix = "SPECTRAL"

var errConfig = errors.New("spectral: invalid configuration")

type bcConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Left    float64 `mapstructure:"left"`
	Right   float64 `mapstructure:"right"`
}

type config struct {
	Ranks    int      `mapstructure:"ranks"`
	Shape    []int    `mapstructure:"shape"`
	Families []string `mapstructure:"families"`
	Padding  float64  `mapstructure:"padding"`
	Axes     []int    `mapstructure:"axes"`
	Slab     bool     `mapstructure:"slab"`
	Mode     string   `mapstructure:"mode"`
	BC       bcConfig `mapstructure:"bc"`
	Metrics  bool     `mapstructure:"metrics"`
	LogLevel string   `mapstructure:"log-level"`
}

// bindFlags registers the shared flags and binds them to v under their config keys.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.Int("ranks", 1, "number of in-process ranks")
	fs.IntSlice("shape", []int{8, 8, 8}, "number of modes per axis")
	fs.StringSlice("families", []string{"C2C"}, "basis per axis: C2C, R2C, legendre, dirichlet (one value applies to all)")
	fs.Float64("padding", 1, "padding factor for Fourier axes")
	fs.IntSlice("axes", nil, "axis order, last entry transformed first")
	fs.Bool("slab", false, "distribute only the last-transformed axis")
	fs.String("mode", "fast", "transform path: fast or direct")
	fs.Bool("bc", false, "lift Dirichlet data on the dirichlet axis")
	fs.Float64("bc-left", 0, "Dirichlet value at the left end")
	fs.Float64("bc-right", 0, "Dirichlet value at the right end")
	fs.Bool("metrics", false, "record Prometheus metrics and print a summary")
	fs.String("log-level", "warn", "zap log level")

	keys := map[string]string{"bc": "bc.enabled", "bc-left": "bc.left", "bc-right": "bc.right"}
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		key := f.Name
		if k, ok := keys[key]; ok {
			key = k
		}
		if e := v.BindPFlag(key, f); e != nil && err == nil {
			err = e
		}
	})

	return err
}

// loadConfig merges the YAML file (when set), environment and flags.
func loadConfig(v *viper.Viper, file string) (config, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("read %s: %w", file, err)
		}
	}
	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, fmt.Errorf("decode configuration: %w", err)
	}

	return cfg, cfg.validate()
}

func (c config) validate() error {
	switch {
	case c.Ranks < 1:
		return fmt.Errorf("ranks %d: %w", c.Ranks, errConfig)
	case len(c.Shape) == 0:
		return fmt.Errorf("empty shape: %w", errConfig)
	case len(c.Families) != 1 && len(c.Families) != len(c.Shape):
		return fmt.Errorf("%d families for %d axes: %w", len(c.Families), len(c.Shape), errConfig)
	case c.Padding < 1:
		return fmt.Errorf("padding %g: %w", c.Padding, errConfig)
	}
	if _, err := c.mode(); err != nil {
		return err
	}

	return nil
}

func (c config) mode() (basis.Mode, error) {
	for _, m := range []basis.Mode{basis.Fast, basis.Direct} {
		if strings.EqualFold(c.Mode, m.String()) {
			return m, nil
		}
	}

	return basis.Fast, fmt.Errorf("mode %q: %w", c.Mode, errConfig)
}

func (c config) family(axis int) string {
	if len(c.Families) == 1 {
		return strings.ToLower(c.Families[0])
	}

	return strings.ToLower(c.Families[axis])
}

// bases builds one basis per axis. Padding applies to Fourier axes only.
func (c config) bases() ([]basis.Basis, error) {
	out := make([]basis.Basis, len(c.Shape))
	for i, n := range c.Shape {
		var (
			b   basis.Basis
			err error
		)
		var opts []basis.Option
		if c.Padding != 1 {
			opts = append(opts, basis.WithPadding(c.Padding))
		}
		switch f := c.family(i); f {
		case "c2c":
			b, err = basis.NewC2C(n, opts...)
		case "r2c":
			b, err = basis.NewR2C(n, opts...)
		case "legendre":
			b, err = basis.NewLegendre(n)
		case "dirichlet":
			b, err = basis.NewDirichlet(n)
		default:
			return nil, fmt.Errorf("axis %d: unknown family %q: %w", i, f, errConfig)
		}
		if err != nil {
			return nil, fmt.Errorf("axis %d: %w", i, err)
		}
		out[i] = b
	}

	return out, nil
}

// newLogger builds a console logger at the configured level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, errConfig)
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.DisableStacktrace = true

	return zc.Build()
}
