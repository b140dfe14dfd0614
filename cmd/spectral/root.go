// SPDX-License-Identifier: MIT

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/katalvlaran/spectral/comm"
	"github.com/katalvlaran/spectral/pencil"
	"github.com/katalvlaran/spectral/space"
	"github.com/katalvlaran/spectral/telemetry"
)

// app carries the resolved configuration shared by all subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config
	log     *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New(), log: zap.NewNop()}
	cmd := &cobra.Command{
		Use:           "spectral",
		Short:         "Distributed tensor-product spectral transforms on in-process ranks",
		SilenceUsage:  true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}
	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "YAML configuration file")
	if err := bindFlags(a.v, cmd.PersistentFlags()); err != nil {
		panic(err)
	}
	cmd.AddCommand(newRoundtripCommand(a), newInfoCommand(a))

	return cmd
}

func (a *app) setup() error {
	cfg, err := loadConfig(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	comm.SetLogger(log.Named("comm"))
	pencil.SetLogger(log.Named("pencil"))
	space.SetLogger(log.Named("space"))
	log.Debug("configuration loaded",
		zap.String("file", a.cfgFile),
		zap.Int("ranks", cfg.Ranks),
		zap.Ints("shape", cfg.Shape),
		zap.Strings("families", cfg.Families))

	return nil
}

// newSpace builds the configured space on c. Collective.
func (a *app) newSpace(c comm.Comm, obs telemetry.Observer) (*space.TensorProductSpace, error) {
	bases, err := a.cfg.bases()
	if err != nil {
		return nil, err
	}
	opts := []space.Option{space.WithObserver(obs), space.WithLogger(a.log.Named("space"))}
	if len(a.cfg.Axes) > 0 {
		opts = append(opts, space.WithAxes(a.cfg.Axes...))
	}
	if a.cfg.Slab {
		opts = append(opts, space.WithSlab())
	}
	if a.cfg.BC.Enabled {
		opts = append(opts, space.WithBoundary(space.Constant(a.cfg.BC.Left), space.Constant(a.cfg.BC.Right)))
	}

	return space.NewTensorProductSpace(c, bases, opts...)
}
