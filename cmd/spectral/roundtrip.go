// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/spectral/comm"
	"github.com/katalvlaran/spectral/ndarray"
	"github.com/katalvlaran/spectral/space"
	"github.com/katalvlaran/spectral/telemetry"
)

func newRoundtripCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "roundtrip",
		Short: "Run forward, backward and forward again and report the largest deviation",
		Long: `roundtrip samples a smooth field on the physical grid, transforms it to
spectral space and back, and reports max |F(B(F u)) - F u| over all ranks.
With --bc the Dirichlet data is lifted into the spectrum and the physical
boundary rows are checked against it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.roundtrip(cmd.OutOrStdout())
		},
	}
}

type roundtripResult struct {
	transformErr float64
	boundaryErr  float64
	lifted       bool
	elapsed      time.Duration
}

func (a *app) roundtrip(out io.Writer) error {
	mode, err := a.cfg.mode()
	if err != nil {
		return err
	}
	var (
		obs telemetry.Observer = telemetry.Nop{}
		reg *prometheus.Registry
	)
	if a.cfg.Metrics {
		reg = prometheus.NewRegistry()
		obs = telemetry.NewPrometheus(reg)
	}

	var res roundtripResult
	start := time.Now()
	err = comm.Run(a.cfg.Ranks, func(c comm.Comm) error {
		s, err := a.newSpace(c, obs)
		if err != nil {
			return err
		}
		defer s.Destroy()

		u := s.NewPhysical()
		sampleField(s, u)
		uh, u2, uh2 := s.NewSpectral(), s.NewPhysical(), s.NewSpectral()
		if err = s.Forward(u, uh, mode); err != nil {
			return err
		}
		if err = s.Backward(uh, u2, mode); err != nil {
			return err
		}
		if err = s.Forward(u2, uh2, mode); err != nil {
			return err
		}
		local, err := ndarray.MaxAbsDiff(uh2, uh)
		if err != nil {
			return err
		}
		transformErr, err := worldMax(c, local)
		if err != nil {
			return err
		}

		var boundaryErr float64
		bv := s.Boundary()
		lifted := a.cfg.BC.Enabled && bv != nil
		if lifted {
			if err = bv.ApplyAfter(uh, true); err != nil {
				return err
			}
			if err = s.Backward(uh, u2, mode); err != nil {
				return err
			}
			local, err = boundaryDeviation(s, u2, [2]float64{a.cfg.BC.Left, a.cfg.BC.Right})
			if err != nil {
				return err
			}
			if boundaryErr, err = worldMax(c, local); err != nil {
				return err
			}
		}
		if c.Rank() == 0 {
			res = roundtripResult{transformErr: transformErr, boundaryErr: boundaryErr, lifted: lifted}
			a.log.Debug("roundtrip finished",
				zap.Ints("shape", s.Shape()),
				zap.Float64("transformErr", transformErr))
		}

		return nil
	})
	if err != nil {
		return err
	}
	res.elapsed = time.Since(start)

	fmt.Fprintf(out, "ranks=%d shape=%v families=%v mode=%s\n", a.cfg.Ranks, a.cfg.Shape, a.cfg.Families, mode)
	fmt.Fprintf(out, "max transform error: %.3e\n", res.transformErr)
	if res.lifted {
		fmt.Fprintf(out, "max boundary error:  %.3e\n", res.boundaryErr)
	}
	fmt.Fprintf(out, "elapsed: %s\n", res.elapsed.Round(time.Microsecond))
	if reg != nil {
		return printMetrics(out, reg)
	}

	return nil
}

// sampleField fills u with Π_i (1 + 0.5 sin((i+1) x_i)) on the local mesh.
func sampleField(s *space.TensorProductSpace, u *ndarray.Array) {
	x := s.LocalMesh()
	shape := u.Shape()
	idx := make([]int, len(shape))
	data := u.Data()
	for f := range data {
		v := 1.0
		for i, j := range idx {
			v *= 1 + 0.5*math.Sin(float64(i+1)*x[i][j])
		}
		data[f] = complex(v, 0)
		for i := len(idx) - 1; i >= 0; i-- {
			if idx[i]++; idx[i] < shape[i] {
				break
			}
			idx[i] = 0
		}
	}
}

// boundaryDeviation returns the local max |u - bc| over the first and last
// physical rows of the Dirichlet axis.
func boundaryDeviation(s *space.TensorProductSpace, u *ndarray.Array, bc [2]float64) (float64, error) {
	axis := s.Boundary().Axis()
	sl := s.LocalSlice(false)[axis]
	last := s.Shape()[axis] - 1
	var worst float64
	for j, row := range []int{0, last} {
		if row < sl.Start || row >= sl.Stop {
			continue
		}
		slab, err := u.Take(axis, row-sl.Start)
		if err != nil {
			return 0, err
		}
		for _, v := range slab.Data() {
			worst = math.Max(worst, math.Abs(real(v)-bc[j]))
		}
	}

	return worst, nil
}

// worldMax returns the maximum of v over all ranks of c. Collective.
func worldMax(c comm.Comm, v float64) (float64, error) {
	parts, err := c.Allgather([]complex128{complex(v, 0)})
	if err != nil {
		return 0, err
	}
	m := v
	for _, p := range parts {
		m = math.Max(m, real(p[0]))
	}

	return m, nil
}

func printMetrics(out io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		fmt.Fprintf(out, "metric %s: %d series\n", mf.GetName(), len(mf.GetMetric()))
	}

	return nil
}
