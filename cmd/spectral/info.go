// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/spectral/comm"
	"github.com/katalvlaran/spectral/telemetry"
)

func newInfoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the global shapes and every rank's local blocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.info(cmd.OutOrStdout())
		},
	}
}

type rankLayout struct {
	rank     int
	coords   []int
	physical []int
	spectral []int
}

func (a *app) info(out io.Writer) error {
	var (
		mu      sync.Mutex
		layouts []rankLayout
		header  string
	)
	err := comm.Run(a.cfg.Ranks, func(c comm.Comm) error {
		s, err := a.newSpace(c, telemetry.Nop{})
		if err != nil {
			return err
		}
		defer s.Destroy()
		mu.Lock()
		defer mu.Unlock()
		layouts = append(layouts, rankLayout{
			rank:     c.Rank(),
			coords:   s.Grid().Coords(),
			physical: s.LocalShape(false),
			spectral: s.LocalShape(true),
		})
		if c.Rank() == 0 {
			header = fmt.Sprintf("shape=%v spectral=%v dtype=%v->%v axes=%v grid=%v",
				s.Shape(), s.SpectralShape(), s.Dtype(), s.SpectralDtype(), s.Axes(), s.Grid().Dims())
		}

		return nil
	})
	if err != nil {
		return err
	}
	sort.Slice(layouts, func(i, j int) bool { return layouts[i].rank < layouts[j].rank })
	fmt.Fprintln(out, header)
	for _, l := range layouts {
		fmt.Fprintf(out, "rank %d coords=%v physical=%v spectral=%v\n", l.rank, l.coords, l.physical, l.spectral)
	}

	return nil
}
