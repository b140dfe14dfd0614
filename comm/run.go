// SPDX-License-Identifier: MIT

package comm

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Run starts size ranks, each executing fn on its own goroutine, and waits
// for all of them. Errors (and recovered panics) are combined in rank order.
func Run(size int, fn func(c Comm) error) error {
	ranks, err := NewGroup(size)
	if err != nil {
		return err
	}
	Logger().Debug("comm run", zap.Int("size", size))

	errs := make([]error, size)
	var wg sync.WaitGroup
	wg.Add(size)
	for r, c := range ranks {
		go func(r int, c Comm) {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					errs[r] = fmt.Errorf("rank %d: %v: %w", r, p, ErrRankPanic)
				}
			}()
			if e := fn(c); e != nil {
				errs[r] = fmt.Errorf("rank %d: %w", r, e)
			}
		}(r, c)
	}
	wg.Wait()

	return multierr.Combine(errs...)
}
