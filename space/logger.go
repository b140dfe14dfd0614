// SPDX-License-Identifier: MIT

package space

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	logger atomic.Pointer[zap.Logger]
	nop    = zap.NewNop()
)

// Logger returns the space package's logger instance.
// It uses a no-op logger by default; WithLogger overrides it per space.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}

	return nop
}

// SetLogger configures the space package's logger. It is safe to call while
// ranks are running; nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}
