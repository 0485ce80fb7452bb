// Package goroutine keeps panics in background work from taking the process down.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"github.com/orris-inc/billing/internal/shared/logger"
)

// Recover logs a recovered panic with its stack. It must be deferred
// directly: defer goroutine.Recover(log, "name").
func Recover(log logger.Interface, name string) {
	if r := recover(); r != nil {
		log.Errorw("goroutine panicked",
			"goroutine", name,
			"panic", fmt.Sprintf("%v", r),
			"stack", string(debug.Stack()),
		)
	}
}

// SafeGo runs fn on a new goroutine under Recover.
func SafeGo(log logger.Interface, name string, fn func()) {
	go func() {
		defer Recover(log, name)
		fn()
	}()
}
