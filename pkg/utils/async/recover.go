package async

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Recover executes handler in the calling goroutine and converts a panic into an error
//
// Behavior:
//   - Returns the handler's error unchanged
//   - Recovers from panics, logs them with the stack trace and returns an error
//     so that a worker group (errgroup) fails instead of crashing the process
func Recover(ctx context.Context, handler func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			logger := ctxlog.From(ctx)
			logger.Error("panic in worker",
				"recover", r,
				"stack", string(stack))
			err = goerr.New("panic in worker", goerr.V("recover", fmt.Sprint(r)))
		}
	}()

	return handler(ctx)
}
