package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// RecoveryConfig configures Recovery.
type RecoveryConfig struct {
	Logger *zap.Logger
	// EnableStackTrace attaches the goroutine stack to the log entry.
	EnableStackTrace bool
	// OnPanic writes the response. It defaults to a plain 500.
	OnPanic func(w http.ResponseWriter, r *http.Request, err error)
}

// Recovery turns a handler panic into a logged 500 response.
func Recovery(logger *zap.Logger) Middleware {
	return RecoveryWithConfig(RecoveryConfig{Logger: logger, EnableStackTrace: true})
}

// RecoveryWithConfig is Recovery with explicit settings.
func RecoveryWithConfig(config RecoveryConfig) Middleware {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.OnPanic == nil {
		config.OnPanic = func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				err := panicError(v)
				fields := []zap.Field{
					zap.Error(err),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", GetRequestID(r.Context())),
				}
				if config.EnableStackTrace {
					fields = append(fields, zap.ByteString("stack", debug.Stack()))
				}
				config.Logger.Error("panic recovered", fields...)
				config.OnPanic(w, r, err)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func panicError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", v)
}
