// Package reporting forwards errors and panics to Rollbar alongside the log.
package reporting

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"sync/atomic"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
)

var enabled atomic.Bool

// Setup configures Rollbar. An empty token leaves reporting log-only.
func Setup(token, environment, codeVersion string) {
	if token == "" {
		log.Println("Error reporting disabled: ROLLBAR_TOKEN not configured")
		rollbar.SetEnabled(false)
		enabled.Store(false)
		return
	}

	rollbar.SetToken(token)
	rollbar.SetEnvironment(environment)
	rollbar.SetCodeVersion(codeVersion)
	rollbar.SetServerRoot("spellingbee")
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(true)
	enabled.Store(true)
	log.Printf("Error reporting enabled: environment=%s", environment)
}

// Enabled reports whether Rollbar delivery is on
func Enabled() bool {
	return enabled.Load()
}

// Error logs err and sends it to Rollbar with extra context
func Error(msg string, err error, extras map[string]interface{}) {
	log.Printf("%s: %v", msg, err)
	if !enabled.Load() || err == nil {
		return
	}
	rollbar.ErrorWithExtras(rollbar.ERR, fmt.Errorf("%s: %w", msg, err), extras)
}

// RequestError reports an error raised while serving r
func RequestError(r *http.Request, msg string, err error) {
	log.Printf("%s %s: %s: %v", r.Method, r.URL.Path, msg, err)
	if !enabled.Load() || err == nil {
		return
	}
	rollbar.RequestError(rollbar.ERR, r, fmt.Errorf("%s: %w", msg, err))
}

// Recover turns handler panics into a 500 response and a critical report
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				log.Printf("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, err, debug.Stack())
				if enabled.Load() {
					rollbar.RequestError(rollbar.CRIT, r, err)
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Close flushes queued reports
func Close() {
	if enabled.Load() {
		rollbar.Close()
	}
}
