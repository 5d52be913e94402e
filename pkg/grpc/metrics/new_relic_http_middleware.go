package metrics

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/bri1545/SkillChain/pkg/metrics"
)

const (
	httpRouteAttributeKey         = "http.request.route"
	httpResponseLevelAttributeKey = "http.response.statusCodeLevel"
)

// NewRelicHttpMiddleware starts a New Relic transaction for each HTTP request.
// Transactions are named after the matched chi route pattern, so path
// parameters don't explode the number of transaction names.
func NewRelicHttpMiddleware(app *newrelic.Application) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if app == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			txn := app.StartTransaction(r.Method + " " + r.URL.Path)
			defer txn.End()

			txn.SetWebRequestHTTP(r)
			w = txn.SetWebResponse(w)

			ctx := context.WithValue(r.Context(), metrics.NewRelicContextKey{}, app)
			ctx = newrelic.NewContext(ctx, txn)
			r = r.WithContext(ctx)

			rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
				if pattern := routeCtx.RoutePattern(); len(pattern) > 0 {
					txn.SetName(r.Method + " " + pattern)
					txn.AddAttribute(httpRouteAttributeKey, pattern)
				}
			}

			switch {
			case rw.statusCode >= http.StatusInternalServerError:
				txn.AddAttribute(httpResponseLevelAttributeKey, errorLevel)
			case rw.statusCode == http.StatusTooManyRequests, rw.statusCode == http.StatusForbidden:
				txn.AddAttribute(httpResponseLevelAttributeKey, warningLevel)
			default:
				txn.AddAttribute(httpResponseLevelAttributeKey, infoLevel)
			}
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
