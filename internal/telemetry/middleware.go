package telemetry

import (
	"net/http"
	"strconv"
	"strings"
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware counts every handled request. Job IDs embedded in the path
// are collapsed so the path label stays low-cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		HTTPRequestsTotal.WithLabelValues(r.Method, metricPath(r.URL.Path), strconv.Itoa(rec.status)).Inc()
	})
}

// metricPath replaces the variable segment of /api/jobs/{id} routes with a
// placeholder.
func metricPath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	if len(parts) >= 3 && parts[0] == "api" && parts[1] == "jobs" {
		switch parts[2] {
		case "save", "saved":
			return p
		}
		parts[2] = "{id}"
		return "/" + strings.Join(parts, "/")
	}
	return p
}
