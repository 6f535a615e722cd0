package health

import (
	"context"
	"encoding/json"
	"net/http"
)

// ViewHandler returns an HTTP handler that runs one view and writes its
// WorkingCapacityResult: 200 when Healthy, 400 when Unhealthy.
func ViewHandler(run func(ctx context.Context) WorkingCapacityResult) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := run(r.Context())

		body, err := json.Marshal(result)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(StatusCode(result.Status))
		_, _ = w.Write(body)
	}
}

// StatusCode maps a verdict to its HTTP status code.
func StatusCode(status Status) int {
	if status == StatusHealthy {
		return http.StatusOK
	}
	return http.StatusBadRequest
}

// LivenessHandler serves the liveness view.
func LivenessHandler(c *Commander) http.HandlerFunc {
	return ViewHandler(c.RunLiveness)
}

// ReadinessHandler serves the readiness view.
func ReadinessHandler(c *Commander) http.HandlerFunc {
	return ViewHandler(c.RunReadiness)
}

// MonitorHandler serves the monitor view.
func MonitorHandler(c *Commander) http.HandlerFunc {
	return ViewHandler(c.RunMonitor)
}

// RegisterRoutes mounts the three views under /health on mux.
func RegisterRoutes(mux *http.ServeMux, c *Commander) {
	mux.HandleFunc("GET /health/liveness", LivenessHandler(c))
	mux.HandleFunc("GET /health/readiness", ReadinessHandler(c))
	mux.HandleFunc("GET /health/monitor", MonitorHandler(c))
}
