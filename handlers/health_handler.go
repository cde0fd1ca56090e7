// handlers/health_handler.go
package handlers

import (
	"net/http"
	"time"

	"grc/utils"
)

// HealthCheck reports process and store health.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := st.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	utils.RespondWithJSON(w, code, map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
