package handler

import (
	"net/http"
)

const healthStatus = "token store is healthy and running"

// HealthCheck godoc
// @Summary      Liveness probe
// @Description  Reports that the token store process is up. It does not touch the database.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": healthStatus})
}
