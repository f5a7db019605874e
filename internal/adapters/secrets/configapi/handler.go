package configapi

import (
	"encoding/json"
	"net/http"

	"preop-drug-check/internal/platform/logger"
	"preop-drug-check/internal/ports/secrets"
)

// Handler sirve GET /api/config => {"apiKey": "..."}.
// Expone la key al navegador; cualquier cliente con acceso al servicio la puede leer.
//
// @Summary Obtener configuración del cliente
// @Description Devuelve la API key del workflow para clientes que llaman al workflow directamente (CLI o navegador).
// @Tags config
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} map[string]string "api key not configured"
// @Router /api/config [get]
func Handler(src secrets.KeySource, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")

		key, err := src.APIKey(r.Context())
		if err != nil {
			log.Warn("api key unavailable", map[string]any{"error": err})
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, Response{APIKey: key})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
