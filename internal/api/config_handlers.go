package api

import (
	"encoding/json"
	"net/http"
	"time"

	"pollen/management/internal/common"
)

// GetConfigHandler handles GET /api/v1/config
func GetConfigHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		cfg, err := deps.Services.Config.AllConfig(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Configuration fetched", cfg)
	}
}

// SaveConfigHandler handles PUT /api/v1/config
func SaveConfigHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var updates map[string]string
		if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}
		if len(updates) == 0 {
			common.RespondError(w, initTime, nil, "No configuration values provided", http.StatusBadRequest)
			return
		}

		if err := deps.Services.Config.SaveConfig(r.Context(), updates); err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		cfg, err := deps.Services.Config.AllConfig(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Configuration saved", cfg)
	}
}
