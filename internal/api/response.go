package api

import (
	"net/http"
	"time"

	"pollen/management/internal/common"
)

// respondServiceError maps service errors to HTTP responses. Typed
// business errors carry their own status; anything else is a 500.
func respondServiceError(w http.ResponseWriter, initTime time.Time, err error) {
	if bizErr, ok := common.AsBusinessError(err); ok {
		common.RespondError(w, initTime, bizErr, bizErr.Message, bizErr.HTTPStatus())
		return
	}
	common.RespondError(w, initTime, err, "An unexpected error occurred", http.StatusInternalServerError)
}
