package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pollen/management/internal/common"
	"pollen/management/internal/models/dtos"
)

// GetPromotionCandidatesHandler handles GET /api/v1/rotation/promotion-candidates
func GetPromotionCandidatesHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		candidates, err := deps.Services.Rotation.ScanPromotionCandidates(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Promotion candidates fetched", candidates)
	}
}

// GetDemotionCandidatesHandler handles GET /api/v1/rotation/demotion-candidates
func GetDemotionCandidatesHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		candidates, err := deps.Services.Rotation.ScanDemotionCandidates(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Demotion candidates fetched", candidates)
	}
}

// RunDismissalScanHandler handles POST /api/v1/rotation/dismissal-scan
func RunDismissalScanHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		flagged, err := deps.Services.Rotation.ScanDismissalCandidates(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		deps.Metrics.DismissalFlagsTotal.Add(float64(len(flagged)))
		common.RespondSuccess(w, initTime, "Dismissal scan completed", flagged)
	}
}

// GetPendingDismissalHandler handles GET /api/v1/rotation/pending-dismissal
func GetPendingDismissalHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		members, err := deps.Services.Rotation.GetPendingDismissalList(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Pending dismissal list fetched", members)
	}
}

// TriggerReviewHandler handles POST /api/v1/rotation/review
func TriggerReviewHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		result, err := deps.Services.Rotation.TriggerPromotionReview(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Promotion review evaluated", result)
	}
}

// ExecutePromotionHandler handles POST /api/v1/rotation/promote
func ExecutePromotionHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.ExecutePromotionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.TrialMemberID == "" || req.FormalMemberID == "" {
			common.RespondError(w, initTime, nil, "trialMemberId and formalMemberId are required", http.StatusBadRequest)
			return
		}

		if err := deps.Services.Rotation.ExecutePromotion(r.Context(), req.TrialMemberID, req.FormalMemberID); err != nil {
			if bizErr, ok := common.AsBusinessError(err); ok && bizErr.Kind == common.KindInvariantViolation {
				deps.Metrics.InvariantFailuresTotal.Inc()
			}
			respondServiceError(w, initTime, err)
			return
		}

		deps.Metrics.RotationSwapsTotal.Inc()
		common.RespondSuccess(w, initTime, "Promotion executed", req)
	}
}

// GetRoleHistoryHandler handles GET /api/v1/rotation/history/{memberId}
func GetRoleHistoryHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		memberID := chi.URLParam(r, "memberId")
		if memberID == "" {
			common.RespondError(w, initTime, nil, "memberId is required", http.StatusBadRequest)
			return
		}

		history, err := deps.Services.Rotation.GetRoleHistory(r.Context(), memberID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Role history fetched", history)
	}
}
