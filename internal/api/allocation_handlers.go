package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pollen/management/internal/common"
	"pollen/management/internal/constants"
	"pollen/management/internal/middleware"
	"pollen/management/internal/models/dtos"
	gormModels "pollen/management/internal/models/gorm"
)

// CalculateAllocationsHandler handles POST /api/v1/compensation/calculate
func CalculateAllocationsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		records, err := deps.Services.Allocation.CalculateAllocations(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		deps.Metrics.AllocationRunsTotal.Inc()
		common.RespondSuccess(w, initTime, "Allocations calculated", records)
	}
}

// ListCompensationMembersHandler handles GET /api/v1/compensation/members
func ListCompensationMembersHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		rows, err := deps.Services.Allocation.ListCompensationMembers(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Compensation members fetched", rows)
	}
}

// BatchSaveHandler handles POST /api/v1/compensation/batch
func BatchSaveHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.BatchSaveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		operatorID := req.OperatorID
		if operatorID == "" {
			operatorID = middleware.OperatorID(r.Context())
		}

		records := make([]*gormModels.CompensationRecord, len(req.Records))
		for i := range req.Records {
			records[i] = &req.Records[i]
		}

		result, err := deps.Services.Allocation.BatchSaveWithValidation(r.Context(), records, operatorID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		if !result.Success {
			deps.Metrics.BatchRejectionsTotal.Inc()
			if result.GlobalError == constants.MsgConcurrentConflict {
				respondServiceError(w, initTime, common.Conflict(result.GlobalError))
				return
			}
			common.RespondSuccess(w, initTime, "Batch rejected by validation", result, http.StatusUnprocessableEntity)
			return
		}

		deps.Metrics.BatchCommitsTotal.Inc()
		common.RespondSuccess(w, initTime, "Batch saved", result)
	}
}

// ArchiveHandler handles POST /api/v1/compensation/archive
func ArchiveHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.ArchiveRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
				return
			}
		}

		operatorID := req.OperatorID
		if operatorID == "" {
			operatorID = middleware.OperatorID(r.Context())
		}

		archived, err := deps.Services.Allocation.ArchiveRecords(r.Context(), operatorID)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		deps.Metrics.ArchivedRecordsTotal.Add(float64(archived))
		common.RespondSuccess(w, initTime, "Records archived", map[string]int{"archivedCount": archived})
	}
}

// GetReportHandler handles GET /api/v1/compensation/report
func GetReportHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		report, err := deps.Services.Allocation.GenerateReport(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Report generated", report)
	}
}

// UpdateRecordHandler handles PUT /api/v1/compensation/records/{id}
func UpdateRecordHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id := chi.URLParam(r, "id")
		if id == "" {
			common.RespondError(w, initTime, nil, "record id is required", http.StatusBadRequest)
			return
		}

		var patch dtos.CompensationRecordPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		record, err := deps.Services.Allocation.UpdateRecord(r.Context(), id, &patch)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Record updated", record)
	}
}

// CalculateScoreHandler handles POST /api/v1/compensation/score
func CalculateScoreHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var input dtos.ScoreInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		result, err := deps.Services.Allocation.CalculateMemberScore(r.Context(), input)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Score calculated", result)
	}
}
